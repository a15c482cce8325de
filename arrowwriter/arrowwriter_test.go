// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package arrowwriter

import (
	"testing"

	"github.com/apache/arrow/go/v12/arrow/array"

	"github.com/nzrymiak/xfer/typesys"
	"github.com/nzrymiak/xfer/xfererr"
)

func TestAllocateBuildsOneBuilderPerPartition(t *testing.T) {
	w := NewArrowWriter()
	schema := typesys.Schema{typesys.U64, typesys.String}
	if err := w.Allocate(schema, 10, []int{4, 6}); err != nil {
		t.Fatal(err)
	}
	writers := w.PartitionWriters()
	if len(writers) != 2 {
		t.Fatalf("expected 2 partition writers, got %d", len(writers))
	}
	if writers[0].NRows() != 4 || writers[1].NRows() != 6 {
		t.Fatalf("unexpected row counts: %d, %d", writers[0].NRows(), writers[1].NRows())
	}
}

func TestConsumeAndFinalizeRecord(t *testing.T) {
	w := NewArrowWriter()
	schema := typesys.Schema{typesys.U64, typesys.String}
	if err := w.Allocate(schema, 3, []int{3}); err != nil {
		t.Fatal(err)
	}
	pw := w.PartitionWriters()[0].(*ArrowPartitionWriter)
	for r := 0; r < 3; r++ {
		if err := pw.ConsumeU64(r, 0, uint64(r)); err != nil {
			t.Fatal(err)
		}
		if err := pw.ConsumeString(r, 1, "x"); err != nil {
			t.Fatal(err)
		}
	}

	records := w.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	defer rec.Release()

	if rec.NumRows() != 3 {
		t.Errorf("NumRows() = %d, want 3", rec.NumRows())
	}
	col0 := rec.Column(0).(*array.Uint64)
	for r := 0; r < 3; r++ {
		if col0.Value(r) != uint64(r) {
			t.Errorf("col0[%d] = %d, want %d", r, col0.Value(r), r)
		}
	}
}

func TestConsumeRejectsWrongColumnType(t *testing.T) {
	w := NewArrowWriter()
	schema := typesys.Schema{typesys.U64}
	if err := w.Allocate(schema, 1, []int{1}); err != nil {
		t.Fatal(err)
	}
	pw := w.PartitionWriters()[0].(*ArrowPartitionWriter)
	err := pw.ConsumeString(0, 0, "nope")
	if kind, ok := xfererr.Of(err); !ok || kind != xfererr.UnexpectedType {
		t.Fatalf("expected UnexpectedType, got %v", err)
	}
}
