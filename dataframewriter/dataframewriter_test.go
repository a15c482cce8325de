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

package dataframewriter

import (
	"strconv"
	"testing"

	"github.com/nzrymiak/xfer/typesys"
	"github.com/nzrymiak/xfer/xfererr"
)

func TestAllocateRejectsNonStringSchema(t *testing.T) {
	w := NewDataFrameWriter()
	schema := typesys.Schema{typesys.String, typesys.U64}
	err := w.Allocate(schema, 1, []int{1})
	if kind, ok := xfererr.Of(err); !ok || kind != xfererr.UnsupportedType {
		t.Fatalf("expected UnsupportedType, got %v", err)
	}
}

func TestAllocateRejectsMismatchedPartitionSum(t *testing.T) {
	w := NewDataFrameWriter()
	schema := typesys.Schema{typesys.String}
	err := w.Allocate(schema, 10, []int{3, 3})
	if kind, ok := xfererr.Of(err); !ok || kind != xfererr.SchemaMismatch {
		t.Fatalf("expected SchemaMismatch, got %v", err)
	}
}

func TestConsumeAndFinalizeSinglePartition(t *testing.T) {
	w := NewDataFrameWriter()
	schema := typesys.Schema{typesys.String, typesys.String}
	if err := w.Allocate(schema, 4, []int{4}); err != nil {
		t.Fatal(err)
	}
	pw := w.PartitionWriters()[0].(*DataFramePartitionWriter)
	for r := 0; r < 4; r++ {
		if err := pw.ConsumeString(r, 0, "a"+strconv.Itoa(r)); err != nil {
			t.Fatal(err)
		}
		if err := pw.ConsumeString(r, 1, "b"+strconv.Itoa(r)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Finalize(); err != nil {
		t.Fatal(err)
	}

	col0, err := w.Column(0)
	if err != nil {
		t.Fatal(err)
	}
	col1, err := w.Column(1)
	if err != nil {
		t.Fatal(err)
	}
	for r := 0; r < 4; r++ {
		if col0[r] != "a"+strconv.Itoa(r) {
			t.Errorf("col0[%d] = %q", r, col0[r])
		}
		if col1[r] != "b"+strconv.Itoa(r) {
			t.Errorf("col1[%d] = %q", r, col1[r])
		}
	}
}

func TestConsumeAcrossPartitionsWritesDisjointRanges(t *testing.T) {
	w := NewDataFrameWriter()
	schema := typesys.Schema{typesys.String}
	if err := w.Allocate(schema, 6, []int{2, 4}); err != nil {
		t.Fatal(err)
	}
	writers := w.PartitionWriters()
	p0 := writers[0].(*DataFramePartitionWriter)
	p1 := writers[1].(*DataFramePartitionWriter)

	for r := 0; r < 2; r++ {
		if err := p0.ConsumeString(r, 0, "first"+strconv.Itoa(r)); err != nil {
			t.Fatal(err)
		}
	}
	for r := 0; r < 4; r++ {
		if err := p1.ConsumeString(r, 0, "second"+strconv.Itoa(r)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Finalize(); err != nil {
		t.Fatal(err)
	}

	col, err := w.Column(0)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"first0", "first1", "second0", "second1", "second2", "second3"}
	for r, v := range want {
		if col[r] != v {
			t.Errorf("row %d = %q, want %q", r, col[r], v)
		}
	}
}

func TestConsumeRejectsOutOfRangeRow(t *testing.T) {
	w := NewDataFrameWriter()
	schema := typesys.Schema{typesys.String}
	if err := w.Allocate(schema, 2, []int{2}); err != nil {
		t.Fatal(err)
	}
	pw := w.PartitionWriters()[0].(*DataFramePartitionWriter)
	err := pw.ConsumeString(2, 0, "oops")
	if kind, ok := xfererr.Of(err); !ok || kind != xfererr.OutOfBound {
		t.Fatalf("expected OutOfBound, got %v", err)
	}
}

func TestSmallBufferThresholdFlushesEagerly(t *testing.T) {
	w := NewDataFrameWriter().WithBufferSize(4)
	schema := typesys.Schema{typesys.String}
	if err := w.Allocate(schema, 3, []int{3}); err != nil {
		t.Fatal(err)
	}
	pw := w.PartitionWriters()[0].(*DataFramePartitionWriter)
	for r, v := range []string{"abcde", "fghij", "klmno"} {
		if err := pw.ConsumeString(r, 0, v); err != nil {
			t.Fatal(err)
		}
	}
	// Each write already exceeds the 4-byte threshold, so every
	// ConsumeString call should have flushed on its own -- Finalize
	// here is a no-op over an already-empty buffer.
	if err := w.Finalize(); err != nil {
		t.Fatal(err)
	}
	col, err := w.Column(0)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"abcde", "fghij", "klmno"}
	for r, v := range want {
		if col[r] != v {
			t.Errorf("row %d = %q, want %q", r, col[r], v)
		}
	}
}
