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

package dispatcher

import (
	"testing"

	"github.com/nzrymiak/xfer/dataorder"
	"github.com/nzrymiak/xfer/dest"
	"github.com/nzrymiak/xfer/memwriter"
	"github.com/nzrymiak/xfer/sourcedrivers"
	"github.com/nzrymiak/xfer/typesys"
	"github.com/nzrymiak/xfer/xfererr"
)

func schemaOf(n int, tag typesys.DataType) typesys.Schema {
	s := make(typesys.Schema, n)
	for i := range s {
		s[i] = tag
	}
	return s
}

func TestDispatchU64CounterScenario(t *testing.T) {
	w := memwriter.NewMemoryWriter()
	d := New(sourcedrivers.U64SourceBuilder{}, w, schemaOf(5, typesys.U64))
	if err := d.Run([]string{"4", "7"}); err != nil {
		t.Fatal(err)
	}

	want := [][]uint64{
		{0, 1, 2, 3, 4}, {5, 6, 7, 8, 9}, {10, 11, 12, 13, 14}, {15, 16, 17, 18, 19},
		{0, 1, 2, 3, 4}, {5, 6, 7, 8, 9}, {10, 11, 12, 13, 14}, {15, 16, 17, 18, 19},
		{20, 21, 22, 23, 24}, {25, 26, 27, 28, 29}, {30, 31, 32, 33, 34},
	}
	for c := 0; c < 5; c++ {
		col, err := memwriter.ColumnView[uint64](w, c)
		if err != nil {
			t.Fatal(err)
		}
		for r, v := range col {
			if v != want[r][c] {
				t.Errorf("row %d col %d = %d, want %d", r, c, v, want[r][c])
			}
		}
	}
}

func TestDispatchStringCounterScenario(t *testing.T) {
	w := memwriter.NewMemoryWriter()
	d := New(sourcedrivers.StringSourceBuilder{}, w, schemaOf(5, typesys.String))
	if err := d.Run([]string{"4", "7"}); err != nil {
		t.Fatal(err)
	}

	row10 := []string{"30", "31", "32", "33", "34"}
	for c := 0; c < 5; c++ {
		col, err := memwriter.ColumnView[string](w, c)
		if err != nil {
			t.Fatal(err)
		}
		if col[10] != row10[c] {
			t.Errorf("row 10 col %d = %q, want %q", c, col[10], row10[c])
		}
	}
}

func TestDispatchBoolAlternatorScenario(t *testing.T) {
	w := memwriter.NewMemoryWriter()
	d := New(sourcedrivers.BoolSourceBuilder{}, w, schemaOf(5, typesys.Bool))
	if err := d.Run([]string{"4", "7"}); err != nil {
		t.Fatal(err)
	}

	row0 := []bool{false, true, false, true, false}
	row1 := []bool{true, false, true, false, true}
	for c := 0; c < 5; c++ {
		col, err := memwriter.ColumnView[bool](w, c)
		if err != nil {
			t.Fatal(err)
		}
		if col[0] != row0[c] || col[1] != row1[c] {
			t.Errorf("col %d rows 0,1 = %v,%v want %v,%v", c, col[0], col[1], row0[c], row1[c])
		}
	}
}

func TestDispatchF64Scenario(t *testing.T) {
	w := memwriter.NewMemoryWriter()
	d := New(sourcedrivers.F64SourceBuilder{}, w, schemaOf(5, typesys.F64))
	if err := d.Run([]string{"4", "7"}); err != nil {
		t.Fatal(err)
	}

	row0 := []float64{0.0, 0.5, 1.0, 1.5, 2.0}
	row10 := []float64{15.0, 15.5, 16.0, 16.5, 17.0}
	for c := 0; c < 5; c++ {
		col, err := memwriter.ColumnView[float64](w, c)
		if err != nil {
			t.Fatal(err)
		}
		if col[0] != row0[c] {
			t.Errorf("row 0 col %d = %v, want %v", c, col[0], row0[c])
		}
		if col[10] != row10[c] {
			t.Errorf("row 10 col %d = %v, want %v", c, col[10], row10[c])
		}
	}
}

func TestDispatchPartitionIndependence(t *testing.T) {
	run := func(queries []string) [][]uint64 {
		w := memwriter.NewMemoryWriter()
		d := New(sourcedrivers.U64SourceBuilder{}, w, schemaOf(2, typesys.U64))
		if err := d.Run(queries); err != nil {
			t.Fatal(err)
		}
		col0, _ := memwriter.ColumnView[uint64](w, 0)
		col1, _ := memwriter.ColumnView[uint64](w, 1)
		out := make([][]uint64, len(col0))
		for r := range out {
			out[r] = []uint64{col0[r], col1[r]}
		}
		return out
	}

	single := run([]string{"6"})
	split := run([]string{"2", "4"})
	if len(single) != len(split) {
		t.Fatalf("row counts differ: %d vs %d", len(single), len(split))
	}
	for r := range single {
		if single[r][0] != split[r][0] || single[r][1] != split[r][1] {
			t.Errorf("row %d differs: single=%v split=%v", r, single[r], split[r])
		}
	}
}

func TestDispatchNoCommonDataOrder(t *testing.T) {
	w := memwriter.NewMemoryWriter()
	d := New(columnOnlyBuilder{}, w, schemaOf(1, typesys.U64))
	err := d.Run([]string{"1"})
	if kind, ok := xfererr.Of(err); !ok || kind != xfererr.NoCommonDataOrder {
		t.Fatalf("expected NoCommonDataOrder, got %v", err)
	}
}

// columnOnlyBuilder only offers ColumnMajor, which no memwriter
// Destination supports, to exercise the order-negotiation failure.
type columnOnlyBuilder struct{ sourcedrivers.U64SourceBuilder }

func (columnOnlyBuilder) DataOrders() []dataorder.Order {
	return []dataorder.Order{dataorder.ColumnMajor}
}

func TestDispatchMixedTypesPreserveSchemaOrder(t *testing.T) {
	w := memwriter.NewMemoryWriter()
	schema := typesys.Schema{typesys.U64, typesys.F64, typesys.String}
	d := New(sourcedrivers.U64SourceBuilder{}, w, schema)
	if err := d.Run([]string{"10"}); err != nil {
		t.Fatal(err)
	}

	u64col, err := memwriter.ColumnView[uint64](w, 0)
	if err != nil {
		t.Fatal(err)
	}
	f64col, err := memwriter.ColumnView[float64](w, 1)
	if err != nil {
		t.Fatal(err)
	}
	strcol, err := memwriter.ColumnView[string](w, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(u64col) != 10 || len(f64col) != 10 || len(strcol) != 10 {
		t.Fatalf("expected 10 rows per column, got %d/%d/%d", len(u64col), len(f64col), len(strcol))
	}
}

// u64OnlyWriter allocates storage only for typesys.U64 columns, used
// to exercise the "allocating an unsupported tag fails" scenario.
type u64OnlyWriter struct {
	inner *memwriter.MemoryWriter
}

func newU64OnlyWriter() *u64OnlyWriter { return &u64OnlyWriter{inner: memwriter.NewMemoryWriter()} }

func (w *u64OnlyWriter) DataOrders() []dataorder.Order  { return w.inner.DataOrders() }
func (w *u64OnlyWriter) SetDataOrder(o dataorder.Order) error { return w.inner.SetDataOrder(o) }
func (w *u64OnlyWriter) Schema() typesys.Schema         { return w.inner.Schema() }
func (w *u64OnlyWriter) PartitionWriters() []dest.PartitionWriter { return w.inner.PartitionWriters() }

func (w *u64OnlyWriter) Allocate(schema typesys.Schema, nrows int, partitionRows []int) error {
	for _, tag := range schema {
		if tag != typesys.U64 {
			return xfererr.New(xfererr.UnsupportedType, "this destination only supports U64 columns")
		}
	}
	return w.inner.Allocate(schema, nrows, partitionRows)
}

func TestDispatchAllocateRejectsUnsupportedTag(t *testing.T) {
	w := newU64OnlyWriter()
	schema := typesys.Schema{typesys.U64, typesys.U64, typesys.U64, typesys.F64, typesys.U64}
	d := New(sourcedrivers.U64SourceBuilder{}, w, schema)
	err := d.Run([]string{"1"})
	if kind, ok := xfererr.Of(err); !ok || kind != xfererr.UnsupportedType {
		t.Fatalf("expected UnsupportedType, got %v", err)
	}
}
