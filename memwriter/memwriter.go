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

// Package memwriter is an in-memory Destination: every column lands
// in one of a handful of same-type AnyArray blocks (§4.4), grouped by
// typesys.Schema.PlanBlocks so same-type columns share one
// contiguous allocation. It is the reference Destination used by the
// dispatcher's own tests and by callers who just want the result in
// process rather than serialized to a sink.
package memwriter

import (
	"github.com/nzrymiak/xfer/anyarray"
	"github.com/nzrymiak/xfer/dataorder"
	"github.com/nzrymiak/xfer/date"
	"github.com/nzrymiak/xfer/dest"
	"github.com/nzrymiak/xfer/typesys"
	"github.com/nzrymiak/xfer/xfererr"
)

var (
	_ dest.Destination     = (*MemoryWriter)(nil)
	_ dest.PartitionWriter = (*MemoryPartitionWriter)(nil)

	_ dest.U64Consumer       = (*MemoryPartitionWriter)(nil)
	_ dest.OptU64Consumer    = (*MemoryPartitionWriter)(nil)
	_ dest.F64Consumer       = (*MemoryPartitionWriter)(nil)
	_ dest.OptF64Consumer    = (*MemoryPartitionWriter)(nil)
	_ dest.BoolConsumer      = (*MemoryPartitionWriter)(nil)
	_ dest.OptBoolConsumer   = (*MemoryPartitionWriter)(nil)
	_ dest.StringConsumer    = (*MemoryPartitionWriter)(nil)
	_ dest.TimestampConsumer = (*MemoryPartitionWriter)(nil)
)

// blockAllocator realizes one AnyArray block per schema tag, keeping
// the per-cell dispatch unconditional: the tag-to-type mapping is
// resolved once per block, not once per cell.
var blockAllocator = typesys.Realizer[func(rows, cols int) *anyarray.AnyArray]{
	U64:       func() func(int, int) *anyarray.AnyArray { return anyarray.New[typesys.NU64] },
	OptU64:    func() func(int, int) *anyarray.AnyArray { return anyarray.New[typesys.NOptU64] },
	F64:       func() func(int, int) *anyarray.AnyArray { return anyarray.New[typesys.NF64] },
	OptF64:    func() func(int, int) *anyarray.AnyArray { return anyarray.New[typesys.NOptF64] },
	Bool:      func() func(int, int) *anyarray.AnyArray { return anyarray.New[typesys.NBool] },
	OptBool:   func() func(int, int) *anyarray.AnyArray { return anyarray.New[typesys.NOptBool] },
	String:    func() func(int, int) *anyarray.AnyArray { return anyarray.New[typesys.NString] },
	Timestamp: func() func(int, int) *anyarray.AnyArray { return anyarray.New[typesys.NTimestamp] },
}

// MemoryWriter is a Destination backed by in-process AnyArray blocks.
type MemoryWriter struct {
	nrows         int
	schema        typesys.Schema
	plan          typesys.BlockPlan
	blocks        []*anyarray.AnyArray
	partitionRows []int
}

func NewMemoryWriter() *MemoryWriter { return &MemoryWriter{} }

func (*MemoryWriter) DataOrders() []dataorder.Order {
	return []dataorder.Order{dataorder.RowMajor}
}

func (*MemoryWriter) SetDataOrder(order dataorder.Order) error {
	if order != dataorder.RowMajor {
		return xfererr.New(xfererr.UnsupportedDataOrder, order.String())
	}
	return nil
}

// Allocate groups schema into same-type blocks via PlanBlocks and
// realizes one AnyArray per block, each sized nrows x (columns of
// that type). partitionRows is only validated here; the actual split
// happens in PartitionWriters.
func (w *MemoryWriter) Allocate(schema typesys.Schema, nrows int, partitionRows []int) error {
	if err := schema.Validate(); err != nil {
		return err
	}
	sum := 0
	for _, c := range partitionRows {
		sum += c
	}
	if sum != nrows {
		return xfererr.New(xfererr.SchemaMismatch, "partition row counts do not sum to nrows")
	}

	plan := schema.PlanBlocks()
	blocks := make([]*anyarray.AnyArray, len(plan.Tags))
	for i, tag := range plan.Tags {
		alloc, err := blockAllocator.Realize(tag)
		if err != nil {
			return xfererr.Wrap(xfererr.UnsupportedType, "allocate block", err)
		}
		blocks[i] = alloc(nrows, plan.Counts[i])
	}

	w.nrows = nrows
	w.schema = schema
	w.plan = plan
	w.blocks = blocks
	w.partitionRows = partitionRows
	return nil
}

func (w *MemoryWriter) Schema() typesys.Schema { return w.schema }

// PartitionWriters splits every block at the given row boundaries,
// in lockstep, so the i-th partition of every block starts where the
// (i-1)-th ended. Each split shares backing storage with the
// original allocation (§4.2), so no copying occurs here.
func (w *MemoryWriter) PartitionWriters() []dest.PartitionWriter {
	remaining := make([]*anyarray.AnyArray, len(w.blocks))
	copy(remaining, w.blocks)

	counts := w.partitionRows
	writers := make([]dest.PartitionWriter, 0, len(counts))
	for _, c := range counts {
		sub := make([]*anyarray.AnyArray, len(remaining))
		for bid, block := range remaining {
			head, tail := block.SplitRows(c)
			sub[bid] = head
			remaining[bid] = tail
		}
		writers = append(writers, &MemoryPartitionWriter{
			nrows:  c,
			blocks: sub,
			schema: w.schema,
			index:  w.plan.Index,
		})
	}
	return writers
}

// ColumnView downcasts the block holding schema column col to T and
// returns that column as a freshly copied slice, for inspecting
// results after a run.
func ColumnView[T any](w *MemoryWriter, col int) ([]T, error) {
	ref := w.plan.Index[col]
	arr, err := anyarray.DowncastChecked[T](w.blocks[ref.Block])
	if err != nil {
		return nil, err
	}
	return arr.Column(ref.Offset), nil
}

// MemoryPartitionWriter is the PartitionWriter half of MemoryWriter:
// one disjoint row slab per block, consumed column by column.
type MemoryPartitionWriter struct {
	nrows  int
	blocks []*anyarray.AnyArray
	schema typesys.Schema
	index  []typesys.ColumnRef
}

func (p *MemoryPartitionWriter) NRows() int { return p.nrows }

func (p *MemoryPartitionWriter) NCols() int { return len(p.schema) }

func consumeChecked[T any](p *MemoryPartitionWriter, row, col int, v T) error {
	if col < 0 || col >= len(p.index) {
		return xfererr.New(xfererr.OutOfBound, "column out of range")
	}
	if err := typesys.Check[T](p.schema[col]); err != nil {
		return xfererr.Wrap(xfererr.UnexpectedType, "consume", err)
	}
	ref := p.index[col]
	arr, err := anyarray.DowncastChecked[T](p.blocks[ref.Block])
	if err != nil {
		return err
	}
	if !arr.InBounds(row, ref.Offset) {
		return xfererr.New(xfererr.OutOfBound, "row out of range")
	}
	arr.Set(row, ref.Offset, v)
	return nil
}

func (p *MemoryPartitionWriter) ConsumeU64(row, col int, v uint64) error {
	return consumeChecked[typesys.NU64](p, row, col, v)
}

func (p *MemoryPartitionWriter) ConsumeOptU64(row, col int, v *uint64) error {
	return consumeChecked[typesys.NOptU64](p, row, col, v)
}

func (p *MemoryPartitionWriter) ConsumeF64(row, col int, v float64) error {
	return consumeChecked[typesys.NF64](p, row, col, v)
}

func (p *MemoryPartitionWriter) ConsumeOptF64(row, col int, v *float64) error {
	return consumeChecked[typesys.NOptF64](p, row, col, v)
}

func (p *MemoryPartitionWriter) ConsumeBool(row, col int, v bool) error {
	return consumeChecked[typesys.NBool](p, row, col, v)
}

func (p *MemoryPartitionWriter) ConsumeOptBool(row, col int, v *bool) error {
	return consumeChecked[typesys.NOptBool](p, row, col, v)
}

func (p *MemoryPartitionWriter) ConsumeString(row, col int, v string) error {
	return consumeChecked[typesys.NString](p, row, col, v)
}

func (p *MemoryPartitionWriter) ConsumeTimestamp(row, col int, v date.Time) error {
	return consumeChecked[typesys.NTimestamp](p, row, col, v)
}
