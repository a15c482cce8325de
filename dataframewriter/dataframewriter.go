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

// Package dataframewriter is the specialized string Destination
// described in §4.6: a dataframe-style backing array of strings,
// written through per-partition, per-column byte buffers with length
// tables, so that the host allocation needed to turn bytes into a
// string only happens in coarse-grained, lock-protected batches
// rather than once per cell.
//
// Go strings need no host-runtime allocator lock the way a
// foreign-language object array does, but the batching shape itself
// -- buffer until a size threshold, then take one lock, allocate a
// run of strings, release the lock -- is preserved here deliberately:
// it is what makes this writer behave like the dataframe-library
// destinations the rest of the engine is modeled on, and it keeps
// the lock's critical section limited to allocation, never to the
// CPU-bound byte copying that fills the buffer.
package dataframewriter

import (
	"sync"

	"github.com/nzrymiak/xfer/dataorder"
	"github.com/nzrymiak/xfer/dest"
	"github.com/nzrymiak/xfer/typesys"
	"github.com/nzrymiak/xfer/xfererr"
)

// DefaultBufferSize is the per-column byte buffer threshold (16 MiB)
// at which a partition flushes its pending strings into the shared
// array, per §4.6.
const DefaultBufferSize = 16 << 20

var (
	_ dest.Destination     = (*DataFrameWriter)(nil)
	_ dest.PartitionWriter = (*DataFramePartitionWriter)(nil)
	_ dest.StringConsumer  = (*DataFramePartitionWriter)(nil)
)

// DataFrameWriter lands every schema column into one shared, row-major
// string block -- a stand-in for a foreign-language 2-D object array
// -- split into disjoint row ranges across partitions. It only
// supports typesys.String columns; schemas mixing in other tags
// belong to memwriter or arrowwriter instead.
type DataFrameWriter struct {
	schema     typesys.Schema
	ncols      int
	nrows      int
	shared     []string
	allocMu    sync.Mutex
	bufferSize int

	partitions []*DataFramePartitionWriter
}

// NewDataFrameWriter builds a DataFrameWriter with the default 16 MiB
// per-column buffering threshold.
func NewDataFrameWriter() *DataFrameWriter {
	return &DataFrameWriter{bufferSize: DefaultBufferSize}
}

// WithBufferSize overrides the per-column buffer threshold before
// Allocate is called.
func (w *DataFrameWriter) WithBufferSize(n int) *DataFrameWriter {
	w.bufferSize = n
	return w
}

func (*DataFrameWriter) DataOrders() []dataorder.Order {
	return []dataorder.Order{dataorder.RowMajor, dataorder.ColumnMajor}
}

func (*DataFrameWriter) SetDataOrder(order dataorder.Order) error {
	if !dataorder.Contains([]dataorder.Order{dataorder.RowMajor, dataorder.ColumnMajor}, order) {
		return xfererr.New(xfererr.UnsupportedDataOrder, order.String())
	}
	return nil
}

func (w *DataFrameWriter) Schema() typesys.Schema { return w.schema }

// Allocate validates the schema is string-only, reserves the shared
// row-major string block, and splits it into one PartitionWriter per
// row range in partitionRows.
func (w *DataFrameWriter) Allocate(schema typesys.Schema, nrows int, partitionRows []int) error {
	if err := schema.Validate(); err != nil {
		return err
	}
	for _, tag := range schema {
		if tag != typesys.String {
			return xfererr.New(xfererr.UnsupportedType, "dataframewriter only supports string columns")
		}
	}
	sum := 0
	for _, c := range partitionRows {
		sum += c
	}
	if sum != nrows {
		return xfererr.New(xfererr.SchemaMismatch, "partition row counts do not sum to nrows")
	}

	w.schema = schema
	w.ncols = len(schema)
	w.nrows = nrows
	w.shared = make([]string, nrows*w.ncols)
	if w.bufferSize <= 0 {
		w.bufferSize = DefaultBufferSize
	}

	w.partitions = make([]*DataFramePartitionWriter, len(partitionRows))
	rowOffset := 0
	for i, c := range partitionRows {
		w.partitions[i] = newPartitionWriter(w, rowOffset, c)
		rowOffset += c
	}
	return nil
}

func (w *DataFrameWriter) PartitionWriters() []dest.PartitionWriter {
	out := make([]dest.PartitionWriter, len(w.partitions))
	for i, p := range w.partitions {
		out[i] = p
	}
	return out
}

// Finalize flushes every partition's pending string buffers into the
// shared array. It must run after every partition has finished
// writing and before Column is read, mirroring the reference writer's
// destructor-time flush (§4.6).
func (w *DataFrameWriter) Finalize() error {
	for _, p := range w.partitions {
		if err := p.finalize(); err != nil {
			return err
		}
	}
	return nil
}

// Column returns a read-only view of one schema column across all
// rows. Only valid after Finalize.
func (w *DataFrameWriter) Column(col int) ([]string, error) {
	if col < 0 || col >= w.ncols {
		return nil, xfererr.New(xfererr.OutOfBound, "column out of range")
	}
	out := make([]string, w.nrows)
	for r := 0; r < w.nrows; r++ {
		out[r] = w.shared[r*w.ncols+col]
	}
	return out, nil
}

// columnBuffer accumulates one partition's pending writes for a
// single column: a length-prefixed byte buffer plus the destination
// row each pending string belongs to, so a RowMajor transfer (which
// interleaves columns within a row) can still be flushed correctly.
type columnBuffer struct {
	buf     []byte
	lengths []int
	rows    []int
}

func (c *columnBuffer) size() int { return len(c.buf) }

func (c *columnBuffer) add(row int, v string) {
	c.lengths = append(c.lengths, len(v))
	c.rows = append(c.rows, row)
	c.buf = append(c.buf, v...)
}

func (c *columnBuffer) reset() {
	c.buf = c.buf[:0]
	c.lengths = c.lengths[:0]
	c.rows = c.rows[:0]
}

// DataFramePartitionWriter owns one disjoint row range of the shared
// string block and one columnBuffer per schema column.
type DataFramePartitionWriter struct {
	owner      *DataFrameWriter
	rowOffset  int
	nrows      int
	bufferSize int
	columns    []columnBuffer
}

func newPartitionWriter(owner *DataFrameWriter, rowOffset, nrows int) *DataFramePartitionWriter {
	return &DataFramePartitionWriter{
		owner:      owner,
		rowOffset:  rowOffset,
		nrows:      nrows,
		bufferSize: owner.bufferSize,
		columns:    make([]columnBuffer, owner.ncols),
	}
}

func (p *DataFramePartitionWriter) NRows() int { return p.nrows }

func (p *DataFramePartitionWriter) ConsumeString(row, col int, v string) error {
	if row < 0 || row >= p.nrows {
		return xfererr.New(xfererr.OutOfBound, "row out of range")
	}
	if col < 0 || col >= len(p.columns) {
		return xfererr.New(xfererr.OutOfBound, "column out of range")
	}
	p.columns[col].add(row, v)
	if p.columns[col].size() >= p.bufferSize {
		return p.flush(col)
	}
	return nil
}

// flush takes the writer's shared allocator lock only across the
// actual string allocation -- turning each pending column's byte
// buffer into host strings in the shared block -- never across the
// buffer-filling that ConsumeString does between flushes.
func (p *DataFramePartitionWriter) flush(col int) error {
	c := &p.columns[col]
	if len(c.lengths) == 0 {
		return nil
	}

	p.owner.allocMu.Lock()
	start := 0
	ncols := p.owner.ncols
	for i, ln := range c.lengths {
		end := start + ln
		destRow := p.rowOffset + c.rows[i]
		p.owner.shared[destRow*ncols+col] = string(c.buf[start:end])
		start = end
	}
	p.owner.allocMu.Unlock()

	c.reset()
	return nil
}

func (p *DataFramePartitionWriter) finalize() error {
	for col := range p.columns {
		if err := p.flush(col); err != nil {
			return err
		}
	}
	return nil
}
