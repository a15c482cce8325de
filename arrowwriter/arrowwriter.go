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

// Package arrowwriter is a Destination that lands each partition as
// an Arrow record batch, one column builder per schema column, using
// the same tag-to-builder association the spec's reference writer
// made between a native type and its Arrow builder (§4.4, §9).
package arrowwriter

import (
	"strconv"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/memory"

	"github.com/nzrymiak/xfer/dataorder"
	"github.com/nzrymiak/xfer/date"
	"github.com/nzrymiak/xfer/dest"
	"github.com/nzrymiak/xfer/typesys"
	"github.com/nzrymiak/xfer/xfererr"
)

var (
	_ dest.Destination     = (*ArrowWriter)(nil)
	_ dest.PartitionWriter = (*ArrowPartitionWriter)(nil)

	_ dest.U64Consumer       = (*ArrowPartitionWriter)(nil)
	_ dest.OptU64Consumer    = (*ArrowPartitionWriter)(nil)
	_ dest.F64Consumer       = (*ArrowPartitionWriter)(nil)
	_ dest.OptF64Consumer    = (*ArrowPartitionWriter)(nil)
	_ dest.BoolConsumer      = (*ArrowPartitionWriter)(nil)
	_ dest.OptBoolConsumer   = (*ArrowPartitionWriter)(nil)
	_ dest.StringConsumer    = (*ArrowPartitionWriter)(nil)
	_ dest.TimestampConsumer = (*ArrowPartitionWriter)(nil)
)

// fieldOf returns the Arrow field shape (type + nullability) a
// schema tag maps to, mirroring the reference writer's builder/field
// association per native type.
func fieldOf(name string, tag typesys.DataType) (arrow.Field, error) {
	switch tag {
	case typesys.U64, typesys.OptU64:
		return arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Uint64, Nullable: tag.Nullable()}, nil
	case typesys.F64, typesys.OptF64:
		return arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64, Nullable: tag.Nullable()}, nil
	case typesys.Bool, typesys.OptBool:
		return arrow.Field{Name: name, Type: arrow.FixedWidthTypes.Boolean, Nullable: tag.Nullable()}, nil
	case typesys.String:
		return arrow.Field{Name: name, Type: arrow.BinaryTypes.String}, nil
	case typesys.Timestamp:
		return arrow.Field{Name: name, Type: &arrow.TimestampType{Unit: arrow.Microsecond}}, nil
	default:
		return arrow.Field{}, xfererr.New(xfererr.UnsupportedType, "no arrow field for tag "+tag.String())
	}
}

// ArrowWriter is a Destination that accumulates one Arrow record
// batch per partition and exposes the finished batches via Records.
type ArrowWriter struct {
	pool   memory.Allocator
	schema typesys.Schema
	aschem *arrow.Schema

	partitions []*ArrowPartitionWriter
}

// NewArrowWriter builds an ArrowWriter backed by a fresh Go-heap
// allocator; every partition's record batch is released when the
// caller is done with it via Release.
func NewArrowWriter() *ArrowWriter {
	return &ArrowWriter{pool: memory.NewGoAllocator()}
}

func (*ArrowWriter) DataOrders() []dataorder.Order {
	return []dataorder.Order{dataorder.RowMajor, dataorder.ColumnMajor}
}

func (*ArrowWriter) SetDataOrder(order dataorder.Order) error {
	if !dataorder.Contains([]dataorder.Order{dataorder.RowMajor, dataorder.ColumnMajor}, order) {
		return xfererr.New(xfererr.UnsupportedDataOrder, order.String())
	}
	return nil
}

func (w *ArrowWriter) Schema() typesys.Schema { return w.schema }

// Allocate builds the Arrow schema for this run and creates one
// record builder per partition; PartitionWriters only hands out the
// writers built here.
func (w *ArrowWriter) Allocate(schema typesys.Schema, nrows int, partitionRows []int) error {
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

	fields := make([]arrow.Field, len(schema))
	for i, tag := range schema {
		f, err := fieldOf("col"+strconv.Itoa(i), tag)
		if err != nil {
			return err
		}
		fields[i] = f
	}

	w.schema = schema
	w.aschem = arrow.NewSchema(fields, nil)
	w.partitions = make([]*ArrowPartitionWriter, len(partitionRows))
	for i, c := range partitionRows {
		w.partitions[i] = &ArrowPartitionWriter{
			nrows:   c,
			schema:  schema,
			builder: array.NewRecordBuilder(w.pool, w.aschem),
		}
	}
	return nil
}

func (w *ArrowWriter) PartitionWriters() []dest.PartitionWriter {
	out := make([]dest.PartitionWriter, len(w.partitions))
	for i, p := range w.partitions {
		out[i] = p
	}
	return out
}

// Records finalizes every partition's builder into an arrow.Record
// and returns them in partition order. Each returned Record must be
// Released by the caller once consumed.
func (w *ArrowWriter) Records() []arrow.Record {
	out := make([]arrow.Record, len(w.partitions))
	for i, p := range w.partitions {
		out[i] = p.builder.NewRecord()
	}
	return out
}

// ArrowPartitionWriter appends sequentially into one RecordBuilder
// per partition. Arrow builders are append-only, so each column must
// be filled in strictly ascending row order within the partition --
// exactly the order the dispatcher's transfer loop produces, in
// either negotiated DataOrder. The Consume* methods check the column
// index and its type; the row argument is neither checked nor used.
type ArrowPartitionWriter struct {
	nrows   int
	schema  typesys.Schema
	builder *array.RecordBuilder
}

func (p *ArrowPartitionWriter) NRows() int { return p.nrows }

func (p *ArrowPartitionWriter) checkColumn(col int, want typesys.DataType) error {
	if col < 0 || col >= len(p.schema) {
		return xfererr.New(xfererr.OutOfBound, "column out of range")
	}
	if p.schema[col] != want {
		return xfererr.New(xfererr.UnexpectedType, "column "+strconv.Itoa(col)+" is "+p.schema[col].String())
	}
	return nil
}

func (p *ArrowPartitionWriter) ConsumeU64(row, col int, v uint64) error {
	if err := p.checkColumn(col, typesys.U64); err != nil {
		return err
	}
	p.builder.Field(col).(*array.Uint64Builder).Append(v)
	return nil
}

func (p *ArrowPartitionWriter) ConsumeOptU64(row, col int, v *uint64) error {
	if err := p.checkColumn(col, typesys.OptU64); err != nil {
		return err
	}
	b := p.builder.Field(col).(*array.Uint64Builder)
	if v == nil {
		b.AppendNull()
	} else {
		b.Append(*v)
	}
	return nil
}

func (p *ArrowPartitionWriter) ConsumeF64(row, col int, v float64) error {
	if err := p.checkColumn(col, typesys.F64); err != nil {
		return err
	}
	p.builder.Field(col).(*array.Float64Builder).Append(v)
	return nil
}

func (p *ArrowPartitionWriter) ConsumeOptF64(row, col int, v *float64) error {
	if err := p.checkColumn(col, typesys.OptF64); err != nil {
		return err
	}
	b := p.builder.Field(col).(*array.Float64Builder)
	if v == nil {
		b.AppendNull()
	} else {
		b.Append(*v)
	}
	return nil
}

func (p *ArrowPartitionWriter) ConsumeBool(row, col int, v bool) error {
	if err := p.checkColumn(col, typesys.Bool); err != nil {
		return err
	}
	p.builder.Field(col).(*array.BooleanBuilder).Append(v)
	return nil
}

func (p *ArrowPartitionWriter) ConsumeOptBool(row, col int, v *bool) error {
	if err := p.checkColumn(col, typesys.OptBool); err != nil {
		return err
	}
	b := p.builder.Field(col).(*array.BooleanBuilder)
	if v == nil {
		b.AppendNull()
	} else {
		b.Append(*v)
	}
	return nil
}

func (p *ArrowPartitionWriter) ConsumeString(row, col int, v string) error {
	if err := p.checkColumn(col, typesys.String); err != nil {
		return err
	}
	p.builder.Field(col).(*array.StringBuilder).Append(v)
	return nil
}

func (p *ArrowPartitionWriter) ConsumeTimestamp(row, col int, v date.Time) error {
	if err := p.checkColumn(col, typesys.Timestamp); err != nil {
		return err
	}
	p.builder.Field(col).(*array.TimestampBuilder).Append(arrow.Timestamp(v.UnixMicro()))
	return nil
}
