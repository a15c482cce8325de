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
	"github.com/nzrymiak/xfer/dataorder"
	"github.com/nzrymiak/xfer/dest"
	"github.com/nzrymiak/xfer/source"
	"github.com/nzrymiak/xfer/typesys"
	"github.com/nzrymiak/xfer/xfererr"
)

// cellFunc transfers a single cell once its source/destination pair
// has already been confirmed to support the column's native type.
type cellFunc func(row, col int) error

// columnBuilder resolves the monomorphic producer/consumer pair for
// one column, doing the interface type assertions exactly once; the
// cellFunc it returns makes no further type checks.
type columnBuilder func(src source.Source, w dest.PartitionWriter) (cellFunc, error)

// transferers maps each schema tag to the columnBuilder for its
// native type -- the "match arm per tag" half of the reification
// operator (§9). Realize resolves this once per column; the second
// call, invoking the returned columnBuilder, resolves the producer
// and consumer interfaces once more, also per column. Nothing past
// that point depends on the tag or on a further interface assertion.
var transferers = typesys.Realizer[columnBuilder]{
	U64:       func() columnBuilder { return buildU64Transfer },
	OptU64:    func() columnBuilder { return buildOptU64Transfer },
	F64:       func() columnBuilder { return buildF64Transfer },
	OptF64:    func() columnBuilder { return buildOptF64Transfer },
	Bool:      func() columnBuilder { return buildBoolTransfer },
	OptBool:   func() columnBuilder { return buildOptBoolTransfer },
	String:    func() columnBuilder { return buildStringTransfer },
	Timestamp: func() columnBuilder { return buildTimestampTransfer },
}

func buildU64Transfer(src source.Source, w dest.PartitionWriter) (cellFunc, error) {
	p, ok := src.(source.U64Producer)
	if !ok {
		return nil, xfererr.New(xfererr.UnsupportedType, "source does not produce u64")
	}
	c, ok := w.(dest.U64Consumer)
	if !ok {
		return nil, xfererr.New(xfererr.UnsupportedType, "destination does not consume u64")
	}
	return func(row, col int) error {
		v, err := p.ProduceU64()
		if err != nil {
			return xfererr.Wrap(xfererr.SourceError, "produce u64", err)
		}
		if err := c.ConsumeU64(row, col, v); err != nil {
			return xfererr.Wrap(xfererr.DestinationError, "consume u64", err)
		}
		return nil
	}, nil
}

func buildOptU64Transfer(src source.Source, w dest.PartitionWriter) (cellFunc, error) {
	p, ok := src.(source.OptU64Producer)
	if !ok {
		return nil, xfererr.New(xfererr.UnsupportedType, "source does not produce optional u64")
	}
	c, ok := w.(dest.OptU64Consumer)
	if !ok {
		return nil, xfererr.New(xfererr.UnsupportedType, "destination does not consume optional u64")
	}
	return func(row, col int) error {
		v, err := p.ProduceOptU64()
		if err != nil {
			return xfererr.Wrap(xfererr.SourceError, "produce optional u64", err)
		}
		if err := c.ConsumeOptU64(row, col, v); err != nil {
			return xfererr.Wrap(xfererr.DestinationError, "consume optional u64", err)
		}
		return nil
	}, nil
}

func buildF64Transfer(src source.Source, w dest.PartitionWriter) (cellFunc, error) {
	p, ok := src.(source.F64Producer)
	if !ok {
		return nil, xfererr.New(xfererr.UnsupportedType, "source does not produce f64")
	}
	c, ok := w.(dest.F64Consumer)
	if !ok {
		return nil, xfererr.New(xfererr.UnsupportedType, "destination does not consume f64")
	}
	return func(row, col int) error {
		v, err := p.ProduceF64()
		if err != nil {
			return xfererr.Wrap(xfererr.SourceError, "produce f64", err)
		}
		if err := c.ConsumeF64(row, col, v); err != nil {
			return xfererr.Wrap(xfererr.DestinationError, "consume f64", err)
		}
		return nil
	}, nil
}

func buildOptF64Transfer(src source.Source, w dest.PartitionWriter) (cellFunc, error) {
	p, ok := src.(source.OptF64Producer)
	if !ok {
		return nil, xfererr.New(xfererr.UnsupportedType, "source does not produce optional f64")
	}
	c, ok := w.(dest.OptF64Consumer)
	if !ok {
		return nil, xfererr.New(xfererr.UnsupportedType, "destination does not consume optional f64")
	}
	return func(row, col int) error {
		v, err := p.ProduceOptF64()
		if err != nil {
			return xfererr.Wrap(xfererr.SourceError, "produce optional f64", err)
		}
		if err := c.ConsumeOptF64(row, col, v); err != nil {
			return xfererr.Wrap(xfererr.DestinationError, "consume optional f64", err)
		}
		return nil
	}, nil
}

func buildBoolTransfer(src source.Source, w dest.PartitionWriter) (cellFunc, error) {
	p, ok := src.(source.BoolProducer)
	if !ok {
		return nil, xfererr.New(xfererr.UnsupportedType, "source does not produce bool")
	}
	c, ok := w.(dest.BoolConsumer)
	if !ok {
		return nil, xfererr.New(xfererr.UnsupportedType, "destination does not consume bool")
	}
	return func(row, col int) error {
		v, err := p.ProduceBool()
		if err != nil {
			return xfererr.Wrap(xfererr.SourceError, "produce bool", err)
		}
		if err := c.ConsumeBool(row, col, v); err != nil {
			return xfererr.Wrap(xfererr.DestinationError, "consume bool", err)
		}
		return nil
	}, nil
}

func buildOptBoolTransfer(src source.Source, w dest.PartitionWriter) (cellFunc, error) {
	p, ok := src.(source.OptBoolProducer)
	if !ok {
		return nil, xfererr.New(xfererr.UnsupportedType, "source does not produce optional bool")
	}
	c, ok := w.(dest.OptBoolConsumer)
	if !ok {
		return nil, xfererr.New(xfererr.UnsupportedType, "destination does not consume optional bool")
	}
	return func(row, col int) error {
		v, err := p.ProduceOptBool()
		if err != nil {
			return xfererr.Wrap(xfererr.SourceError, "produce optional bool", err)
		}
		if err := c.ConsumeOptBool(row, col, v); err != nil {
			return xfererr.Wrap(xfererr.DestinationError, "consume optional bool", err)
		}
		return nil
	}, nil
}

func buildStringTransfer(src source.Source, w dest.PartitionWriter) (cellFunc, error) {
	p, ok := src.(source.StringProducer)
	if !ok {
		return nil, xfererr.New(xfererr.UnsupportedType, "source does not produce string")
	}
	c, ok := w.(dest.StringConsumer)
	if !ok {
		return nil, xfererr.New(xfererr.UnsupportedType, "destination does not consume string")
	}
	return func(row, col int) error {
		v, err := p.ProduceString()
		if err != nil {
			return xfererr.Wrap(xfererr.SourceError, "produce string", err)
		}
		if err := c.ConsumeString(row, col, v); err != nil {
			return xfererr.Wrap(xfererr.DestinationError, "consume string", err)
		}
		return nil
	}, nil
}

func buildTimestampTransfer(src source.Source, w dest.PartitionWriter) (cellFunc, error) {
	p, ok := src.(source.TimestampProducer)
	if !ok {
		return nil, xfererr.New(xfererr.UnsupportedType, "source does not produce timestamp")
	}
	c, ok := w.(dest.TimestampConsumer)
	if !ok {
		return nil, xfererr.New(xfererr.UnsupportedType, "destination does not consume timestamp")
	}
	return func(row, col int) error {
		v, err := p.ProduceTimestamp()
		if err != nil {
			return xfererr.Wrap(xfererr.SourceError, "produce timestamp", err)
		}
		if err := c.ConsumeTimestamp(row, col, v); err != nil {
			return xfererr.Wrap(xfererr.DestinationError, "consume timestamp", err)
		}
		return nil
	}, nil
}

// transferPartition realizes one cellFunc per schema column -- the
// only per-column type resolution -- then runs the whole partition
// in the negotiated traversal order: row-outer/column-inner for
// RowMajor, column-outer/row-inner for ColumnMajor (§4.5). Any
// failure aborts the partition immediately, leaving its remaining
// cells unwritten.
func transferPartition(src source.Source, w dest.PartitionWriter, schema typesys.Schema, order dataorder.Order) error {
	nrows := w.NRows()
	cells := make([]cellFunc, len(schema))
	for col, tag := range schema {
		builder, err := transferers.Realize(tag)
		if err != nil {
			return err
		}
		fn, err := builder(src, w)
		if err != nil {
			return err
		}
		cells[col] = fn
	}

	switch order {
	case dataorder.RowMajor:
		for row := 0; row < nrows; row++ {
			for col := range schema {
				if err := cells[col](row, col); err != nil {
					return err
				}
			}
		}
	case dataorder.ColumnMajor:
		for col := range schema {
			for row := 0; row < nrows; row++ {
				if err := cells[col](row, col); err != nil {
					return err
				}
			}
		}
	default:
		return xfererr.New(xfererr.UnsupportedDataOrder, order.String())
	}
	return nil
}
