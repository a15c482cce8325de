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

// Package dest declares the Destination/PartitionWriter contract: the
// write-side counterpart of package source. A Destination allocates
// storage for a whole run up front (§4.4) and hands out one
// PartitionWriter per partition, each owning a disjoint row range so
// partitions can be filled concurrently without locking.
package dest

import (
	"github.com/nzrymiak/xfer/dataorder"
	"github.com/nzrymiak/xfer/date"
	"github.com/nzrymiak/xfer/typesys"
)

// Destination owns the storage for an entire transfer. Allocate is
// called exactly once, after the schema and per-partition row counts
// are known; PartitionWriters then returns one writer per partition.
type Destination interface {
	// DataOrders lists, in order of preference, the traversal orders
	// this destination can absorb.
	DataOrders() []dataorder.Order
	// SetDataOrder selects one of DataOrders; it fails with
	// xfererr.UnsupportedDataOrder if order isn't offered.
	SetDataOrder(order dataorder.Order) error
	// Allocate reserves storage for nrows split across the given
	// per-partition row counts, typed by schema. len(partitionRows)
	// is the number of partitions; sum(partitionRows) must equal
	// nrows.
	Allocate(schema typesys.Schema, nrows int, partitionRows []int) error
	// PartitionWriters returns one writer per partition passed to
	// Allocate, in the same order. Valid only after Allocate
	// succeeds.
	PartitionWriters() []PartitionWriter
	// Schema returns the schema this destination was allocated with.
	Schema() typesys.Schema
}

// PartitionWriter writes one partition's rows, column by column, in
// the data order the Destination negotiated. A PartitionWriter is
// used by exactly one goroutine; its row range never overlaps another
// partition's, so no synchronization is required between writers.
type PartitionWriter interface {
	// NRows returns the number of rows this writer owns.
	NRows() int
}

// A PartitionWriter need not implement every consumer interface
// below; the dispatcher only calls the one matching the schema tag
// for a given column, and reports xfererr.UnsupportedType if the
// concrete writer doesn't satisfy it.

// U64Consumer is implemented by writers that can consume uint64 cells.
type U64Consumer interface {
	ConsumeU64(row, col int, v uint64) error
}

// OptU64Consumer is implemented by writers that can consume
// nullable uint64 cells.
type OptU64Consumer interface {
	ConsumeOptU64(row, col int, v *uint64) error
}

// F64Consumer is implemented by writers that can consume float64 cells.
type F64Consumer interface {
	ConsumeF64(row, col int, v float64) error
}

// OptF64Consumer is implemented by writers that can consume
// nullable float64 cells.
type OptF64Consumer interface {
	ConsumeOptF64(row, col int, v *float64) error
}

// BoolConsumer is implemented by writers that can consume bool cells.
type BoolConsumer interface {
	ConsumeBool(row, col int, v bool) error
}

// OptBoolConsumer is implemented by writers that can consume
// nullable bool cells.
type OptBoolConsumer interface {
	ConsumeOptBool(row, col int, v *bool) error
}

// StringConsumer is implemented by writers that can consume string cells.
type StringConsumer interface {
	ConsumeString(row, col int, v string) error
}

// TimestampConsumer is implemented by writers that can consume
// timestamp cells.
type TimestampConsumer interface {
	ConsumeTimestamp(row, col int, v date.Time) error
}
