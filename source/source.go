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

// Package source declares the Source/SourceBuilder contract: a
// stateful, row-ordered cursor over a query string, typed by the
// shared TypeSystem (see §4.3).
package source

import (
	"github.com/nzrymiak/xfer/dataorder"
	"github.com/nzrymiak/xfer/date"
)

// Builder is a factory parameterized by the Source it produces.
// One Builder instance is used per Dispatcher run; Build is called
// once per query/partition to get an independent Source.
type Builder interface {
	// DataOrders lists, in order of preference, the traversal orders
	// this source can stream in.
	DataOrders() []dataorder.Order
	// SetDataOrder selects one of DataOrders; it fails with
	// xfererr.UnsupportedDataOrder if order isn't offered.
	SetDataOrder(order dataorder.Order) error
	// Build constructs a fresh Source, independent of any other
	// Source this Builder has produced.
	Build() Source
}

// Source is a stateful cursor over one query. RunQuery must be
// called exactly once before NRows or any Produce* method; a Source
// is used by exactly one partition and discarded afterward.
type Source interface {
	// RunQuery executes query and materializes enough state to
	// report NRows. query is an opaque string the engine never
	// parses (a file path, a SQL statement, a row count -- whatever
	// the concrete driver expects).
	RunQuery(query string) error
	// NRows returns the row count for this query. Only valid after
	// RunQuery returns successfully.
	NRows() int
}

// A Source need not implement every producer interface below; the
// dispatcher only calls the one matching the schema tag for a given
// column, and reports xfererr.UnsupportedType if the concrete Source
// doesn't satisfy it.

// U64Producer is implemented by sources that can produce uint64 cells.
type U64Producer interface {
	ProduceU64() (uint64, error)
}

// OptU64Producer is implemented by sources that can produce
// nullable uint64 cells.
type OptU64Producer interface {
	ProduceOptU64() (*uint64, error)
}

// F64Producer is implemented by sources that can produce float64 cells.
type F64Producer interface {
	ProduceF64() (float64, error)
}

// OptF64Producer is implemented by sources that can produce
// nullable float64 cells.
type OptF64Producer interface {
	ProduceOptF64() (*float64, error)
}

// BoolProducer is implemented by sources that can produce bool cells.
type BoolProducer interface {
	ProduceBool() (bool, error)
}

// OptBoolProducer is implemented by sources that can produce
// nullable bool cells.
type OptBoolProducer interface {
	ProduceOptBool() (*bool, error)
}

// StringProducer is implemented by sources that can produce string cells.
type StringProducer interface {
	ProduceString() (string, error)
}

// TimestampProducer is implemented by sources that can produce
// timestamp cells.
type TimestampProducer interface {
	ProduceTimestamp() (date.Time, error)
}
