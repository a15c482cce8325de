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

// Package typesys defines the closed set of column-type tags that a
// transfer pipeline speaks, the native Go type backing each tag, and
// the reification operator that turns a runtime tag into a single
// monomorphic call.
package typesys

import (
	"fmt"

	"github.com/nzrymiak/xfer/date"
)

// DataType is the default TypeSystem implementation. Each value tags
// exactly one native scalar type; nullability is baked into the tag
// itself (U64 vs OptU64) so dispatch never needs a separate null flag.
type DataType int

const (
	U64 DataType = iota
	OptU64
	F64
	OptF64
	Bool
	OptBool
	String
	Timestamp

	numDataTypes
)

// All is the declarative tag table: every DataType this package
// knows about, in declaration order. New TypeSystems built on other
// native types can follow the same pattern without touching the
// dispatch machinery in realize.go.
var All = []DataType{U64, OptU64, F64, OptF64, Bool, OptBool, String, Timestamp}

func (t DataType) String() string {
	switch t {
	case U64:
		return "U64"
	case OptU64:
		return "OptU64"
	case F64:
		return "F64"
	case OptF64:
		return "OptF64"
	case Bool:
		return "Bool"
	case OptBool:
		return "OptBool"
	case String:
		return "String"
	case Timestamp:
		return "Timestamp"
	default:
		return fmt.Sprintf("DataType(%d)", int(t))
	}
}

// Nullable reports whether the tag's native type is a pointer
// (nil standing in for SQL NULL).
func (t DataType) Nullable() bool {
	switch t {
	case OptU64, OptF64, OptBool:
		return true
	default:
		return false
	}
}

// Valid reports whether t is one of the declared tags.
func (t DataType) Valid() bool {
	return t >= U64 && t < numDataTypes
}

// nativeNames gives the Go type name backing each tag, used only for
// error messages; it carries no behavior.
var nativeNames = map[DataType]string{
	U64:       "uint64",
	OptU64:    "*uint64",
	F64:       "float64",
	OptF64:    "*float64",
	Bool:      "bool",
	OptBool:   "*bool",
	String:    "string",
	Timestamp: "date.Time",
}

// NativeName returns the name of the Go type backing t, for error
// messages.
func (t DataType) NativeName() string {
	if n, ok := nativeNames[t]; ok {
		return n
	}
	return "<unknown>"
}

// zeroTimestamp is the epoch used when a Produce implementation has
// nothing better to report; keeping it here avoids every driver
// importing date just to build a zero value.
var zeroTimestamp = date.UnixMicro(0)

// ZeroTimestamp returns the timestamp used to represent "epoch" by
// drivers that don't track wall-clock time.
func ZeroTimestamp() date.Time { return zeroTimestamp }
