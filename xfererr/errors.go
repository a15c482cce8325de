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

// Package xfererr defines the closed set of error kinds the
// dispatch core can surface, per the error-handling design: no
// silent fallback, no coercion, and every failure traces back to
// exactly one of these kinds.
package xfererr

import (
	"errors"
	"fmt"
)

// Kind identifies which of the core's error conditions occurred.
type Kind int

const (
	// UnsupportedDataOrder means a Source or Destination was asked
	// to use a DataOrder it doesn't offer.
	UnsupportedDataOrder Kind = iota
	// NoCommonDataOrder means a Source's and Destination's DATA_ORDERS
	// share no element.
	NoCommonDataOrder
	// SchemaMismatch means the schema length didn't match the number
	// of columns a Source or Destination actually works with.
	SchemaMismatch
	// UnexpectedType means a checked write's native type didn't
	// match the schema's tag for that column.
	UnexpectedType
	// UnsupportedType means a Source or Destination lacks a
	// Produce/Consume implementation for a native type the schema
	// requires.
	UnsupportedType
	// OutOfBound means a row or column index fell outside a
	// partition's range.
	OutOfBound
	// SourceError wraps a failure surfaced by a Source (driver or
	// parse error).
	SourceError
	// DestinationError wraps a failure surfaced by a Destination
	// (allocation or host-runtime error).
	DestinationError
)

func (k Kind) String() string {
	switch k {
	case UnsupportedDataOrder:
		return "UnsupportedDataOrder"
	case NoCommonDataOrder:
		return "NoCommonDataOrder"
	case SchemaMismatch:
		return "SchemaMismatch"
	case UnexpectedType:
		return "UnexpectedType"
	case UnsupportedType:
		return "UnsupportedType"
	case OutOfBound:
		return "OutOfBound"
	case SourceError:
		return "SourceError"
	case DestinationError:
		return "DestinationError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the single error type the core returns; Kind tells the
// caller which of the closed set of failures occurred, Cause (if
// non-nil) is the wrapped driver/allocation error for SourceError
// and DestinationError.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, xfererr.New(SomeKind, "")) match any *Error
// of the same Kind, regardless of Msg/Cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error with no wrapped cause.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Msg: msg}
}

// Wrap builds an *Error that carries an underlying driver error.
func Wrap(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Msg: msg, Cause: cause}
}

// Of reports the Kind of err if it is (or wraps) an *Error.
func Of(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
