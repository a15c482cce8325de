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

package typesys

import (
	"errors"
	"fmt"

	"github.com/nzrymiak/xfer/date"
)

// ErrUnsupportedType is returned by Realize when a tag has no
// registered monomorphization, and by Check when a native type
// doesn't match the expected tag.
var ErrUnsupportedType = errors.New("typesys: unsupported type")

// Realizer is the reification operator from the design: a
// function-shaped object, parameterized over every native type this
// package knows about, with one thunk per tag filled in by the
// caller. Realize looks up the tag exactly once and returns the
// corresponding thunk's result; nothing past that point depends on
// the tag value, so the returned R can be used on a per-cell hot
// path without any further type switch.
//
// Leaving a field nil means "this object has no monomorphization for
// that tag"; Realize reports ErrUnsupportedType in that case, mirroring
// a Source or PartitionWriter that only implements Produce/Consume for
// some of the native types.
type Realizer[R any] struct {
	U64       func() R
	OptU64    func() R
	F64       func() R
	OptF64    func() R
	Bool      func() R
	OptBool   func() R
	String    func() R
	Timestamp func() R
}

// Realize performs the tag -> monomorphic-value reification. It is
// the single point where a runtime DataType becomes a concrete,
// already-specialized R.
func (r Realizer[R]) Realize(t DataType) (R, error) {
	var fn func() R
	switch t {
	case U64:
		fn = r.U64
	case OptU64:
		fn = r.OptU64
	case F64:
		fn = r.F64
	case OptF64:
		fn = r.OptF64
	case Bool:
		fn = r.Bool
	case OptBool:
		fn = r.OptBool
	case String:
		fn = r.String
	case Timestamp:
		fn = r.Timestamp
	default:
		var zero R
		return zero, fmt.Errorf("%w: tag %s", ErrUnsupportedType, t)
	}
	if fn == nil {
		var zero R
		return zero, fmt.Errorf("%w: %s has no implementation for %s", ErrUnsupportedType, t, t)
	}
	return fn(), nil
}

// nativeTypeID identifies a Go type by its name; used to implement
// TypeAssoc without forcing every native type through reflection on
// the hot path (it only runs once per column, at Check/allocate time).
func nativeTypeID[T any]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

// Check implements the TypeAssoc relation: it verifies that native
// type T is the one associated with tag t in this TypeSystem. It is
// called once per column, at the boundary of a checked write or at
// allocation time, never per cell.
func Check[T any](t DataType) error {
	want := t.NativeName()
	got := nativeTypeID[T]()
	if want != got {
		return fmt.Errorf("%w: tag %s expects %s, got %s", ErrUnsupportedType, t, want, got)
	}
	return nil
}

// native type aliases, declared once here so drivers and writers
// agree on exactly what Go type backs each tag.
type (
	NU64       = uint64
	NOptU64    = *uint64
	NF64       = float64
	NOptF64    = *float64
	NBool      = bool
	NOptBool   = *bool
	NString    = string
	NTimestamp = date.Time
)
