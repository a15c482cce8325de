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

package anyarray

import (
	"fmt"

	"github.com/dchest/siphash"

	"github.com/nzrymiak/xfer/xfererr"
)

// sipKey0/sipKey1 seed the siphash used to compute a stable
// per-process type-id fingerprint for each native type. The key
// value itself is arbitrary; it only needs to be fixed for the
// lifetime of the process so two AnyArrays built from the same T
// always compare equal.
const (
	sipKey0 = 0x6e7a7972_6d69616b
	sipKey1 = 0x636f6c78_66657200
)

func typeID[T any]() uint64 {
	var zero T
	name := fmt.Sprintf("%T", zero)
	return siphash.Hash(sipKey0, sipKey1, []byte(name))
}

func typeName[T any]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

// dims is satisfied by every *Array2[T] regardless of T, since
// Rows/Cols never depend on the element type. It lets AnyArray
// report its shape without knowing T.
type dims interface {
	Rows() int
	Cols() int
}

// splitter is satisfied by every *Array2[T]; it exposes SplitRows
// through a non-generic interface by boxing the two halves as `any`.
type splitter interface {
	splitRowsAny(n int) (head, tail any)
}

// AnyArray is a type-erased, owned two-dimensional column block: an
// element-type fingerprint, a human-readable type name for error
// messages, and the underlying *Array2[T] hidden behind `any`.
type AnyArray struct {
	typeID   uint64
	typeName string
	value    any
}

// New allocates an owned, default-initialized rows x cols block of
// native type T and erases it into an AnyArray.
func New[T any](rows, cols int) *AnyArray {
	return &AnyArray{
		typeID:   typeID[T](),
		typeName: typeName[T](),
		value:    NewArray2[T](rows, cols),
	}
}

// TypeName returns the native type name backing this block, for
// error messages.
func (a *AnyArray) TypeName() string { return a.typeName }

// Rows returns the number of rows.
func (a *AnyArray) Rows() int { return a.value.(dims).Rows() }

// Cols returns the number of columns.
func (a *AnyArray) Cols() int { return a.value.(dims).Cols() }

// typeMatches reports whether T is the type this AnyArray was built
// with, by comparing type-id fingerprints.
func typeMatches[T any](a *AnyArray) bool {
	return a.typeID == typeID[T]()
}

// Downcast returns the typed view if T matches the block's erased
// element type, or ok=false otherwise. This is the checked path:
// always safe to call, never panics.
func Downcast[T any](a *AnyArray) (arr *Array2[T], ok bool) {
	if !typeMatches[T](a) {
		return nil, false
	}
	arr, ok = a.value.(*Array2[T])
	return arr, ok
}

// DowncastChecked is Downcast with a *xfererr.Error on mismatch,
// for use on the checked write path (e.g. consume_checked).
func DowncastChecked[T any](a *AnyArray) (*Array2[T], error) {
	arr, ok := Downcast[T](a)
	if !ok {
		return nil, xfererr.New(xfererr.UnexpectedType,
			fmt.Sprintf("block holds %s, requested %s", a.typeName, typeName[T]()))
	}
	return arr, nil
}

// UnsafeDowncast returns the typed view without checking the erased
// type id. The contract is that the caller has already confirmed
// the type once per column (e.g. via the reification step in the
// dispatcher); calling it with the wrong T is a contract violation,
// not a recoverable error, and will panic via the underlying type
// assertion.
func UnsafeDowncast[T any](a *AnyArray) *Array2[T] {
	return a.value.(*Array2[T])
}

// SplitRows splits the block at row n into a [0, n) view and a
// [n, rows) view while preserving the erased type id, mirroring
// Array2[T].SplitRows at the type-erased layer.
func (a *AnyArray) SplitRows(n int) (head, tail *AnyArray) {
	h, t := a.value.(splitter).splitRowsAny(n)
	return &AnyArray{typeID: a.typeID, typeName: a.typeName, value: h},
		&AnyArray{typeID: a.typeID, typeName: a.typeName, value: t}
}
