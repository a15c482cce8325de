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
	"errors"
	"testing"

	"github.com/nzrymiak/xfer/xfererr"
)

func TestDowncastRoundTrip(t *testing.T) {
	a := New[uint64](2, 3)
	arr, ok := Downcast[uint64](a)
	if !ok {
		t.Fatal("Downcast[uint64] should succeed")
	}
	arr.Set(1, 2, 42)
	if got := UnsafeDowncast[uint64](a).At(1, 2); got != 42 {
		t.Errorf("At(1,2) = %d, want 42", got)
	}
}

func TestDowncastMismatch(t *testing.T) {
	a := New[uint64](2, 3)
	if _, ok := Downcast[string](a); ok {
		t.Fatal("Downcast[string] on a uint64 block should fail")
	}
	_, err := DowncastChecked[string](a)
	if err == nil {
		t.Fatal("DowncastChecked[string] should return an error")
	}
	if kind, ok := xfererr.Of(err); !ok || kind != xfererr.UnexpectedType {
		t.Fatalf("expected UnexpectedType kind, got %v (ok=%v)", kind, ok)
	}
	if !errors.Is(err, xfererr.New(xfererr.UnexpectedType, "")) {
		t.Fatal("errors.Is should match UnexpectedType kind")
	}
}

func TestSplitRowsPreservesType(t *testing.T) {
	a := New[float64](4, 2)
	full, _ := Downcast[float64](a)
	for r := 0; r < 4; r++ {
		for c := 0; c < 2; c++ {
			full.Set(r, c, float64(r*2+c))
		}
	}

	head, tail := a.SplitRows(1)
	if head.Rows() != 1 || tail.Rows() != 3 {
		t.Fatalf("split rows = (%d, %d), want (1, 3)", head.Rows(), tail.Rows())
	}

	headArr, ok := Downcast[float64](head)
	if !ok {
		t.Fatal("head should still downcast to float64")
	}
	if headArr.At(0, 0) != 0 || headArr.At(0, 1) != 1 {
		t.Errorf("head row 0 = [%v %v], want [0 1]", headArr.At(0, 0), headArr.At(0, 1))
	}

	tailArr, _ := Downcast[float64](tail)
	if tailArr.At(0, 0) != 2 {
		t.Errorf("tail row 0 col 0 = %v, want 2 (shares backing storage)", tailArr.At(0, 0))
	}

	// mutating through the tail view must be visible in the original
	// backing array, proving SplitRows shares storage rather than copying.
	tailArr.Set(0, 0, 99)
	if full.At(1, 0) != 99 {
		t.Errorf("mutation through tail view not reflected in original block")
	}
}
