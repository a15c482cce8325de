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

package xfererr

import (
	"errors"
	"testing"
)

func TestIsMatchesByKindOnly(t *testing.T) {
	err := New(OutOfBound, "row 9 col 2")
	if !errors.Is(err, New(OutOfBound, "")) {
		t.Fatal("errors.Is should match same Kind regardless of Msg")
	}
	if errors.Is(err, New(UnsupportedType, "")) {
		t.Fatal("errors.Is should not match a different Kind")
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(DestinationError, "allocate", cause)
	if !errors.Is(err, cause) {
		t.Fatal("Wrap should preserve the cause for errors.Is")
	}
	kind, ok := Of(err)
	if !ok || kind != DestinationError {
		t.Fatalf("Of(err) = (%v, %v), want (DestinationError, true)", kind, ok)
	}
}
