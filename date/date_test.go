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

package date

import (
	"testing"
	"time"
)

func TestUnixMicroRoundTrip(t *testing.T) {
	for _, us := range []int64{0, 1, 1_690_000_000_000_000, -1_000_000} {
		got := UnixMicro(us).UnixMicro()
		if got != us {
			t.Errorf("UnixMicro(%d).UnixMicro() = %d", us, got)
		}
	}
}

func TestAddAdvancesByExactDuration(t *testing.T) {
	start := UnixMicro(0)
	next := start.Add(time.Second)
	if next.UnixMicro() != 1_000_000 {
		t.Errorf("Add(time.Second).UnixMicro() = %d, want 1000000", next.UnixMicro())
	}
	if !start.Before(next) {
		t.Error("start should be Before next")
	}
	if next.Before(start) {
		t.Error("next should not be Before start")
	}
}

func TestEqual(t *testing.T) {
	a := UnixMicro(42)
	b := UnixMicro(42)
	c := UnixMicro(43)
	if !a.Equal(b) {
		t.Error("a.Equal(b) = false, want true")
	}
	if a.Equal(c) {
		t.Error("a.Equal(c) = true, want false")
	}
}

func TestString(t *testing.T) {
	s := UnixMicro(0).String()
	want := time.UnixMicro(0).UTC().Format(time.RFC3339Nano)
	if s != want {
		t.Errorf("String() = %q, want %q", s, want)
	}
}
