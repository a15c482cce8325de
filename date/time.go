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

// Package date holds the wall-clock timestamp type the Timestamp
// native type is backed by (typesys.NTimestamp). Unlike the tenant
// control plane this type started life in, nothing here needs a
// faster-than-time.Time representation or a custom RFC3339 parser --
// every caller just needs a value it can build from Unix micros,
// advance, and compare, so Time is a thin wrapper around time.Time
// rather than a reimplementation of it.
package date

import "time"

// Time is a timestamp with microsecond resolution, the representation
// every Timestamp column value moves through the engine as.
type Time struct {
	t time.Time
}

// UnixMicro returns the Time us microseconds after the Unix epoch.
func UnixMicro(us int64) Time {
	return Time{t: time.UnixMicro(us).UTC()}
}

// UnixMicro returns t as the number of microseconds since the Unix
// epoch.
func (t Time) UnixMicro() int64 {
	return t.t.UnixMicro()
}

// Add returns t advanced by d.
func (t Time) Add(d time.Duration) Time {
	return Time{t: t.t.Add(d)}
}

// Before returns whether t is before t2.
func (t Time) Before(t2 Time) bool {
	return t.t.Before(t2.t)
}

// Equal returns whether t and t2 represent the same instant.
func (t Time) Equal(t2 Time) bool {
	return t.t.Equal(t2.t)
}

// String implements fmt.Stringer for debugging and logging.
func (t Time) String() string {
	return t.t.Format(time.RFC3339Nano)
}
