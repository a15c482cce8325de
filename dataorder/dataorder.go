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

// Package dataorder defines the closed enumeration of traversal
// orders a Source and a Destination can negotiate.
package dataorder

// Order is the row/column traversal order a Source produces values
// in, or a Destination expects to consume them in.
type Order int

const (
	// RowMajor visits all columns of row 0, then all columns of row
	// 1, and so on.
	RowMajor Order = iota
	// ColumnMajor visits all rows of column 0, then all rows of
	// column 1, and so on.
	ColumnMajor
)

func (o Order) String() string {
	switch o {
	case RowMajor:
		return "RowMajor"
	case ColumnMajor:
		return "ColumnMajor"
	default:
		return "Order(?)"
	}
}

// Common returns the first order that appears in both a and b, in
// a's order of preference. ok is false if the two lists share no
// order.
func Common(a, b []Order) (order Order, ok bool) {
	for _, oa := range a {
		for _, ob := range b {
			if oa == ob {
				return oa, true
			}
		}
	}
	return 0, false
}

// Contains reports whether orders includes o.
func Contains(orders []Order, o Order) bool {
	for _, x := range orders {
		if x == o {
			return true
		}
	}
	return false
}
