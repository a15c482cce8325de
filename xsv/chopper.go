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

// Package xsv chops delimiter-separated text (CSV, RFC 4180, and TSV)
// into row records for the csv source driver. It has no knowledge of
// column types or schemas; that belongs to the caller.
package xsv

import "io"

// RowChopper fetches one record at a time from a reader and splits
// it into its individual fields. Implementations may hold onto the
// reader between calls to reuse internal buffers; GetNext returns
// io.EOF once the reader is exhausted.
type RowChopper interface {
	GetNext(r io.Reader) ([]string, error)
}
