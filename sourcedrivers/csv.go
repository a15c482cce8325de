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

package sourcedrivers

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/nzrymiak/xfer/dataorder"
	"github.com/nzrymiak/xfer/source"
	"github.com/nzrymiak/xfer/xfererr"
	"github.com/nzrymiak/xfer/xsv"
)

var (
	_ source.Builder        = (*CSVSourceBuilder)(nil)
	_ source.Source         = (*CSVSource)(nil)
	_ source.U64Producer    = (*CSVSource)(nil)
	_ source.OptU64Producer = (*CSVSource)(nil)
	_ source.F64Producer    = (*CSVSource)(nil)
	_ source.BoolProducer   = (*CSVSource)(nil)
	_ source.StringProducer = (*CSVSource)(nil)
)

// CSVSourceBuilder builds a CSVSource reading RFC 4180 CSV, optionally
// gzip-compressed when the path ends in ".gz".
type CSVSourceBuilder struct{}

func NewCSVSourceBuilder() *CSVSourceBuilder { return &CSVSourceBuilder{} }

func (*CSVSourceBuilder) DataOrders() []dataorder.Order {
	return []dataorder.Order{dataorder.RowMajor}
}

func (*CSVSourceBuilder) SetDataOrder(order dataorder.Order) error {
	if order != dataorder.RowMajor {
		return xfererr.New(xfererr.UnsupportedDataOrder, order.String())
	}
	return nil
}

func (*CSVSourceBuilder) Build() source.Source { return NewCSVSource() }

// CSVSource loads an entire headerless CSV file into memory on
// RunQuery and serves cells out of it row-major, one Produce* call
// per cell. query is a file path.
type CSVSource struct {
	records [][]string
	counter int
	nrows   int
	ncols   int
}

func NewCSVSource() *CSVSource { return &CSVSource{} }

// RunQuery loads and parses the file at query, which must be a path
// to a CSV document (optionally gzip-compressed, detected by a ".gz"
// suffix). Every record is slurped into memory up front so NRows is
// exact before the first Produce* call.
func (s *CSVSource) RunQuery(query string) error {
	f, err := os.Open(query)
	if err != nil {
		return xfererr.Wrap(xfererr.SourceError, "open csv file", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(query, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return xfererr.Wrap(xfererr.SourceError, "open gzip csv file", err)
		}
		defer gz.Close()
		r = gz
	}

	chopper := &xsv.CsvChopper{}
	var records [][]string
	for {
		fields, err := chopper.GetNext(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return xfererr.Wrap(xfererr.SourceError, "read csv record", err)
		}
		row := make([]string, len(fields))
		copy(row, fields)
		records = append(records, row)
	}

	s.records = records
	s.nrows = len(records)
	s.ncols = chopper.Width()
	return nil
}

func (s *CSVSource) NRows() int { return s.nrows }

func (s *CSVSource) cell() (string, error) {
	if s.ncols == 0 {
		return "", xfererr.New(xfererr.OutOfBound, "csv source has no columns")
	}
	row, col := s.counter/s.ncols, s.counter%s.ncols
	if row >= len(s.records) {
		return "", xfererr.New(xfererr.OutOfBound, "csv source exhausted")
	}
	s.counter++
	if col >= len(s.records[row]) {
		return "", nil
	}
	return s.records[row][col], nil
}

func (s *CSVSource) ProduceString() (string, error) {
	return s.cell()
}

func (s *CSVSource) ProduceU64() (uint64, error) {
	v, err := s.cell()
	if err != nil {
		return 0, err
	}
	n, _ := strconv.ParseUint(v, 10, 64)
	return n, nil
}

func (s *CSVSource) ProduceOptU64() (*uint64, error) {
	v, err := s.cell()
	if err != nil {
		return nil, err
	}
	if v == "" {
		return nil, nil
	}
	n, _ := strconv.ParseUint(v, 10, 64)
	return &n, nil
}

func (s *CSVSource) ProduceF64() (float64, error) {
	v, err := s.cell()
	if err != nil {
		return 0, err
	}
	n, _ := strconv.ParseFloat(v, 64)
	return n, nil
}

func (s *CSVSource) ProduceBool() (bool, error) {
	v, err := s.cell()
	if err != nil {
		return false, err
	}
	b, _ := strconv.ParseBool(v)
	return b, nil
}
