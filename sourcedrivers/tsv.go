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
	_ source.Builder        = (*TSVSourceBuilder)(nil)
	_ source.Source         = (*TSVSource)(nil)
	_ source.U64Producer    = (*TSVSource)(nil)
	_ source.OptU64Producer = (*TSVSource)(nil)
	_ source.F64Producer    = (*TSVSource)(nil)
	_ source.BoolProducer   = (*TSVSource)(nil)
	_ source.StringProducer = (*TSVSource)(nil)
)

// TSVSourceBuilder builds a TSVSource reading tab-separated values,
// optionally gzip-compressed when the path ends in ".gz". It is the
// tab-delimited sibling of CSVSourceBuilder, differing only in which
// xsv.RowChopper it drives.
type TSVSourceBuilder struct{}

func NewTSVSourceBuilder() *TSVSourceBuilder { return &TSVSourceBuilder{} }

func (*TSVSourceBuilder) DataOrders() []dataorder.Order {
	return []dataorder.Order{dataorder.RowMajor}
}

func (*TSVSourceBuilder) SetDataOrder(order dataorder.Order) error {
	if order != dataorder.RowMajor {
		return xfererr.New(xfererr.UnsupportedDataOrder, order.String())
	}
	return nil
}

func (*TSVSourceBuilder) Build() source.Source { return NewTSVSource() }

// TSVSource loads an entire headerless TSV file into memory on
// RunQuery and serves cells out of it row-major, one Produce* call
// per cell. query is a file path.
type TSVSource struct {
	records [][]string
	counter int
	nrows   int
	ncols   int
}

func NewTSVSource() *TSVSource { return &TSVSource{} }

func (s *TSVSource) RunQuery(query string) error {
	f, err := os.Open(query)
	if err != nil {
		return xfererr.Wrap(xfererr.SourceError, "open tsv file", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(query, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return xfererr.Wrap(xfererr.SourceError, "open gzip tsv file", err)
		}
		defer gz.Close()
		r = gz
	}

	chopper := &xsv.TsvChopper{}
	var records [][]string
	for {
		fields, err := chopper.GetNext(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return xfererr.Wrap(xfererr.SourceError, "read tsv record", err)
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

func (s *TSVSource) NRows() int { return s.nrows }

func (s *TSVSource) cell() (string, error) {
	if s.ncols == 0 {
		return "", xfererr.New(xfererr.OutOfBound, "tsv source has no columns")
	}
	row, col := s.counter/s.ncols, s.counter%s.ncols
	if row >= len(s.records) {
		return "", xfererr.New(xfererr.OutOfBound, "tsv source exhausted")
	}
	s.counter++
	if col >= len(s.records[row]) {
		return "", nil
	}
	return s.records[row][col], nil
}

func (s *TSVSource) ProduceString() (string, error) {
	return s.cell()
}

func (s *TSVSource) ProduceU64() (uint64, error) {
	v, err := s.cell()
	if err != nil {
		return 0, err
	}
	n, _ := strconv.ParseUint(v, 10, 64)
	return n, nil
}

func (s *TSVSource) ProduceOptU64() (*uint64, error) {
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

func (s *TSVSource) ProduceF64() (float64, error) {
	v, err := s.cell()
	if err != nil {
		return 0, err
	}
	n, _ := strconv.ParseFloat(v, 64)
	return n, nil
}

func (s *TSVSource) ProduceBool() (bool, error) {
	v, err := s.cell()
	if err != nil {
		return false, err
	}
	b, _ := strconv.ParseBool(v)
	return b, nil
}
