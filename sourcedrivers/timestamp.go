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
	"time"

	"github.com/nzrymiak/xfer/dataorder"
	"github.com/nzrymiak/xfer/date"
	"github.com/nzrymiak/xfer/source"
	"github.com/nzrymiak/xfer/xfererr"
)

var (
	_ source.Builder           = TimestampSourceBuilder{}
	_ source.Source            = (*TimestampCounterSource)(nil)
	_ source.TimestampProducer = (*TimestampCounterSource)(nil)
)

// TimestampSourceBuilder builds a TimestampCounterSource.
type TimestampSourceBuilder struct{}

func (TimestampSourceBuilder) DataOrders() []dataorder.Order {
	return []dataorder.Order{dataorder.RowMajor}
}

func (TimestampSourceBuilder) SetDataOrder(order dataorder.Order) error {
	if order != dataorder.RowMajor {
		return xfererr.New(xfererr.UnsupportedDataOrder, order.String())
	}
	return nil
}

func (TimestampSourceBuilder) Build() source.Source { return NewTimestampCounterSource() }

// TimestampCounterSource produces timestamps starting from the Unix
// epoch and advancing one second per produced cell, for deterministic
// timestamp-column tests.
type TimestampCounterSource struct {
	cursor date.Time
	nrows  int
}

func NewTimestampCounterSource() *TimestampCounterSource {
	return &TimestampCounterSource{cursor: date.UnixMicro(0)}
}

func (s *TimestampCounterSource) RunQuery(query string) error {
	n, err := parseRowCount(query)
	if err != nil {
		return err
	}
	s.nrows = n
	return nil
}

func (s *TimestampCounterSource) NRows() int { return s.nrows }

func (s *TimestampCounterSource) ProduceTimestamp() (date.Time, error) {
	ret := s.cursor
	s.cursor = ret.Add(time.Second)
	return ret, nil
}
