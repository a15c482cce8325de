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

// Package sourcedrivers provides small, self-contained Source
// implementations used to exercise the dispatcher without an external
// system: counters seeded from a single native type, and a CSV file
// reader. Each counter source only implements Produce* for the types
// its counter can represent; everything else surfaces as
// xfererr.UnsupportedType at dispatch time.
package sourcedrivers

import (
	"strconv"

	"github.com/nzrymiak/xfer/dataorder"
	"github.com/nzrymiak/xfer/source"
	"github.com/nzrymiak/xfer/xfererr"
)

var (
	_ source.Builder = U64SourceBuilder{}
	_ source.Builder = StringSourceBuilder{}
	_ source.Builder = BoolSourceBuilder{}
	_ source.Builder = F64SourceBuilder{}

	_ source.Source = (*U64CounterSource)(nil)
	_ source.Source = (*StringSource)(nil)
	_ source.Source = (*BoolCounterSource)(nil)
	_ source.Source = (*F64CounterSource)(nil)

	_ source.U64Producer    = (*U64CounterSource)(nil)
	_ source.OptU64Producer = (*U64CounterSource)(nil)
	_ source.F64Producer    = (*U64CounterSource)(nil)
	_ source.StringProducer = (*U64CounterSource)(nil)
	_ source.BoolProducer   = (*U64CounterSource)(nil)

	_ source.StringProducer = (*StringSource)(nil)
	_ source.U64Producer    = (*StringSource)(nil)
	_ source.OptU64Producer = (*StringSource)(nil)
	_ source.F64Producer    = (*StringSource)(nil)

	_ source.BoolProducer   = (*BoolCounterSource)(nil)
	_ source.U64Producer    = (*BoolCounterSource)(nil)
	_ source.OptU64Producer = (*BoolCounterSource)(nil)
	_ source.F64Producer    = (*BoolCounterSource)(nil)

	_ source.F64Producer    = (*F64CounterSource)(nil)
	_ source.U64Producer    = (*F64CounterSource)(nil)
	_ source.OptU64Producer = (*F64CounterSource)(nil)
)

func parseRowCount(query string) (int, error) {
	n, err := strconv.Atoi(query)
	if err != nil {
		return 0, xfererr.Wrap(xfererr.SourceError, "query must be a row count", err)
	}
	return n, nil
}

// U64SourceBuilder builds a U64CounterSource.
type U64SourceBuilder struct{}

func (U64SourceBuilder) DataOrders() []dataorder.Order { return []dataorder.Order{dataorder.RowMajor} }

func (U64SourceBuilder) SetDataOrder(order dataorder.Order) error {
	if order != dataorder.RowMajor {
		return xfererr.New(xfererr.UnsupportedDataOrder, order.String())
	}
	return nil
}

func (U64SourceBuilder) Build() source.Source { return NewU64CounterSource() }

// U64CounterSource counts up from 0; every native type it produces is
// the counter value cast or formatted as needed. Query is the row
// count as a decimal string.
type U64CounterSource struct {
	counter uint64
	nrows   int
}

func NewU64CounterSource() *U64CounterSource { return &U64CounterSource{} }

func (s *U64CounterSource) RunQuery(query string) error {
	n, err := parseRowCount(query)
	if err != nil {
		return err
	}
	s.nrows = n
	return nil
}

func (s *U64CounterSource) NRows() int { return s.nrows }

func (s *U64CounterSource) next() uint64 {
	ret := s.counter
	s.counter++
	return ret
}

func (s *U64CounterSource) ProduceU64() (uint64, error) { return s.next(), nil }

func (s *U64CounterSource) ProduceOptU64() (*uint64, error) {
	v := s.next()
	return &v, nil
}

func (s *U64CounterSource) ProduceF64() (float64, error) { return float64(s.next()), nil }

func (s *U64CounterSource) ProduceString() (string, error) {
	return strconv.FormatUint(s.next(), 10), nil
}

func (s *U64CounterSource) ProduceBool() (bool, error) {
	return s.next()%2 == 0, nil
}

// StringSourceBuilder builds a StringSource.
type StringSourceBuilder struct{}

func (StringSourceBuilder) DataOrders() []dataorder.Order {
	return []dataorder.Order{dataorder.RowMajor}
}

func (StringSourceBuilder) SetDataOrder(order dataorder.Order) error {
	if order != dataorder.RowMajor {
		return xfererr.New(xfererr.UnsupportedDataOrder, order.String())
	}
	return nil
}

func (StringSourceBuilder) Build() source.Source { return NewStringSource() }

// StringSource holds its counter as a uint64 and formats it as a
// decimal string for ProduceString; its numeric producers return the
// counter value directly.
type StringSource struct {
	value uint64
	nrows int
}

func NewStringSource() *StringSource { return &StringSource{} }

func (s *StringSource) RunQuery(query string) error {
	n, err := parseRowCount(query)
	if err != nil {
		return err
	}
	s.nrows = n
	return nil
}

func (s *StringSource) NRows() int { return s.nrows }

func (s *StringSource) ProduceString() (string, error) {
	ret := strconv.FormatUint(s.value, 10)
	s.value++
	return ret, nil
}

func (s *StringSource) ProduceU64() (uint64, error) {
	ret := s.value
	s.value++
	return ret, nil
}

func (s *StringSource) ProduceOptU64() (*uint64, error) {
	ret := s.value
	s.value++
	return &ret, nil
}

func (s *StringSource) ProduceF64() (float64, error) {
	ret := s.value
	s.value++
	return float64(ret), nil
}

// BoolSourceBuilder builds a BoolCounterSource.
type BoolSourceBuilder struct{}

func (BoolSourceBuilder) DataOrders() []dataorder.Order {
	return []dataorder.Order{dataorder.RowMajor}
}

func (BoolSourceBuilder) SetDataOrder(order dataorder.Order) error {
	if order != dataorder.RowMajor {
		return xfererr.New(xfererr.UnsupportedDataOrder, order.String())
	}
	return nil
}

func (BoolSourceBuilder) Build() source.Source { return NewBoolCounterSource() }

// BoolCounterSource alternates a bool flag on every produced cell.
//
// Its numeric Produce* methods derive from the same alternating
// state (0/1) rather than a fixed constant: an early reference
// implementation of this source always returned 1 from its
// u64/f64 producers regardless of the flag, which was a demo-only
// placeholder, not a behavior worth preserving.
type BoolCounterSource struct {
	flag  bool
	nrows int
}

func NewBoolCounterSource() *BoolCounterSource { return &BoolCounterSource{} }

func (s *BoolCounterSource) RunQuery(query string) error {
	n, err := parseRowCount(query)
	if err != nil {
		return err
	}
	s.nrows = n
	return nil
}

func (s *BoolCounterSource) NRows() int { return s.nrows }

func (s *BoolCounterSource) next() bool {
	ret := s.flag
	s.flag = !s.flag
	return ret
}

func (s *BoolCounterSource) ProduceBool() (bool, error) { return s.next(), nil }

func (s *BoolCounterSource) ProduceU64() (uint64, error) {
	if s.next() {
		return 1, nil
	}
	return 0, nil
}

func (s *BoolCounterSource) ProduceOptU64() (*uint64, error) {
	var v uint64
	if s.next() {
		v = 1
	}
	return &v, nil
}

func (s *BoolCounterSource) ProduceF64() (float64, error) {
	if s.next() {
		return 1.0, nil
	}
	return 0.0, nil
}

// F64SourceBuilder builds a F64CounterSource.
type F64SourceBuilder struct{}

func (F64SourceBuilder) DataOrders() []dataorder.Order {
	return []dataorder.Order{dataorder.RowMajor}
}

func (F64SourceBuilder) SetDataOrder(order dataorder.Order) error {
	if order != dataorder.RowMajor {
		return xfererr.New(xfererr.UnsupportedDataOrder, order.String())
	}
	return nil
}

func (F64SourceBuilder) Build() source.Source { return NewF64CounterSource() }

// F64CounterSource counts up by 0.5 per cell; it only implements the
// numeric producers, since a floating point counter has no sane
// string or bool representation.
type F64CounterSource struct {
	counter float64
	nrows   int
}

func NewF64CounterSource() *F64CounterSource { return &F64CounterSource{} }

func (s *F64CounterSource) RunQuery(query string) error {
	n, err := parseRowCount(query)
	if err != nil {
		return err
	}
	s.nrows = n
	return nil
}

func (s *F64CounterSource) NRows() int { return s.nrows }

func (s *F64CounterSource) next() float64 {
	ret := s.counter
	s.counter += 0.5
	return ret
}

func (s *F64CounterSource) ProduceF64() (float64, error) { return s.next(), nil }

func (s *F64CounterSource) ProduceU64() (uint64, error) { return uint64(s.next()), nil }

func (s *F64CounterSource) ProduceOptU64() (*uint64, error) {
	v := uint64(s.next())
	return &v, nil
}
