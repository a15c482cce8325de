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

// Package dispatcher is the orchestration core (§4.5): given a
// source.Builder, a dest.Destination, a schema and a set of queries,
// it negotiates a common DataOrder, probes every query for its row
// count, allocates the destination once, and fans the actual
// transfer out across one goroutine per partition.
package dispatcher

import (
	"math/rand"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/oklog/ulid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/nzrymiak/xfer/dataorder"
	"github.com/nzrymiak/xfer/dest"
	"github.com/nzrymiak/xfer/source"
	"github.com/nzrymiak/xfer/typesys"
	"github.com/nzrymiak/xfer/xfererr"
)

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithLogger sets the structured logger used for per-run and
// per-partition events. Defaults to log.NewNopLogger().
func WithLogger(logger log.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithRegisterer sets the Prometheus registerer metrics are
// registered against. Defaults to a private registry, so multiple
// Dispatchers never collide on metric names.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(d *Dispatcher) { d.reg = reg }
}

// Dispatcher runs one transfer from a SourceBuilder to a
// Destination, following a fixed schema. A Dispatcher is built once
// per (builder, destination, schema) triple and can run multiple
// query sets sequentially, though each Run/RunChecked call owns its
// own sources and partition writers.
type Dispatcher struct {
	builder     source.Builder
	destination dest.Destination
	schema      typesys.Schema

	logger log.Logger
	reg    prometheus.Registerer
	m      *metrics
}

// New constructs a Dispatcher. Order negotiation and allocation
// happen lazily, on each Run/RunChecked call.
func New(builder source.Builder, destination dest.Destination, schema typesys.Schema, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		builder:     builder,
		destination: destination,
		schema:      schema,
		logger:      log.NewNopLogger(),
		reg:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.m = newMetrics(d.reg)
	return d
}

// Run executes one query per element of queries, each against its
// own Source, and writes the concatenated result into the
// Destination this Dispatcher was built with. See §4.5 for the
// step-by-step algorithm.
func (d *Dispatcher) Run(queries []string) error {
	return d.run(queries)
}

// RunChecked behaves identically to Run. The reference
// implementation this engine is modeled on distinguished an unchecked
// fast consume path from a bounds/type-checked one used in testing;
// every dest.Consumer implementation here always performs that
// checking, so the two entry points collapse to the same code path.
// RunChecked exists to keep the distinction visible at the call site.
func (d *Dispatcher) RunChecked(queries []string) error {
	return d.run(queries)
}

func (d *Dispatcher) run(queries []string) error {
	start := time.Now()
	defer func() { d.m.runDuration.Observe(time.Since(start).Seconds()) }()

	runID := uuid.New()
	logger := log.With(d.logger, "run_id", runID.String())
	level.Info(logger).Log("msg", "dispatch starting", "queries", len(queries))

	order, ok := dataorder.Common(d.builder.DataOrders(), d.destination.DataOrders())
	if !ok {
		return xfererr.New(xfererr.NoCommonDataOrder, "source and destination share no data order")
	}
	if err := d.builder.SetDataOrder(order); err != nil {
		return err
	}
	if err := d.destination.SetDataOrder(order); err != nil {
		return err
	}

	sources := make([]source.Source, len(queries))
	counts := make([]int, len(queries))
	total := 0
	for i, q := range queries {
		src := d.builder.Build()
		if err := src.RunQuery(q); err != nil {
			return xfererr.Wrap(xfererr.SourceError, "run_query", err)
		}
		sources[i] = src
		counts[i] = src.NRows()
		total += counts[i]
	}

	if err := d.destination.Allocate(d.schema, total, counts); err != nil {
		return err
	}
	writers := d.destination.PartitionWriters()
	if len(writers) != len(sources) {
		return xfererr.New(xfererr.DestinationError, "partition writer count does not match query count")
	}

	entropy := ulid.Monotonic(rand.New(rand.NewSource(start.UnixNano())), 0)

	var g errgroup.Group
	for i := range sources {
		i := i
		partitionID := ulid.MustNew(ulid.Timestamp(start), entropy)
		g.Go(func() error {
			plog := log.With(logger, "partition", i, "partition_id", partitionID.String())
			d.m.partitionsStarted.Inc()
			level.Debug(plog).Log("msg", "partition starting", "rows", counts[i])

			if err := transferPartition(sources[i], writers[i], d.schema, order); err != nil {
				d.m.partitionsFailed.Inc()
				level.Error(plog).Log("msg", "partition failed", "err", err)
				return err
			}
			d.m.rowsTransferred.Add(float64(counts[i]))
			level.Debug(plog).Log("msg", "partition done")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		level.Error(logger).Log("msg", "dispatch failed", "err", err)
		return err
	}
	level.Info(logger).Log("msg", "dispatch complete", "rows", total)
	return nil
}
