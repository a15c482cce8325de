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

package dispatcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	partitionsStarted prometheus.Counter
	partitionsFailed  prometheus.Counter
	rowsTransferred   prometheus.Counter
	runDuration       prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		partitionsStarted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "xfer",
			Subsystem: "dispatcher",
			Name:      "partitions_started_total",
			Help:      "Number of partitions a dispatcher has begun transferring.",
		}),
		partitionsFailed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "xfer",
			Subsystem: "dispatcher",
			Name:      "partitions_failed_total",
			Help:      "Number of partitions that returned an error before completing.",
		}),
		rowsTransferred: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "xfer",
			Subsystem: "dispatcher",
			Name:      "rows_transferred_total",
			Help:      "Number of rows successfully transferred across all partitions.",
		}),
		runDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: "xfer",
			Subsystem: "dispatcher",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of a full Dispatcher.Run/RunChecked call.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
