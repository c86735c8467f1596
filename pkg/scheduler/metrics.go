// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// submittedTotal tracks work accepted by Submit
	submittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webconn_scheduler_submitted_total",
			Help: "Total units of work accepted by bucket",
		},
		[]string{"bucket"},
	)

	// rejectedTotal tracks work that never started
	rejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webconn_scheduler_rejected_total",
			Help: "Total units of work that never started by reason",
		},
		[]string{"reason"},
	)

	// inFlight tracks work currently holding a worker slot
	inFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "webconn_scheduler_in_flight",
			Help: "Units of work currently running",
		},
	)

	// admissionWait tracks time from Submit until a worker slot was granted
	admissionWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webconn_scheduler_admission_wait_seconds",
			Help:    "Time spent waiting for the rate limit and a worker slot",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"bucket"},
	)
)
