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

package webconn

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsTotal tracks completed and failed requests
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webconn_requests_total",
			Help: "Total requests by method and status class",
		},
		[]string{"method", "status_class"},
	)

	// requestDuration tracks send-to-receive time
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webconn_request_duration_seconds",
			Help:    "Time from send until the response body was read",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func recordRequest(method Method, status int, elapsed time.Duration) {
	requestsTotal.WithLabelValues(method.String(), statusClass(status)).Inc()
	if status != StatusFailed {
		requestDuration.WithLabelValues(method.String()).Observe(elapsed.Seconds())
	}
}

// statusClass buckets a status code as "2xx", "4xx" and so on, or "error"
// for requests that never completed.
func statusClass(status int) string {
	if status == StatusFailed || status < 100 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
