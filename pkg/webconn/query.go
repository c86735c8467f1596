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
	"context"
	"net/url"

	"github.com/tombee/webconn/pkg/scheduler"
)

// QueryConnection issues GET requests with percent-encoded query parameters.
type QueryConnection struct {
	*connection
}

// WithRateID sets the rate bucket and returns the connection.
func (q *QueryConnection) WithRateID(id int) *QueryConnection {
	q.setRateID(id)
	return q
}

// Request issues a GET to the target URL with params appended as a query.
// Parameters are joined to any query already present in the target URL.
// A transport failure yields a failed outcome and an error from Wait.
func (q *QueryConnection) Request(ctx context.Context, params map[string]string) *scheduler.Deferred[Outcome[string]] {
	return q.submit(ctx, MethodGet, q.requestURL(params), "", nil)
}

func (q *QueryConnection) requestURL(params map[string]string) *url.URL {
	u := q.URL()
	encoded := EncodeQuery(params)
	if encoded == "" {
		return u
	}

	if u.RawQuery == "" {
		u.RawQuery = encoded
	} else {
		u.RawQuery += "&" + encoded
	}
	u.ForceQuery = false
	return u
}
