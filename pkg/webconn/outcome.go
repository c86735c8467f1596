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
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tombee/webconn/pkg/jsoncodec"
)

// StatusFailed is the status code of an outcome whose request never
// completed.
const StatusFailed = -1

// Outcome records one request attempt: when it was sent, when the response
// was fully read, where it went, and what came back. Outcomes are values and
// never change after construction.
//
// An outcome without a receive time always has StatusCode() == StatusFailed,
// and the reverse.
type Outcome[T any] struct {
	sentAt     time.Time
	receivedAt time.Time
	received   bool
	url        string
	method     Method
	statusCode int
	body       T
}

// NewOutcome creates the outcome of a completed request. A statusCode of
// StatusFailed yields FailedOutcome instead: receivedAt and body are dropped.
func NewOutcome[T any](sentAt, receivedAt time.Time, url string, method Method, statusCode int, body T) Outcome[T] {
	if statusCode == StatusFailed {
		return FailedOutcome[T](sentAt, url, method)
	}
	return Outcome[T]{
		sentAt:     sentAt,
		receivedAt: receivedAt,
		received:   true,
		url:        url,
		method:     method,
		statusCode: statusCode,
		body:       body,
	}
}

// FailedOutcome creates the outcome of a request that never completed. The
// body is the zero value.
func FailedOutcome[T any](sentAt time.Time, url string, method Method) Outcome[T] {
	return Outcome[T]{
		sentAt:     sentAt,
		url:        url,
		method:     method,
		statusCode: StatusFailed,
	}
}

// SentAt returns the moment just before the request went out.
func (o Outcome[T]) SentAt() time.Time { return o.sentAt }

// ReceivedAt returns the moment the response body was fully read. ok is
// false for failed requests.
func (o Outcome[T]) ReceivedAt() (t time.Time, ok bool) { return o.receivedAt, o.received }

// URL returns the final request URL, including any encoded query.
func (o Outcome[T]) URL() string { return o.url }

// Method returns the request method.
func (o Outcome[T]) Method() Method { return o.method }

// StatusCode returns the HTTP status code, or StatusFailed.
func (o Outcome[T]) StatusCode() int { return o.statusCode }

// Body returns the response body.
func (o Outcome[T]) Body() T { return o.body }

// Failed reports whether the request never completed.
func (o Outcome[T]) Failed() bool { return !o.received }

// OK reports whether the request completed with a 2xx status.
func (o Outcome[T]) OK() bool {
	return o.received && o.statusCode >= 200 && o.statusCode < 300
}

// Duration returns the time between send and receive in whole milliseconds,
// or -1 if the request failed.
func (o Outcome[T]) Duration() int64 {
	if !o.received {
		return -1
	}
	return o.receivedAt.Sub(o.sentAt).Milliseconds()
}

func (o Outcome[T]) String() string {
	if !o.received {
		return fmt.Sprintf("%s %s -> failed", o.method, o.url)
	}
	return fmt.Sprintf("%s %s -> %d in %dms", o.method, o.url, o.statusCode, o.Duration())
}

type outcomeJSON[T any] struct {
	SentAt     time.Time  `json:"sent_at"`
	ReceivedAt *time.Time `json:"received_at,omitempty"`
	URL        string     `json:"url"`
	Method     Method     `json:"method"`
	StatusCode int        `json:"status_code"`
	DurationMS int64      `json:"duration_ms"`
	Body       T          `json:"body"`
}

// MarshalJSON implements json.Marshaler.
func (o Outcome[T]) MarshalJSON() ([]byte, error) {
	out := outcomeJSON[T]{
		SentAt:     o.sentAt,
		URL:        o.url,
		Method:     o.method,
		StatusCode: o.statusCode,
		DurationMS: o.Duration(),
		Body:       o.body,
	}
	if o.received {
		received := o.receivedAt
		out.ReceivedAt = &received
	}
	return json.Marshal(out)
}

// MapOutcome returns a copy of o whose body is fn(o.Body()). Timing, URL,
// method and status are unchanged.
func MapOutcome[T, O any](o Outcome[T], fn func(T) O) Outcome[O] {
	return Outcome[O]{
		sentAt:     o.sentAt,
		receivedAt: o.receivedAt,
		received:   o.received,
		url:        o.url,
		method:     o.method,
		statusCode: o.statusCode,
		body:       fn(o.body),
	}
}

// DecodeBody decodes the body of o into an O. A failed outcome has no body
// and yields the zero value without error.
func DecodeBody[O any](o Outcome[string], codec *jsoncodec.Codec) (O, error) {
	if o.Failed() {
		var zero O
		return zero, nil
	}
	return jsoncodec.Decode[O](codec, o.body)
}

// QueryBody evaluates the jq expression expr against the body of o. A failed
// outcome yields no results.
func QueryBody(o Outcome[string], codec *jsoncodec.Codec, expr string) ([]any, error) {
	if o.Failed() {
		return nil, nil
	}
	return codec.Query(o.body, expr)
}
