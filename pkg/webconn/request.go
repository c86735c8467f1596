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

	"github.com/tombee/webconn/pkg/jsoncodec"
	"github.com/tombee/webconn/pkg/scheduler"
)

// Requester is implemented by QueryConnection (I = map[string]string) and
// BodyConnection (I = string).
type Requester[I any] interface {
	Request(ctx context.Context, input I) *scheduler.Deferred[Outcome[string]]
	Codec() *jsoncodec.Codec
}

var (
	_ Requester[map[string]string] = (*QueryConnection)(nil)
	_ Requester[string]            = (*BodyConnection)(nil)
)

// RequestAs issues a request and maps the body with fn. If the request
// fails, fn is not called and the outcome carries the zero O. An error from
// fn is returned from Wait alongside the mapped outcome.
func RequestAs[O, I any](ctx context.Context, r Requester[I], input I, fn func(string) (O, error)) *scheduler.Deferred[Outcome[O]] {
	return scheduler.Map(r.Request(ctx, input), func(o Outcome[string]) (Outcome[O], error) {
		if o.Failed() {
			var zero O
			return MapOutcome(o, func(string) O { return zero }), nil
		}

		var mapErr error
		mapped := MapOutcome(o, func(body string) O {
			v, err := fn(body)
			mapErr = err
			return v
		})
		return mapped, mapErr
	})
}

// RequestJSON issues a request and decodes the body into an O with the
// requester's codec.
func RequestJSON[O, I any](ctx context.Context, r Requester[I], input I) *scheduler.Deferred[Outcome[O]] {
	return RequestJSONWith[O](ctx, r, input, r.Codec())
}

// RequestJSONWith issues a request and decodes the body into an O with
// codec. A decode failure is returned from Wait as an *errors.DecodeError;
// the outcome keeps its status and timing.
func RequestJSONWith[O, I any](ctx context.Context, r Requester[I], input I, codec *jsoncodec.Codec) *scheduler.Deferred[Outcome[O]] {
	return RequestAs(ctx, r, input, func(body string) (O, error) {
		return jsoncodec.Decode[O](codec, body)
	})
}
