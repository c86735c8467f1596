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
	"errors"

	"github.com/goccy/go-json"

	webconnerrors "github.com/tombee/webconn/pkg/errors"
	"github.com/tombee/webconn/pkg/jsoncodec"
	"github.com/tombee/webconn/pkg/scheduler"
)

// ContentTypeJSON is sent with RequestObject and RequestRawJSON unless a Content-Type header is
// configured.
const ContentTypeJSON = "application/json"

// BodyConnection sends a string body with a fixed method other than GET.
type BodyConnection struct {
	*connection
	method Method
}

// Method returns the method every request uses.
func (b *BodyConnection) Method() Method {
	return b.method
}

// WithRateID sets the rate bucket and returns the connection.
func (b *BodyConnection) WithRateID(id int) *BodyConnection {
	b.setRateID(id)
	return b
}

// Request sends body to the target URL. A transport failure yields a failed
// outcome and an error from Wait.
func (b *BodyConnection) Request(ctx context.Context, body string) *scheduler.Deferred[Outcome[string]] {
	return b.submit(ctx, b.method, b.URL(), body, nil)
}

// RequestObject encodes obj with the connection codec and sends it.
func (b *BodyConnection) RequestObject(ctx context.Context, obj any) (*scheduler.Deferred[Outcome[string]], error) {
	return b.RequestObjectWith(ctx, obj, b.Codec())
}

// RequestObjectWith encodes obj with codec and sends it. An encode failure
// is returned immediately and nothing is sent.
func (b *BodyConnection) RequestObjectWith(ctx context.Context, obj any, codec *jsoncodec.Codec) (*scheduler.Deferred[Outcome[string]], error) {
	body, err := codec.Encode(obj)
	if err != nil {
		return nil, err
	}
	return b.submit(ctx, b.method, b.URL(), body, map[string]string{"Content-Type": ContentTypeJSON}), nil
}

// RequestRawJSON sends text byte for byte after checking that it is one
// valid JSON document. Invalid text is returned as an *errors.DecodeError
// and nothing is sent.
func (b *BodyConnection) RequestRawJSON(ctx context.Context, text string) (*scheduler.Deferred[Outcome[string]], error) {
	if !json.Valid([]byte(text)) {
		return nil, &webconnerrors.DecodeError{Target: "json", Cause: errors.New("body is not a valid JSON document")}
	}
	return b.submit(ctx, b.method, b.URL(), text, map[string]string{"Content-Type": ContentTypeJSON}), nil
}
