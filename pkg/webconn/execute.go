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
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/webconn/internal/log"
	"github.com/tombee/webconn/internal/tracing"
	webconnerrors "github.com/tombee/webconn/pkg/errors"
	"github.com/tombee/webconn/pkg/httpclient"
	"github.com/tombee/webconn/pkg/scheduler"
)

// call is one request, fully resolved from connection state.
type call struct {
	method   Method
	target   *url.URL
	headers  map[string]string
	defaults map[string]string
	body     string
	bucket   int
}

func (c *Client) execute(ctx context.Context, rc call) *scheduler.Deferred[Outcome[string]] {
	target := rc.target.String()

	c.logger.Debug("request queued",
		log.MethodKey, rc.method,
		log.URLKey, httpclient.SanitizeURL(target),
		log.BucketKey, rc.bucket,
	)

	// Work that never reached the network still resolves to a failed outcome
	// for this target.
	notSent := func(error) Outcome[string] {
		return FailedOutcome[string](time.Now(), target, rc.method)
	}

	return scheduler.GoWithFallback(ctx, c.scheduler, rc.bucket, c.reportError, notSent, func(ctx context.Context, fail func(error)) Outcome[string] {
		sentAt := time.Now()

		ctx, span := c.tracer.Start(ctx, "webconn.request",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(rc.method.String()),
				semconv.URLFull(httpclient.SanitizeURL(target)),
				attribute.Int("webconn.rate_bucket", rc.bucket),
			),
		)
		defer span.End()

		failed := func(err error) Outcome[string] {
			terr := &webconnerrors.TransportError{
				Method: rc.method.String(),
				URL:    httpclient.SanitizeURL(target),
				Cause:  err,
			}
			span.RecordError(terr)
			span.SetStatus(codes.Error, "transport failure")
			recordRequest(rc.method, StatusFailed, time.Since(sentAt))
			fail(terr)
			return FailedOutcome[string](sentAt, target, rc.method)
		}

		req, err := c.newRequest(ctx, rc, target)
		if err != nil {
			return failed(err)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return failed(err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return failed(err)
		}
		receivedAt := time.Now()

		span.SetAttributes(
			semconv.HTTPResponseStatusCode(resp.StatusCode),
			attribute.Int("webconn.body_size", len(data)),
		)
		if resp.StatusCode >= 500 {
			span.SetStatus(codes.Error, resp.Status)
		}
		recordRequest(rc.method, resp.StatusCode, receivedAt.Sub(sentAt))
		log.Trace(ctx, c.logger, "response body",
			slog.String(log.URLKey, httpclient.SanitizeURL(target)),
			slog.String("body", string(data)),
		)

		return NewOutcome(sentAt, receivedAt, target, rc.method, resp.StatusCode, string(data))
	})
}

func (c *Client) newRequest(ctx context.Context, rc call, target string) (*http.Request, error) {
	var body io.Reader = http.NoBody
	if rc.body != "" {
		body = strings.NewReader(rc.body)
	}

	req, err := http.NewRequestWithContext(ctx, rc.method.String(), target, body)
	if err != nil {
		return nil, err
	}

	tracing.InjectHTTPHeaders(ctx, req.Header)

	// Sorted so that names differing only in case resolve the same way on
	// every request.
	names := make([]string, 0, len(rc.headers))
	for name := range rc.headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		req.Header.Set(name, rc.headers[name])
	}

	for name, value := range rc.defaults {
		if req.Header.Get(name) == "" {
			req.Header.Set(name, value)
		}
	}
	return req, nil
}

func (c *Client) reportError(err error) {
	c.logger.Warn("request failed", log.Error(err))
	if c.onError != nil {
		c.onError(err)
	}
}
