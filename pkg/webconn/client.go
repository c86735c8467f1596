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
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/webconn/internal/log"
	webconnerrors "github.com/tombee/webconn/pkg/errors"
	"github.com/tombee/webconn/pkg/httpclient"
	"github.com/tombee/webconn/pkg/jsoncodec"
	"github.com/tombee/webconn/pkg/scheduler"
)

// DefaultCapacityFraction is the share of CPUs the scheduler of a Client
// built without WithScheduler uses as worker slots.
const DefaultCapacityFraction = 0.4

const tracerName = "github.com/tombee/webconn/pkg/webconn"

// Client creates connections and executes their requests. It is safe for
// concurrent use.
type Client struct {
	scheduler     scheduler.Scheduler
	ownsScheduler bool
	http          *http.Client
	codec         *jsoncodec.Codec
	logger        *slog.Logger
	onError       func(error)
	tracer        trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithScheduler sets the scheduler requests are submitted to. The Client
// does not close a scheduler it did not create.
func WithScheduler(s scheduler.Scheduler) Option {
	return func(c *Client) {
		c.scheduler = s
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithCodec sets the codec connections hand out from Codec.
func WithCodec(codec *jsoncodec.Codec) Option {
	return func(c *Client) {
		c.codec = codec
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithErrorHandler sets a callback that receives every transport failure
// as it happens, in addition to the error returned from Wait.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Client) {
		c.onError = fn
	}
}

// WithTracerProvider sets the provider request spans are created from.
// Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// NewClient creates a Client. Without options it builds a RateLimited
// scheduler sized at DefaultCapacityFraction of the CPUs and an HTTP client
// from httpclient.DefaultConfig.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}

	c.logger = log.WithComponent(c.logger, "webconn")

	if c.scheduler == nil {
		s, err := scheduler.NewRateLimited(scheduler.Config{
			CapacityFraction: DefaultCapacityFraction,
			Logger:           c.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create scheduler: %w", err)
		}
		c.scheduler = s
		c.ownsScheduler = true
	}

	if c.http == nil {
		cfg := httpclient.DefaultConfig()
		cfg.Logger = c.logger
		hc, err := httpclient.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		c.http = hc
	}

	if c.codec == nil {
		c.codec = jsoncodec.Default()
	}
	if c.tracer == nil {
		c.tracer = otel.GetTracerProvider().Tracer(tracerName)
	}

	// Bucket 0 is where every new connection starts; it is unlimited.
	c.scheduler.RegisterBucket(0, 0)

	return c, nil
}

// ForURL returns a QueryConnection for rawURL in rate bucket 0.
func (c *Client) ForURL(rawURL string) (*QueryConnection, error) {
	target, err := parseTarget(rawURL)
	if err != nil {
		return nil, err
	}
	return &QueryConnection{connection: newConnection(c, target)}, nil
}

// ForURLMethod returns a BodyConnection for rawURL in rate bucket 0. GET is
// rejected; use ForURL for GET requests.
func (c *Client) ForURLMethod(rawURL string, method Method) (*BodyConnection, error) {
	method, err := ParseMethod(string(method))
	if err != nil {
		return nil, err
	}
	if method == MethodGet {
		return nil, &webconnerrors.ValidationError{
			Field:   "method",
			Message: "GET requests carry no body",
			Hint:    "use ForURL for GET requests",
		}
	}

	target, err := parseTarget(rawURL)
	if err != nil {
		return nil, err
	}
	return &BodyConnection{connection: newConnection(c, target), method: method}, nil
}

// RegisterBucket registers a rate bucket with the client's scheduler. See
// scheduler.Scheduler.RegisterBucket.
func (c *Client) RegisterBucket(id int, interval time.Duration) {
	c.scheduler.RegisterBucket(id, interval)
}

// Scheduler returns the scheduler requests are submitted to.
func (c *Client) Scheduler() scheduler.Scheduler {
	return c.scheduler
}

// Codec returns the client codec.
func (c *Client) Codec() *jsoncodec.Codec {
	return c.codec
}

// Close waits for queued requests and stops the scheduler if the Client
// created it.
func (c *Client) Close(ctx context.Context) error {
	if !c.ownsScheduler {
		return nil
	}
	return c.scheduler.Close(ctx)
}

func parseTarget(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, &webconnerrors.ValidationError{
			Field:   "url",
			Message: err.Error(),
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &webconnerrors.ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("unsupported scheme %q", u.Scheme),
			Hint:    "use an absolute http:// or https:// URL",
		}
	}
	if u.Host == "" {
		return nil, &webconnerrors.ValidationError{
			Field:   "url",
			Message: "missing host",
			Hint:    "use an absolute http:// or https:// URL",
		}
	}
	return u, nil
}
