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

package shared

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tombee/webconn/internal/config"
	"github.com/tombee/webconn/internal/log"
	"github.com/tombee/webconn/internal/tracing"
	"github.com/tombee/webconn/pkg/httpclient"
	"github.com/tombee/webconn/pkg/scheduler"
	"github.com/tombee/webconn/pkg/webconn"
)

// Runtime holds everything a request command needs, built from the global
// flags and the loaded configuration.
type Runtime struct {
	Config *config.Config
	Logger *slog.Logger
	Client *webconn.Client

	scheduler *scheduler.RateLimited
	tracer    *sdktrace.TracerProvider
}

// NewRuntime loads configuration and builds the logger, scheduler, HTTP
// client and webconn client for cmd.
func NewRuntime(cmd *cobra.Command) (*Runtime, error) {
	cfg, err := config.Load(config.ResolvePath(GetConfigPath()))
	if err != nil {
		return nil, NewInvalidArgsError("failed to load configuration", err)
	}

	logCfg := cfg.LogConfig()
	logCfg.Output = cmd.ErrOrStderr()
	if GetVerbose() {
		logCfg.Level = "debug"
	}
	if GetQuiet() {
		logCfg.Level = "error"
	}
	logger := log.New(logCfg)

	rt := &Runtime{Config: cfg, Logger: logger}
	opts := []webconn.Option{webconn.WithLogger(logger)}

	if GetTrace() {
		v, _, _ := GetVersion()
		exp := cfg.TracingExporterConfig()
		exp.Writer = cmd.ErrOrStderr()
		exp.PrettyPrint = true
		tp, err := tracing.NewProvider(commandContext(cmd), tracing.ProviderConfig{
			ServiceName:    "webconn",
			ServiceVersion: v,
			Exporter:       exp,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to set up tracing: %w", err)
		}
		rt.tracer = tp
		opts = append(opts, webconn.WithTracerProvider(tp))
	}

	s, err := scheduler.NewRateLimited(cfg.SchedulerClientConfig(logger))
	if err != nil {
		return nil, NewInvalidArgsError("invalid scheduler configuration", err)
	}
	rt.scheduler = s

	hc, err := httpclient.New(cfg.HTTPClientConfig(logger))
	if err != nil {
		return nil, NewInvalidArgsError("invalid HTTP configuration", err)
	}

	opts = append(opts, webconn.WithScheduler(s), webconn.WithHTTPClient(hc))
	client, err := webconn.NewClient(opts...)
	if err != nil {
		return nil, err
	}
	for _, b := range cfg.Scheduler.Buckets {
		client.RegisterBucket(b.ID, b.Interval)
	}
	rt.Client = client

	return rt, nil
}

// Bucket returns the rate bucket for a request to rawURL: the --bucket flag
// when given, else the first configured bucket whose match patterns cover
// the URL, else the unlimited bucket 0.
func (r *Runtime) Bucket(cmd *cobra.Command, flags *RequestFlags, rawURL string) int {
	if f := cmd.Flags().Lookup("bucket"); f != nil && f.Changed {
		return flags.Bucket
	}
	if id, ok := r.Config.BucketFor(rawURL); ok {
		return id
	}
	return flags.Bucket
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// Context returns parent with a fresh correlation ID attached, and a logger
// carrying the same ID.
func (r *Runtime) Context(parent context.Context) (context.Context, *slog.Logger) {
	id := tracing.NewCorrelationID()
	return tracing.ToContext(parent, id), log.WithCorrelationID(r.Logger, id.String())
}

// Close drains the scheduler and flushes spans.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if r.scheduler != nil {
		if err := r.scheduler.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close scheduler: %w", err))
		}
	}
	if err := tracing.Shutdown(ctx, r.tracer); err != nil {
		errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
	}
	return errors.Join(errs...)
}
