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

// Package config loads CLI configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/tombee/webconn/internal/log"
	"github.com/tombee/webconn/internal/tracing"
	webconnerrors "github.com/tombee/webconn/pkg/errors"
	"github.com/tombee/webconn/pkg/httpclient"
	"github.com/tombee/webconn/pkg/scheduler"
)

var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config represents the complete webconn CLI configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Tracing   TracingConfig   `yaml:"tracing"`

	// Headers are added to every connection the CLI creates, before any
	// header given on the command line.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// HTTPConfig configures the HTTP client.
type HTTPConfig struct {
	// Timeout bounds a whole request including reading the body.
	// Environment: WEBCONN_HTTP_TIMEOUT
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// UserAgent is sent when a connection sets none.
	// Environment: WEBCONN_USER_AGENT
	// Default: webconn/1.0
	UserAgent string `yaml:"user_agent"`

	// MaxIdleConnsPerHost limits pooled idle connections per host.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`
}

// SchedulerConfig configures the rate-limited scheduler.
type SchedulerConfig struct {
	// CapacityFraction is the share of CPUs used as worker slots.
	// Default: 0.4
	CapacityFraction float64 `yaml:"capacity_fraction"`

	// Workers fixes the worker slot count; 0 derives it from CapacityFraction.
	// Environment: WEBCONN_SCHEDULER_WORKERS
	Workers int `yaml:"workers,omitempty"`

	// DefaultInterval applies to buckets not listed in Buckets.
	DefaultInterval time.Duration `yaml:"default_interval,omitempty"`

	// Buckets pre-registers rate buckets.
	Buckets []BucketConfig `yaml:"buckets,omitempty"`
}

// BucketConfig registers one rate bucket.
type BucketConfig struct {
	ID       int           `yaml:"id"`
	Interval time.Duration `yaml:"interval"`

	// Match lists host/path glob patterns ("api.example.com/**",
	// "*.example.org/*"). Requests whose URL matches are sent in this bucket
	// unless --bucket is given.
	Match []string `yaml:"match,omitempty"`
}

// AuthConfig configures request authentication. Token and ClientSecret
// support ${VAR} references, expanded from the environment at load time.
type AuthConfig struct {
	// Type: bearer, oauth2 or aws_sigv4. Empty disables authentication.
	// Environment: WEBCONN_AUTH_TOKEN sets bearer auth when Type is empty.
	Type string `yaml:"type,omitempty"`

	Token string `yaml:"token,omitempty"`

	ClientID     string   `yaml:"client_id,omitempty"`
	ClientSecret string   `yaml:"client_secret,omitempty"`
	TokenURL     string   `yaml:"token_url,omitempty"`
	Scopes       []string `yaml:"scopes,omitempty"`

	Service string `yaml:"service,omitempty"`
	Region  string `yaml:"region,omitempty"`
}

// TracingConfig configures where --trace sends spans.
type TracingConfig struct {
	// Exporter: console, otlp (gRPC) or otlp_http. Default: console.
	// Environment: WEBCONN_TRACE_EXPORTER
	Exporter string `yaml:"exporter,omitempty"`

	// Endpoint is the collector host:port for the OTLP exporters.
	// Environment: OTEL_EXPORTER_OTLP_ENDPOINT
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure disables TLS to the collector.
	Insecure bool `yaml:"insecure,omitempty"`

	// Headers are sent with every export request, e.g. an API key.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level: trace, debug, info, warn, error.
	// Environment: LOG_LEVEL
	Level string `yaml:"level"`

	// Format: json or text.
	// Environment: LOG_FORMAT
	Format string `yaml:"format"`

	// AddSource adds file and line to log records.
	// Environment: LOG_SOURCE=1
	AddSource bool `yaml:"add_source"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	http := httpclient.DefaultConfig()
	return &Config{
		HTTP: HTTPConfig{
			Timeout:             http.Timeout,
			UserAgent:           http.UserAgent,
			MaxIdleConnsPerHost: http.MaxIdleConnsPerHost,
		},
		Scheduler: SchedulerConfig{
			CapacityFraction: scheduler.DefaultConfig().CapacityFraction,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: string(log.FormatText),
		},
		Tracing: TracingConfig{
			Exporter: tracing.ExporterConsole,
		},
	}
}

// Load loads configuration from configPath (if non-empty), fills defaults,
// applies environment overrides and validates the result.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &webconnerrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, &webconnerrors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

// applyDefaults fills in zero values left by a partial config file.
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = defaults.HTTP.Timeout
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = defaults.HTTP.UserAgent
	}
	if c.HTTP.MaxIdleConnsPerHost == 0 {
		c.HTTP.MaxIdleConnsPerHost = defaults.HTTP.MaxIdleConnsPerHost
	}
	if c.Scheduler.CapacityFraction == 0 {
		c.Scheduler.CapacityFraction = defaults.Scheduler.CapacityFraction
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = defaults.Tracing.Exporter
	}
}

// loadFromFile loads configuration from a YAML file.
func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	c.Auth.Token = os.ExpandEnv(c.Auth.Token)
	c.Auth.ClientSecret = os.ExpandEnv(c.Auth.ClientSecret)

	return nil
}

// loadFromEnv applies environment overrides. Malformed numeric values are
// reported rather than ignored.
func (c *Config) loadFromEnv() error {
	if val := os.Getenv("WEBCONN_HTTP_TIMEOUT"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return &webconnerrors.ConfigError{Key: "WEBCONN_HTTP_TIMEOUT", Reason: "not a duration", Cause: err}
		}
		c.HTTP.Timeout = d
	}
	if val := os.Getenv("WEBCONN_USER_AGENT"); val != "" {
		c.HTTP.UserAgent = val
	}
	if val := os.Getenv("WEBCONN_SCHEDULER_WORKERS"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return &webconnerrors.ConfigError{Key: "WEBCONN_SCHEDULER_WORKERS", Reason: "not an integer", Cause: err}
		}
		c.Scheduler.Workers = n
	}

	if val := os.Getenv("WEBCONN_AUTH_TOKEN"); val != "" && c.Auth.Type == "" {
		c.Auth.Type = httpclient.AuthBearer
		c.Auth.Token = val
	}
	if val := os.Getenv("WEBCONN_TRACE_EXPORTER"); val != "" {
		c.Tracing.Exporter = strings.ToLower(val)
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" {
		c.Tracing.Endpoint = val
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
	if os.Getenv("LOG_SOURCE") == "1" {
		c.Log.AddSource = true
	}
	return nil
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	httpCfg := c.HTTPClientConfig(nil)
	if err := httpCfg.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("http: %w", err))
	}

	schedCfg := c.SchedulerClientConfig(nil)
	if err := schedCfg.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scheduler: %w", err))
	}

	seen := make(map[int]bool)
	for i, b := range c.Scheduler.Buckets {
		if b.Interval < 0 {
			errs = append(errs, fmt.Errorf("scheduler.buckets[%d]: interval must be >= 0", i))
		}
		if seen[b.ID] {
			errs = append(errs, fmt.Errorf("scheduler.buckets[%d]: duplicate bucket id %d", i, b.ID))
		}
		seen[b.ID] = true
		for _, pattern := range b.Match {
			if !doublestar.ValidatePattern(pattern) {
				errs = append(errs, fmt.Errorf("scheduler.buckets[%d]: invalid match pattern %q", i, pattern))
			}
		}
	}

	switch c.Tracing.Exporter {
	case tracing.ExporterConsole:
	case tracing.ExporterOTLP, tracing.ExporterOTLPHTTP:
		if c.Tracing.Endpoint == "" {
			errs = append(errs, fmt.Errorf("tracing.endpoint: required for the %s exporter", c.Tracing.Exporter))
		}
	default:
		errs = append(errs, fmt.Errorf("tracing.exporter: unknown exporter %q", c.Tracing.Exporter))
	}

	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch log.Format(strings.ToLower(c.Log.Format)) {
	case log.FormatJSON, log.FormatText:
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// HTTPClientConfig converts the http section for httpclient.New.
func (c *Config) HTTPClientConfig(logger *slog.Logger) httpclient.Config {
	return httpclient.Config{
		Timeout:             c.HTTP.Timeout,
		UserAgent:           c.HTTP.UserAgent,
		MaxIdleConnsPerHost: c.HTTP.MaxIdleConnsPerHost,
		Logger:              logger,
		Auth: httpclient.AuthConfig{
			Type:         c.Auth.Type,
			Token:        c.Auth.Token,
			ClientID:     c.Auth.ClientID,
			ClientSecret: c.Auth.ClientSecret,
			TokenURL:     c.Auth.TokenURL,
			Scopes:       c.Auth.Scopes,
			Service:      c.Auth.Service,
			Region:       c.Auth.Region,
		},
	}
}

// BucketFor returns the id of the first bucket with a Match pattern that
// rawURL's host and path satisfy. Patterns are matched against
// "host/path" with the leading slash of the path dropped, so
// "api.example.com/v1/**" matches https://api.example.com/v1/users/7.
func (c *Config) BucketFor(rawURL string) (int, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return 0, false
	}
	subject := u.Host + "/" + strings.TrimPrefix(u.EscapedPath(), "/")
	subject = strings.TrimSuffix(subject, "/")

	for _, b := range c.Scheduler.Buckets {
		for _, pattern := range b.Match {
			if ok, err := doublestar.Match(pattern, subject); err == nil && ok {
				return b.ID, true
			}
		}
	}
	return 0, false
}

// TracingExporterConfig converts the tracing section for
// tracing.NewProvider.
func (c *Config) TracingExporterConfig() tracing.ExporterConfig {
	return tracing.ExporterConfig{
		Type:     c.Tracing.Exporter,
		Endpoint: c.Tracing.Endpoint,
		Insecure: c.Tracing.Insecure,
		Headers:  c.Tracing.Headers,
	}
}

// SchedulerClientConfig converts the scheduler section for
// scheduler.NewRateLimited.
func (c *Config) SchedulerClientConfig(logger *slog.Logger) scheduler.Config {
	return scheduler.Config{
		CapacityFraction: c.Scheduler.CapacityFraction,
		Workers:          c.Scheduler.Workers,
		DefaultInterval:  c.Scheduler.DefaultInterval,
		Logger:           logger,
	}
}

// LogConfig converts the log section for log.New.
func (c *Config) LogConfig() *log.Config {
	return &log.Config{
		Level:     c.Log.Level,
		Format:    log.Format(strings.ToLower(c.Log.Format)),
		Output:    os.Stderr,
		AddSource: c.Log.AddSource,
	}
}
