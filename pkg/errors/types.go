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

package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// ValidationError represents an invalid argument passed by the caller.
// Use this for malformed URLs, unsupported methods, or a method that does not
// fit the requested connection type.
type ValidationError struct {
	// Field identifies which argument failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Hint provides actionable guidance for fixing the error
	Hint string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid argument: %s", e.Message)
}

// IsUserVisible implements UserVisibleError.
func (e *ValidationError) IsUserVisible() bool { return true }

// UserMessage implements UserVisibleError.
func (e *ValidationError) UserMessage() string { return e.Error() }

// Suggestion implements UserVisibleError.
func (e *ValidationError) Suggestion() string { return e.Hint }

// ErrorType implements ErrorClassifier.
func (e *ValidationError) ErrorType() string { return "validation" }

// IsRetryable implements ErrorClassifier. Invalid arguments never succeed on retry.
func (e *ValidationError) IsRetryable() bool { return false }

// TransportError represents a request that never produced a response:
// connection refused, DNS failure, timeout, cancellation or a broken body read.
type TransportError struct {
	// Method is the HTTP method of the failed request
	Method string

	// URL is the sanitized target URL
	URL string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport failure: %v", e.Method, e.URL, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ErrorType implements ErrorClassifier.
func (e *TransportError) ErrorType() string { return "transport" }

// IsRetryable reports whether the cause looks transient. Nothing in this
// module retries; the classification is for callers that do.
func (e *TransportError) IsRetryable() bool {
	if e.Cause == nil {
		return false
	}
	if errors.Is(e.Cause, context.Canceled) {
		return false
	}
	if errors.Is(e.Cause, context.DeadlineExceeded) {
		return true
	}
	var opErr *net.OpError
	if errors.As(e.Cause, &opErr) {
		return true
	}
	var netErr net.Error
	if errors.As(e.Cause, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// DecodeError represents a response body that could not be decoded into the
// requested type.
type DecodeError struct {
	// Target is the Go type the body was decoded into
	Target string

	// Cause is the underlying parser error
	Cause error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode into %s: body is not JSON or does not fit the target: %v", e.Target, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// EncodeError represents a value that could not be serialized for sending.
type EncodeError struct {
	// Source is the Go type of the value being encoded
	Source string

	// Cause is the underlying encoder error
	Cause error
}

// Error implements the error interface.
func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Source, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *EncodeError) Unwrap() error {
	return e.Cause
}

// ConfigError represents configuration problems.
// Use this for configuration file errors, missing settings, or invalid config values.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "http.timeout")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// TimeoutError represents a wait that gave up before the work completed.
type TimeoutError struct {
	// Operation describes what timed out (e.g., "wait for GET https://example.com")
	Operation string

	// Duration is how long the caller waited
	Duration time.Duration

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %v", e.Operation, e.Duration)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}
