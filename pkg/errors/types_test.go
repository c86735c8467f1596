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

package errors_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	webconnerrors "github.com/tombee/webconn/pkg/errors"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *webconnerrors.ValidationError
		wantMsg string
	}{
		{
			name: "with field",
			err: &webconnerrors.ValidationError{
				Field:   "method",
				Message: "GET is not allowed for body connections",
				Hint:    "use ForURL instead",
			},
			wantMsg: "invalid method: GET is not allowed for body connections",
		},
		{
			name: "without field",
			err: &webconnerrors.ValidationError{
				Message: "empty input",
			},
			wantMsg: "invalid argument: empty input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestValidationError_UserVisible(t *testing.T) {
	var err error = &webconnerrors.ValidationError{Field: "url", Message: "missing host", Hint: "include a host"}

	var visible webconnerrors.UserVisibleError
	if !errors.As(err, &visible) {
		t.Fatal("ValidationError should implement UserVisibleError")
	}
	if visible.Suggestion() != "include a host" {
		t.Errorf("Suggestion() = %q", visible.Suggestion())
	}
	if webconnerrors.Classify(err) != "validation" {
		t.Errorf("Classify() = %q, want validation", webconnerrors.Classify(err))
	}
}

func TestTransportError(t *testing.T) {
	cause := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	err := &webconnerrors.TransportError{Method: "GET", URL: "http://127.0.0.1:1", Cause: cause}

	msg := err.Error()
	if !strings.Contains(msg, "GET http://127.0.0.1:1") {
		t.Errorf("message should contain method and URL, got %q", msg)
	}

	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		t.Error("TransportError should unwrap to *net.OpError")
	}

	if !err.IsRetryable() {
		t.Error("dial failure should be classified retryable")
	}
}

func TestTransportError_IsRetryable(t *testing.T) {
	tests := []struct {
		name  string
		cause error
		want  bool
	}{
		{name: "nil cause", cause: nil, want: false},
		{name: "canceled", cause: context.Canceled, want: false},
		{name: "deadline", cause: fmt.Errorf("wrapped: %w", context.DeadlineExceeded), want: true},
		{name: "plain error", cause: errors.New("malformed response"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &webconnerrors.TransportError{Method: "POST", URL: "http://x", Cause: tt.cause}
			if got := err.IsRetryable(); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeAndEncodeError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")

	decodeErr := &webconnerrors.DecodeError{Target: "main.Created", Cause: cause}
	if !strings.Contains(decodeErr.Error(), "main.Created") {
		t.Errorf("decode message should name the target, got %q", decodeErr.Error())
	}
	if !errors.Is(decodeErr, cause) {
		t.Error("DecodeError should unwrap to its cause")
	}

	encodeErr := &webconnerrors.EncodeError{Source: "chan int", Cause: cause}
	if !strings.HasPrefix(encodeErr.Error(), "encode chan int") {
		t.Errorf("unexpected encode message %q", encodeErr.Error())
	}
	if !errors.Is(encodeErr, cause) {
		t.Error("EncodeError should unwrap to its cause")
	}
}

func TestConfigError_Error(t *testing.T) {
	cause := errors.New("yaml: line 3")
	err := &webconnerrors.ConfigError{Key: "http.timeout", Reason: "not a duration", Cause: cause}

	if got := err.Error(); got != "config error at http.timeout: not a duration" {
		t.Errorf("ConfigError.Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("ConfigError should unwrap to its cause")
	}

	noKey := &webconnerrors.ConfigError{Reason: "empty file"}
	if got := noKey.Error(); got != "config error: empty file" {
		t.Errorf("ConfigError.Error() = %q", got)
	}
}

func TestTimeoutError_Error(t *testing.T) {
	err := &webconnerrors.TimeoutError{
		Operation: "wait for GET http://example.com",
		Duration:  250 * time.Millisecond,
		Cause:     context.DeadlineExceeded,
	}

	if got := err.Error(); got != "wait for GET http://example.com timed out after 250ms" {
		t.Errorf("TimeoutError.Error() = %q", got)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("TimeoutError should unwrap to context.DeadlineExceeded")
	}
}
