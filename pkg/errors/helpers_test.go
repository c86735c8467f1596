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
	"errors"
	"strings"
	"testing"

	webconnerrors "github.com/tombee/webconn/pkg/errors"
)

func TestWrap(t *testing.T) {
	t.Run("wraps error with context", func(t *testing.T) {
		original := errors.New("original error")
		wrapped := webconnerrors.Wrap(original, "additional context")

		if wrapped == nil {
			t.Fatal("Wrap should not return nil for non-nil error")
		}
		if wrapped.Error() != "additional context: original error" {
			t.Errorf("unexpected message: %s", wrapped.Error())
		}
		if !errors.Is(wrapped, original) {
			t.Error("wrapped error should match original with errors.Is")
		}
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		if wrapped := webconnerrors.Wrap(nil, "context"); wrapped != nil {
			t.Errorf("Wrap(nil, _) should return nil, got: %v", wrapped)
		}
	})
}

func TestWrapf(t *testing.T) {
	original := errors.New("no such file")
	wrapped := webconnerrors.Wrapf(original, "reading %s", "config.yaml")

	if !strings.HasPrefix(wrapped.Error(), "reading config.yaml: ") {
		t.Errorf("unexpected message: %s", wrapped.Error())
	}
	if webconnerrors.Wrapf(nil, "reading %s", "x") != nil {
		t.Error("Wrapf(nil, ...) should return nil")
	}
}

func TestAsAndClassify(t *testing.T) {
	err := webconnerrors.Wrap(&webconnerrors.TransportError{Method: "GET", URL: "http://x", Cause: errors.New("boom")}, "request")

	var transportErr *webconnerrors.TransportError
	if !webconnerrors.As(err, &transportErr) {
		t.Fatal("As should find TransportError through the wrap")
	}
	if transportErr.Method != "GET" {
		t.Errorf("Method = %q", transportErr.Method)
	}

	if got := webconnerrors.Classify(err); got != "transport" {
		t.Errorf("Classify() = %q, want transport", got)
	}
	if got := webconnerrors.Classify(webconnerrors.New("plain")); got != "unknown" {
		t.Errorf("Classify() = %q, want unknown", got)
	}
	if !webconnerrors.Is(err, transportErr) {
		t.Error("Is should match the same pointer")
	}
}
