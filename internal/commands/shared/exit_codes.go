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
	"errors"
	"fmt"
	"io"
	"os"

	pkgerrors "github.com/tombee/webconn/pkg/errors"
)

// Exit codes for request commands
const (
	ExitSuccess           = 0
	ExitRequestFailed     = 1 // The request never completed
	ExitInvalidArgs       = 2 // Bad URL, method, flag or config
	ExitExpectationFailed = 3 // --expect evaluated to false
	ExitHTTPError         = 4 // --fail and a status >= 400
)

// ExitError is an error that carries an exit code
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewRequestError creates an error for requests that never completed
func NewRequestError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitRequestFailed,
		Message: msg,
		Cause:   cause,
	}
}

// NewInvalidArgsError creates an error for invalid arguments or config
func NewInvalidArgsError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitInvalidArgs,
		Message: msg,
		Cause:   cause,
	}
}

// NewExpectationError creates an error for a failed --expect expression
func NewExpectationError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitExpectationFailed,
		Message: msg,
		Cause:   cause,
	}
}

// NewHTTPError creates an error for a response status >= 400 under --fail
func NewHTTPError(msg string, cause error) *ExitError {
	return &ExitError{
		Code:    ExitHTTPError,
		Message: msg,
		Cause:   cause,
	}
}

// ExitCode returns the exit code HandleExitError would use for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitRequestFailed
}

// HandleExitError prints err and exits with the matching code
func HandleExitError(err error) {
	if err == nil {
		return
	}

	writeError(os.Stderr, err)
	os.Exit(ExitCode(err))
}

func writeError(w io.Writer, err error) {
	if isReported(err) {
		return
	}
	if IsColorTerminal(w) {
		fmt.Fprintln(w, RenderError(err.Error()))
	} else {
		fmt.Fprintln(w, "Error:", err.Error())
	}
	printUserVisibleSuggestion(w, err)
}

// reportedError marks an error that was already written to stdout as a
// JSON envelope.
type reportedError struct {
	error
}

func (e *reportedError) Unwrap() error {
	return e.error
}

func isReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// printUserVisibleSuggestion checks if an error implements UserVisibleError
// and prints the suggestion if available.
func printUserVisibleSuggestion(w io.Writer, err error) {
	// Walk the error chain to find a UserVisibleError
	for err != nil {
		if userErr, ok := err.(pkgerrors.UserVisibleError); ok {
			if userErr.IsUserVisible() {
				suggestion := userErr.Suggestion()
				if suggestion != "" {
					fmt.Fprintf(w, "\nSuggestion: %s\n", suggestion)
				}
			}
			return
		}

		err = errors.Unwrap(err)
	}
}
