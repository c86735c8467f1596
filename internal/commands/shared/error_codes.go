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

	pkgerrors "github.com/tombee/webconn/pkg/errors"
)

// Error codes for structured JSON output
const (
	// Argument errors (E001-E099)
	ErrorCodeInvalidArgument = "E001" // Invalid URL, method or flag
	ErrorCodeInvalidExpr     = "E002" // --query or --expect does not compile

	// Request errors (E100-E199)
	ErrorCodeTransport   = "E101" // Connection, DNS or TLS failure
	ErrorCodeTimeout     = "E102" // Wait timed out
	ErrorCodeDecode      = "E103" // Body is not the expected JSON
	ErrorCodeEncode      = "E104" // Body could not be encoded
	ErrorCodeExpectation = "E105" // --expect evaluated to false
	ErrorCodeHTTPStatus  = "E106" // Status >= 400 under --fail

	// Configuration errors (E200-E299)
	ErrorCodeInvalidConfig = "E201" // Config file or environment is invalid

	// Everything else
	ErrorCodeInternal = "E402"
)

// ErrorCode maps err to a JSON error code by its most specific type.
func ErrorCode(err error) string {
	var (
		valErr     *pkgerrors.ValidationError
		cfgErr     *pkgerrors.ConfigError
		transErr   *pkgerrors.TransportError
		timeoutErr *pkgerrors.TimeoutError
		decErr     *pkgerrors.DecodeError
		encErr     *pkgerrors.EncodeError
		exitErr    *ExitError
	)

	switch {
	case errors.As(err, &valErr):
		if valErr.Field == "query" || valErr.Field == "expect" {
			return ErrorCodeInvalidExpr
		}
		return ErrorCodeInvalidArgument
	case errors.As(err, &cfgErr):
		return ErrorCodeInvalidConfig
	case errors.As(err, &timeoutErr):
		return ErrorCodeTimeout
	case errors.As(err, &transErr):
		return ErrorCodeTransport
	case errors.As(err, &decErr):
		return ErrorCodeDecode
	case errors.As(err, &encErr):
		return ErrorCodeEncode
	case errors.As(err, &exitErr):
		switch exitErr.Code {
		case ExitExpectationFailed:
			return ErrorCodeExpectation
		case ExitHTTPError:
			return ErrorCodeHTTPStatus
		case ExitInvalidArgs:
			return ErrorCodeInvalidArgument
		}
	}
	return ErrorCodeInternal
}

// suggestionFor returns the suggestion of the first UserVisibleError in the
// chain of err.
func suggestionFor(err error) string {
	var userErr pkgerrors.UserVisibleError
	if errors.As(err, &userErr) && userErr.IsUserVisible() {
		return userErr.Suggestion()
	}
	return ""
}
