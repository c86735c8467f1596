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
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/webconn/internal/cli/format"
	pkgerrors "github.com/tombee/webconn/pkg/errors"
	"github.com/tombee/webconn/pkg/httpclient"
	"github.com/tombee/webconn/pkg/jsoncodec"
	"github.com/tombee/webconn/pkg/webconn"
)

// RequestFlags are the flags shared by get and send.
type RequestFlags struct {
	Headers   []string
	UserAgent string
	Bucket    int
	Query     string
	Expect    string
	Fail      bool
	Format    string
}

// AddRequestFlags registers the shared request flags on cmd.
func AddRequestFlags(cmd *cobra.Command, f *RequestFlags) {
	cmd.Flags().StringArrayVarP(&f.Headers, "header", "H", nil, "Request header as 'Name: value' (repeatable)")
	cmd.Flags().StringVar(&f.UserAgent, "user-agent", "", "User-Agent header")
	cmd.Flags().IntVar(&f.Bucket, "bucket", 0, "Rate bucket to submit the request to")
	cmd.Flags().StringVar(&f.Query, "query", "", "jq expression applied to a JSON response body")
	cmd.Flags().StringVar(&f.Expect, "expect", "", "Boolean expression the outcome must satisfy (exit 3 otherwise)")
	cmd.Flags().BoolVar(&f.Fail, "fail", false, "Exit 4 when the response status is 400 or higher")
	cmd.Flags().StringVar(&f.Format, "format", format.KindRaw, "Body rendering: "+strings.Join(format.Kinds(), ", "))
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(format.Kinds(), cobra.ShellCompDirectiveNoFileComp))
}

// ParseHeader splits "Name: value".
func ParseHeader(s string) (name, value string, err error) {
	name, value, ok := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", &pkgerrors.ValidationError{
			Field:   "header",
			Message: fmt.Sprintf("%q is not 'Name: value'", s),
			Hint:    "pass headers as -H 'Accept: application/json'",
		}
	}
	return name, strings.TrimSpace(value), nil
}

// ParseParam splits "key=value".
func ParseParam(s string) (key, value string, err error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return "", "", &pkgerrors.ValidationError{
			Field:   "param",
			Message: fmt.Sprintf("%q is not 'key=value'", s),
			Hint:    "pass query parameters as -p q=search+terms",
		}
	}
	return key, value, nil
}

// headerSetter is the configuration surface both connection types share.
type headerSetter interface {
	AddHeader(name, value string)
	SetUserAgent(agent string)
}

// ApplyHeaders configures conn from config headers, then -H flags, then
// --user-agent, so later sources win.
func ApplyHeaders(conn headerSetter, configured map[string]string, f *RequestFlags) error {
	for name, value := range configured {
		conn.AddHeader(name, value)
	}
	for _, h := range f.Headers {
		name, value, err := ParseHeader(h)
		if err != nil {
			return NewInvalidArgsError("invalid header", err)
		}
		conn.AddHeader(name, value)
	}
	if f.UserAgent != "" {
		conn.SetUserAgent(f.UserAgent)
	}
	return nil
}

// outcomeResponse is the --json envelope of a request command.
type outcomeResponse struct {
	JSONResponse
	Outcome     webconn.Outcome[string] `json:"outcome"`
	Results     []any                   `json:"results,omitempty"`
	Expectation *bool                   `json:"expectation,omitempty"`
	Errors      []JSONError             `json:"errors,omitempty"`
}

// Report renders the outcome of a request command and returns the error
// that decides its exit code. waitErr is the error returned by waiting on
// the request.
func Report(cmd *cobra.Command, command string, f *RequestFlags, o webconn.Outcome[string], waitErr error, codec *jsoncodec.Codec) error {
	var (
		results  []any
		expected *bool
		result   error
	)

	switch {
	case waitErr != nil:
		result = NewRequestError("request failed", waitErr)
	default:
		if f.Query != "" {
			r, err := webconn.QueryBody(o, codec, f.Query)
			if err != nil {
				result = NewInvalidArgsError("query failed", err)
				break
			}
			results = r
		}
		if f.Expect != "" {
			passed, err := Expect(f.Expect, o, codec)
			if err != nil {
				result = NewInvalidArgsError("invalid expectation", err)
				break
			}
			expected = &passed
			if !passed {
				result = NewExpectationError(fmt.Sprintf("expectation %q not met", f.Expect), nil)
				break
			}
		}
		if f.Fail && o.StatusCode() >= 400 {
			result = NewHTTPError(fmt.Sprintf("server responded %d", o.StatusCode()), nil)
		}
	}

	if GetJSON() {
		resp := outcomeResponse{
			JSONResponse: NewJSONResponse(command, result == nil),
			Outcome:      o,
			Results:      results,
			Expectation:  expected,
		}
		if result != nil {
			resp.Errors = []JSONError{{Code: ErrorCode(result), Message: result.Error(), Suggestion: suggestionFor(result)}}
		}
		if err := EmitJSON(cmd.OutOrStdout(), resp); err != nil {
			return fmt.Errorf("failed to write JSON output: %w", err)
		}
		if result != nil {
			return &reportedError{result}
		}
		return nil
	}

	if !GetQuiet() {
		writeStatusLine(cmd.ErrOrStderr(), o)
	}

	out := cmd.OutOrStdout()
	switch {
	case f.Query != "" && results != nil:
		for _, r := range results {
			text, err := codec.Encode(r)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, text)
		}
	case !o.Failed() && f.Query == "":
		body, err := format.Render(o.Body(), f.Format, IsColorTerminal(out))
		if err != nil {
			body = o.Body()
			if result == nil {
				result = NewInvalidArgsError("cannot format body", err)
			}
		}
		fmt.Fprint(out, body)
		if body != "" && !strings.HasSuffix(body, "\n") {
			fmt.Fprintln(out)
		}
	}

	return result
}

func writeStatusLine(w io.Writer, o webconn.Outcome[string]) {
	status := strconv.Itoa(o.StatusCode())
	duration := fmt.Sprintf("(%dms)", o.Duration())
	if o.Failed() {
		status = "FAILED"
		duration = ""
	}

	if IsColorTerminal(w) {
		status = RenderStatusCode(o.StatusCode())
		duration = Muted.Render(duration)
	}

	fmt.Fprintf(w, "%s %s %s %s\n", status, o.Method(), httpclient.SanitizeURL(o.URL()), duration)
}
