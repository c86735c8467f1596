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

package get

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/webconn/internal/commands/shared"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Cleanup(shared.ResetFlagsForTest)

	cmd := NewCommand()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, "not found")
		case "/user":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"name":"ada","id":7}`)
		default:
			fmt.Fprintf(w, "%s %s %s", r.Method, r.URL.RawQuery, r.Header.Get("X-Test"))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGet_EncodesParams(t *testing.T) {
	srv := echoServer(t)

	stdout, stderr, err := execute(t, srv.URL+"/search", "-p", "q=a b", "-p", "lang=en", "-H", "X-Test: yes")

	require.NoError(t, err)
	assert.Equal(t, "GET lang=en&q=a+b yes\n", stdout)
	assert.Contains(t, stderr, "200 GET")
}

func TestGet_InvalidParam(t *testing.T) {
	srv := echoServer(t)

	_, _, err := execute(t, srv.URL, "-p", "novalue")

	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidArgs, shared.ExitCode(err))
}

func TestGet_InvalidURL(t *testing.T) {
	_, _, err := execute(t, "ftp://example.com/file")

	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidArgs, shared.ExitCode(err))
}

func TestGet_Fail(t *testing.T) {
	srv := echoServer(t)

	stdout, _, err := execute(t, srv.URL+"/missing")
	require.NoError(t, err, "without --fail a 404 still exits 0")
	assert.Equal(t, "not found\n", stdout)

	_, _, err = execute(t, srv.URL+"/missing", "--fail")
	require.Error(t, err)
	assert.Equal(t, shared.ExitHTTPError, shared.ExitCode(err))
}

func TestGet_Expect(t *testing.T) {
	srv := echoServer(t)

	_, _, err := execute(t, srv.URL+"/user", "--expect", `ok && json.name == "ada"`)
	require.NoError(t, err)

	_, _, err = execute(t, srv.URL+"/user", "--expect", "status == 500")
	require.Error(t, err)
	assert.Equal(t, shared.ExitExpectationFailed, shared.ExitCode(err))
}

func TestGet_Query(t *testing.T) {
	srv := echoServer(t)

	stdout, _, err := execute(t, srv.URL+"/user", "--query", ".name")

	require.NoError(t, err)
	assert.Equal(t, "\"ada\"\n", stdout)
}

func TestGet_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL
	srv.Close()

	_, stderr, err := execute(t, target)

	require.Error(t, err)
	assert.Equal(t, shared.ExitRequestFailed, shared.ExitCode(err))
	assert.Contains(t, stderr, "FAILED GET")
}

func TestGet_JSONOutput(t *testing.T) {
	srv := echoServer(t)
	_, _, jsonPtr, _ := shared.RegisterFlagPointers()
	*jsonPtr = true

	stdout, _, err := execute(t, srv.URL+"/user", "--query", ".id")
	require.NoError(t, err)

	var resp struct {
		Command string `json:"command"`
		Success bool   `json:"success"`
		Outcome struct {
			StatusCode int    `json:"status_code"`
			Method     string `json:"method"`
			Body       string `json:"body"`
		} `json:"outcome"`
		Results []any `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), "output: %s", stdout)
	assert.Equal(t, "get", resp.Command)
	assert.True(t, resp.Success)
	assert.Equal(t, 200, resp.Outcome.StatusCode)
	assert.Equal(t, "GET", resp.Outcome.Method)
	require.Len(t, resp.Results, 1)
	assert.InDelta(t, 7, resp.Results[0], 0)
}

func TestGet_FormatJSON(t *testing.T) {
	srv := echoServer(t)

	stdout, _, err := execute(t, srv.URL+"/user", "--format", "json")

	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"ada\",\n  \"id\": 7\n}\n", stdout)
}

func TestGet_JSONInvalidURL(t *testing.T) {
	_, _, jsonPtr, _ := shared.RegisterFlagPointers()
	*jsonPtr = true

	stdout, _, err := execute(t, "ftp://example.com/file")

	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidArgs, shared.ExitCode(err))

	var resp struct {
		Command string             `json:"command"`
		Success bool               `json:"success"`
		Errors  []shared.JSONError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), "output: %s", stdout)
	assert.Equal(t, "get", resp.Command)
	assert.False(t, resp.Success)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, shared.ErrorCodeInvalidArgument, resp.Errors[0].Code)
	assert.Contains(t, resp.Errors[0].Message, "invalid URL")
}
