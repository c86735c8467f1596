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

package send

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/webconn/internal/commands/shared"
)

func execute(t *testing.T, stdin string, args ...string) (stdout string, err error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Cleanup(shared.ResetFlagsForTest)

	cmd := NewCommand()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), err
}

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fmt.Fprintf(w, "%s|%s|%s", r.Method, r.Header.Get("Content-Type"), body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSend_DefaultsToPost(t *testing.T) {
	srv := echoServer(t)

	stdout, err := execute(t, "", srv.URL, "-d", "hello")

	require.NoError(t, err)
	assert.Equal(t, "POST||hello\n", stdout)
}

func TestSend_Methods(t *testing.T) {
	srv := echoServer(t)

	for _, method := range []string{"PUT", "delete", "PATCH"} {
		t.Run(method, func(t *testing.T) {
			stdout, err := execute(t, "", srv.URL, "-X", method, "-d", "x")
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(stdout, strings.ToUpper(method)+"|"), stdout)
		})
	}
}

func TestSend_RejectsGet(t *testing.T) {
	srv := echoServer(t)

	_, err := execute(t, "", srv.URL, "-X", "get")

	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidArgs, shared.ExitCode(err))
	assert.Contains(t, err.Error(), "GET requests carry no body")
}

func TestSend_UnknownMethod(t *testing.T) {
	_, err := execute(t, "", "http://example.com", "-X", "FETCH")

	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidArgs, shared.ExitCode(err))
}

func TestSend_JSONBody(t *testing.T) {
	srv := echoServer(t)

	stdout, err := execute(t, "", srv.URL, "-d", `{"input": "LOL"}`, "--json-body")

	require.NoError(t, err)
	assert.Equal(t, "POST|application/json|{\"input\": \"LOL\"}\n", stdout)
}

func TestSend_JSONBodySentVerbatim(t *testing.T) {
	srv := echoServer(t)
	body := `{"z": 1, "id": 9007199254740993, "a": [1.50, true]}`

	stdout, err := execute(t, "", srv.URL, "-d", body, "--json-body")

	require.NoError(t, err)
	assert.Equal(t, "POST|application/json|"+body+"\n", stdout)
}

func TestSend_JSONBodyKeepsExplicitContentType(t *testing.T) {
	srv := echoServer(t)

	stdout, err := execute(t, "", srv.URL, "-d", `[1]`, "--json-body", "-H", "Content-Type: application/vnd.api+json")

	require.NoError(t, err)
	assert.Equal(t, "POST|application/vnd.api+json|[1]\n", stdout)
}

func TestSend_InvalidJSONBody(t *testing.T) {
	srv := echoServer(t)

	_, err := execute(t, "", srv.URL, "-d", "{not json", "--json-body")

	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidArgs, shared.ExitCode(err))
}

func TestSend_DataFromStdin(t *testing.T) {
	srv := echoServer(t)

	stdout, err := execute(t, "from stdin", srv.URL, "-X", "PUT", "--data-file", "-")

	require.NoError(t, err)
	assert.Equal(t, "PUT||from stdin\n", stdout)
}

func TestSend_MissingDataFile(t *testing.T) {
	_, err := execute(t, "", "http://example.com", "--data-file", "/nonexistent/body.json")

	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidArgs, shared.ExitCode(err))
}
