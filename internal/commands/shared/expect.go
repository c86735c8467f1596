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
	"github.com/expr-lang/expr"

	pkgerrors "github.com/tombee/webconn/pkg/errors"
	"github.com/tombee/webconn/pkg/jsoncodec"
	"github.com/tombee/webconn/pkg/webconn"
)

// ExpectEnv builds the variables an --expect expression can use:
//
//	status       HTTP status code, -1 if the request failed
//	ok           status is 2xx
//	failed       the request never completed
//	duration_ms  send-to-receive time, -1 if failed
//	body         raw body text
//	json         body parsed as JSON, nil if it is not JSON
//	url, method  final request URL and method
func ExpectEnv(o webconn.Outcome[string], codec *jsoncodec.Codec) map[string]any {
	var parsed any
	if !o.Failed() {
		if err := codec.DecodeInto(o.Body(), &parsed); err != nil {
			parsed = nil
		}
	}

	return map[string]any{
		"status":      o.StatusCode(),
		"ok":          o.OK(),
		"failed":      o.Failed(),
		"duration_ms": o.Duration(),
		"body":        o.Body(),
		"json":        parsed,
		"url":         o.URL(),
		"method":      o.Method().String(),
	}
}

// Expect evaluates the boolean expression against o.
//
// Example expressions:
//   - status == 200
//   - ok && json.id > 0
//   - body contains "welcome"
//   - duration_ms < 500
func Expect(expression string, o webconn.Outcome[string], codec *jsoncodec.Codec) (bool, error) {
	env := ExpectEnv(o, codec)

	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return false, &pkgerrors.ValidationError{
			Field:   "expect",
			Message: err.Error(),
			Hint:    "expressions use expr-lang syntax, e.g. 'status == 200 && json.id > 0'",
		}
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return false, &pkgerrors.ValidationError{
			Field:   "expect",
			Message: "evaluation failed: " + err.Error(),
		}
	}

	passed, ok := result.(bool)
	if !ok {
		return false, &pkgerrors.ValidationError{
			Field:   "expect",
			Message: "expression must return a boolean",
		}
	}
	return passed, nil
}
