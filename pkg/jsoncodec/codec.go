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

// Package jsoncodec reads and writes JSON bodies and evaluates jq queries
// against them.
//
// Timestamps in bodies are lenient: see DateTime and TimeOfDay for the
// accepted layouts.
package jsoncodec

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/goccy/go-json"
	"github.com/itchyny/gojq"

	webconnerrors "github.com/tombee/webconn/pkg/errors"
)

// Codec converts between response text and Go values. A Codec is immutable
// and safe for concurrent use.
type Codec struct {
	disallowUnknownFields bool
	useNumber             bool
	indent                string
}

// Option configures a Codec.
type Option func(*Codec)

// WithDisallowUnknownFields makes decoding fail when the body has object
// keys the target struct does not declare.
func WithDisallowUnknownFields() Option {
	return func(c *Codec) {
		c.disallowUnknownFields = true
	}
}

// WithUseNumber decodes numbers into json.Number instead of float64 when the
// target is an interface value.
func WithUseNumber() Option {
	return func(c *Codec) {
		c.useNumber = true
	}
}

// WithIndent makes Encode produce indented output.
func WithIndent(indent string) Option {
	return func(c *Codec) {
		c.indent = indent
	}
}

// New creates a Codec. With no options it ignores unknown fields and writes
// compact output.
func New(opts ...Option) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCodec = New()

// Default returns the shared default Codec.
func Default() *Codec {
	return defaultCodec
}

// Decode parses text into a new T.
func Decode[T any](c *Codec, text string) (T, error) {
	var out T
	if err := c.DecodeInto(text, &out); err != nil {
		var zero T
		return zero, &webconnerrors.DecodeError{Target: reflect.TypeFor[T]().String(), Cause: unwrapDecode(err)}
	}
	return out, nil
}

// DecodeInto parses text into v, which must be a non-nil pointer.
func (c *Codec) DecodeInto(text string, v any) error {
	if c == nil {
		c = defaultCodec
	}

	dec := json.NewDecoder(strings.NewReader(text))
	if c.disallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if c.useNumber {
		dec.UseNumber()
	}

	if err := dec.Decode(v); err != nil {
		return &webconnerrors.DecodeError{Target: fmt.Sprintf("%T", v), Cause: err}
	}
	return nil
}

func unwrapDecode(err error) error {
	var decErr *webconnerrors.DecodeError
	if errors.As(err, &decErr) {
		return decErr.Cause
	}
	return err
}

// Encode serializes v.
func (c *Codec) Encode(v any) (string, error) {
	if c == nil {
		c = defaultCodec
	}

	var (
		data []byte
		err  error
	)
	if c.indent != "" {
		data, err = json.MarshalIndent(v, "", c.indent)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", &webconnerrors.EncodeError{Source: fmt.Sprintf("%T", v), Cause: err}
	}
	return string(data), nil
}

// Query evaluates the jq expression expr against the JSON in text and
// returns every value it emits.
func (c *Codec) Query(text, expr string) ([]any, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, &webconnerrors.ValidationError{
			Field:   "query",
			Message: err.Error(),
			Hint:    "check the jq expression syntax",
		}
	}

	var input any
	if err := json.Unmarshal([]byte(text), &input); err != nil {
		return nil, &webconnerrors.DecodeError{Target: "jq input", Cause: err}
	}

	var results []any
	iter := query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}
			return nil, fmt.Errorf("evaluate %q: %w", expr, err)
		}
		results = append(results, v)
	}
	return results, nil
}
