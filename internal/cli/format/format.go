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

// Package format renders response bodies for terminal output.
package format

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/goccy/go-json"

	webconnerrors "github.com/tombee/webconn/pkg/errors"
)

// Body kinds accepted by Render.
const (
	KindRaw      = "raw"
	KindAuto     = "auto"
	KindJSON     = "json"
	KindMarkdown = "markdown"
	KindCode     = "code"
)

// Bodies larger than this are written unformatted.
const maxFormatSize = 10 * 1024 * 1024

// ansiEscapeRegex matches ANSI escape sequences for sanitization.
var ansiEscapeRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// sanitizeANSI removes ANSI escape sequences from a string.
func sanitizeANSI(s string) string {
	return ansiEscapeRegex.ReplaceAllString(s, "")
}

// Kinds lists the values Render accepts, for flag help and completion.
func Kinds() []string {
	return []string{KindRaw, KindAuto, KindJSON, KindMarkdown, KindCode + ":<lang>"}
}

// Render formats body according to kind. color reports whether the
// destination is a color terminal; escape sequences sent by the server are
// stripped before anything is written to one.
//
// Kinds:
//
//	raw          body unchanged
//	auto         json when the body parses as JSON, raw otherwise
//	json         indented JSON, highlighted on a color terminal
//	markdown     rendered with glamour on a color terminal
//	code:<lang>  highlighted with chroma on a color terminal
func Render(body, kind string, color bool) (string, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" {
		kind = KindRaw
	}

	lang, isCode := strings.CutPrefix(kind, KindCode+":")
	if !isCode && kind != KindRaw && kind != KindAuto && kind != KindJSON && kind != KindMarkdown {
		return "", &webconnerrors.ValidationError{
			Field:   "format",
			Message: fmt.Sprintf("unknown format %q", kind),
			Hint:    "use one of: " + strings.Join(Kinds(), ", "),
		}
	}

	if color {
		body = sanitizeANSI(body)
	}
	if len(body) > maxFormatSize {
		return body, nil
	}

	switch {
	case isCode:
		return highlight(body, lang, color), nil
	case kind == KindMarkdown:
		return renderMarkdown(body, color), nil
	case kind == KindJSON:
		return formatJSON(body, color)
	case kind == KindAuto:
		if json.Valid([]byte(body)) {
			return formatJSON(body, color)
		}
	}
	return body, nil
}

func formatJSON(body string, color bool) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(body), "", "  "); err != nil {
		return "", &webconnerrors.DecodeError{Target: "json", Cause: err}
	}
	return highlight(buf.String(), "json", color), nil
}

// highlight falls back to plain text for unknown languages.
func highlight(content, lang string, color bool) string {
	if !color || lang == "" || lexers.Get(lang) == nil {
		return content
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, content, lang, "terminal256", "monokai"); err != nil {
		return content
	}
	return buf.String()
}

// renderMarkdown falls back to plain text if glamour fails.
func renderMarkdown(content string, color bool) string {
	if !color {
		return content
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
