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

package webconn

import (
	"sort"
	"strings"
)

const upperHex = "0123456789ABCDEF"

// EscapeComponent percent-encodes s for use as a query key or value. ASCII
// letters and digits pass through; every other byte of the UTF-8 encoding
// becomes %XX with uppercase hex digits, except space, which becomes '+'.
//
// This is stricter than url.QueryEscape, which leaves "-_.~" unescaped.
func EscapeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isAlphanumeric(c):
			b.WriteByte(c)
		case c == ' ':
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(upperHex[c>>4])
			b.WriteByte(upperHex[c&0x0F])
		}
	}
	return b.String()
}

func isAlphanumeric(c byte) bool {
	return ('0' <= c && c <= '9') || ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z')
}

// EncodeQuery encodes params as key=value pairs joined with '&', sorted by
// key.
func EncodeQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(EscapeComponent(k))
		b.WriteByte('=')
		b.WriteString(EscapeComponent(params[k]))
	}
	return b.String()
}
