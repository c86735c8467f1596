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
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Terminal styles for the status line and error output.
var (
	styleOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))  // green
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")) // orange
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
	styleInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))  // blue

	// Muted styles secondary text such as durations and suggestions.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

const symbolError = "✗"

// RenderError renders an error message behind a red cross.
func RenderError(msg string) string {
	return styleError.Render(symbolError) + " " + msg
}

// RenderStatusCode renders an HTTP status code colored by class: green for
// 2xx, blue for 3xx, orange for 4xx, red for 5xx and failures.
func RenderStatusCode(code int) string {
	switch {
	case code < 0:
		return styleError.Render("FAILED")
	case code < 300:
		return styleOK.Render(strconv.Itoa(code))
	case code < 400:
		return styleInfo.Render(strconv.Itoa(code))
	case code < 500:
		return styleWarn.Render(strconv.Itoa(code))
	default:
		return styleError.Render(strconv.Itoa(code))
	}
}
