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

package completion

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/tombee/webconn/internal/commands/shared"
)

func TestCompleteMethods(t *testing.T) {
	completions, directive := CompleteMethods(nil, nil, "")

	if len(completions) != 7 {
		t.Errorf("expected 7 methods, got %d: %v", len(completions), completions)
	}
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("expected ShellCompDirectiveNoFileComp, got %v", directive)
	}
	for _, c := range completions {
		if c == "GET" {
			t.Error("GET should not be offered for send")
		}
	}
}

func TestCompleteBuckets(t *testing.T) {
	defer shared.ResetFlagsForTest()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "scheduler:\n  buckets:\n    - id: 2\n      interval: 1s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	_, _, _, configPtr := shared.RegisterFlagPointers()
	*configPtr = path

	completions, _ := CompleteBuckets(nil, nil, "")
	if len(completions) != 2 {
		t.Fatalf("expected 2 buckets, got %v", completions)
	}
	if !strings.HasPrefix(completions[1], "2\t") {
		t.Errorf("expected bucket 2, got %q", completions[1])
	}
}

func TestCompleteBuckets_BadConfig(t *testing.T) {
	defer shared.ResetFlagsForTest()

	_, _, _, configPtr := shared.RegisterFlagPointers()
	*configPtr = filepath.Join(t.TempDir(), "missing.yaml")

	completions, directive := CompleteBuckets(nil, nil, "")
	if len(completions) != 0 {
		t.Errorf("expected no completions, got %v", completions)
	}
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("expected ShellCompDirectiveNoFileComp, got %v", directive)
	}
}

func TestSafeCompletionWrapper_RecoversPanic(t *testing.T) {
	results, directive := SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		panic("boom")
	})
	if len(results) != 0 || directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("unexpected result after panic: %v %v", results, directive)
	}
}

func TestCompletionCommand(t *testing.T) {
	root := &cobra.Command{Use: "webconn"}
	root.AddCommand(NewCommand())

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"completion", "bash"})

	if err := root.Execute(); err != nil {
		t.Fatalf("completion failed: %v", err)
	}
	if !strings.Contains(buf.String(), "webconn") {
		t.Error("expected bash completion script to mention the command name")
	}

	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.Execute(); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
