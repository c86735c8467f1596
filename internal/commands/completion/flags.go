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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/webconn/internal/commands/shared"
	"github.com/tombee/webconn/internal/config"
	"github.com/tombee/webconn/pkg/webconn"
)

// CompleteMethods provides completion for --method flag values. GET is left
// out because it is served by the get command.
func CompleteMethods(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		var methods []string
		for _, m := range webconn.Methods {
			if m != webconn.MethodGet {
				methods = append(methods, m.String())
			}
		}
		return methods, cobra.ShellCompDirectiveNoFileComp
	})
}

// CompleteBuckets provides completion for --bucket flag values from the
// buckets registered in the config file.
func CompleteBuckets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return SafeCompletionWrapper(func() ([]string, cobra.ShellCompDirective) {
		cfg, err := config.Load(config.ResolvePath(shared.GetConfigPath()))
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		buckets := []string{"0\tunlimited"}
		for _, b := range cfg.Scheduler.Buckets {
			if b.ID == 0 {
				continue
			}
			buckets = append(buckets, fmt.Sprintf("%d\tone request per %s", b.ID, b.Interval))
		}
		return buckets, cobra.ShellCompDirectiveNoFileComp
	})
}

// SafeCompletionWrapper wraps a completion function with panic recovery.
func SafeCompletionWrapper(fn func() ([]string, cobra.ShellCompDirective)) (results []string, directive cobra.ShellCompDirective) {
	results = []string{}
	directive = cobra.ShellCompDirectiveNoFileComp

	defer func() {
		if r := recover(); r != nil {
			results = []string{}
			directive = cobra.ShellCompDirectiveNoFileComp
		}
	}()

	results, directive = fn()
	if results == nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}
	return results, directive
}
