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

/*
Package cli provides the root command for the webconn CLI.

This package creates the root Cobra command and handles global concerns like
version information, persistent flags, and error handling. Individual commands
are implemented in the internal/commands subpackages.

# Command Tree

	webconn
	├── get           GET with percent-encoded query parameters
	├── send          POST, PUT, PATCH, DELETE, ... with a string or JSON body
	├── completion    Shell completion scripts
	├── version       Show version
	└── help          Show help (--json for machine-readable output)

# Usage

From main.go:

	cli.SetVersion(version, commit, date)
	rootCmd := cli.NewRootCommand()
	rootCmd.AddCommand(get.NewCommand())
	// ... add commands ...
	if err := rootCmd.ExecuteContext(ctx); err != nil {
	    cli.HandleExitError(err)
	}

# Global Flags

	--verbose, -v    Enable debug logging
	--quiet, -q      Suppress the status line and non-error logs
	--json           Output in JSON format
	--config         Path to config file
	--trace          Print request spans to stderr

# Exit Codes

  - 0: Success
  - 1: The request never completed
  - 2: Invalid URL, method, flag or configuration
  - 3: --expect evaluated to false
  - 4: --fail and a response status of 400 or higher
*/
package cli
