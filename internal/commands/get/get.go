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

// Package get implements the get command.
package get

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tombee/webconn/internal/commands/completion"
	"github.com/tombee/webconn/internal/commands/shared"
	"github.com/tombee/webconn/internal/log"
)

type options struct {
	request shared.RequestFlags
	params  []string
}

// NewCommand creates the get command.
func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "get URL",
		Short: "Send a GET request with query parameters",
		Long: `Send a GET request to URL. Each -p key=value is percent-encoded and
appended to the query string; parameters are joined with '&'.

The response body is written to stdout and a status line to stderr.`,
		Example: `  webconn get https://example.com/search -p q='a b'
  webconn get https://api.example.com/user/1 --query .name
  webconn get https://example.com/health --expect 'ok && duration_ms < 500'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return shared.ReportFailure(cmd, "get", run(cmd, args[0], opts))
		},
	}

	cmd.Flags().StringArrayVarP(&opts.params, "param", "p", nil, "Query parameter as key=value (repeatable)")
	shared.AddRequestFlags(cmd, &opts.request)
	_ = cmd.RegisterFlagCompletionFunc("bucket", completion.CompleteBuckets)

	return cmd
}

func run(cmd *cobra.Command, rawURL string, opts *options) error {
	params := make(map[string]string, len(opts.params))
	for _, p := range opts.params {
		key, value, err := shared.ParseParam(p)
		if err != nil {
			return shared.NewInvalidArgsError("invalid parameter", err)
		}
		params[key] = value
	}

	rt, err := shared.NewRuntime(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(context.Background()); err != nil {
			rt.Logger.Warn("shutdown incomplete", log.Error(err))
		}
	}()

	conn, err := rt.Client.ForURL(rawURL)
	if err != nil {
		return shared.NewInvalidArgsError("invalid URL", err)
	}
	if err := shared.ApplyHeaders(conn, rt.Config.Headers, &opts.request); err != nil {
		return err
	}
	bucket := rt.Bucket(cmd, &opts.request, rawURL)
	conn.WithRateID(bucket)

	ctx, logger := rt.Context(cmd.Context())
	logger.Debug("sending request", log.MethodKey, "GET", log.BucketKey, bucket)

	// The request observes ctx; waiting without it lets a canceled request
	// resolve to its failed outcome.
	outcome, waitErr := conn.Request(ctx, params).Wait(context.WithoutCancel(ctx))
	return shared.Report(cmd, "get", &opts.request, outcome, waitErr, conn.Codec())
}
