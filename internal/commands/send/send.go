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

// Package send implements the send command.
package send

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tombee/webconn/internal/commands/completion"
	"github.com/tombee/webconn/internal/commands/shared"
	"github.com/tombee/webconn/internal/log"
	"github.com/tombee/webconn/pkg/scheduler"
	"github.com/tombee/webconn/pkg/webconn"
)

type options struct {
	request  shared.RequestFlags
	method   string
	data     string
	dataFile string
	jsonBody bool
}

// NewCommand creates the send command.
func NewCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "send URL",
		Short: "Send a request with a body",
		Long: `Send a request with a string body using any method except GET.

The body comes from --data, or from --data-file ('-' reads stdin). With
--json-body the body is validated as JSON and sent with
Content-Type: application/json unless a Content-Type header is given.`,
		Example: `  webconn send https://api.example.com/items -X POST -d '{"input":"LOL"}' --json-body
  webconn send https://api.example.com/items/1 -X DELETE
  cat item.json | webconn send https://api.example.com/items -X PUT --data-file - --query .id`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return shared.ReportFailure(cmd, "send", run(cmd, args[0], opts))
		},
	}

	cmd.Flags().StringVarP(&opts.method, "method", "X", "POST", "HTTP method (HEAD, POST, PUT, DELETE, OPTIONS, TRACE, PATCH)")
	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "Request body")
	cmd.Flags().StringVar(&opts.dataFile, "data-file", "", "Read the request body from a file ('-' for stdin)")
	cmd.Flags().BoolVar(&opts.jsonBody, "json-body", false, "Validate the body as JSON and send it as application/json")
	cmd.MarkFlagsMutuallyExclusive("data", "data-file")
	shared.AddRequestFlags(cmd, &opts.request)

	_ = cmd.RegisterFlagCompletionFunc("method", completion.CompleteMethods)
	_ = cmd.RegisterFlagCompletionFunc("bucket", completion.CompleteBuckets)

	return cmd
}

func run(cmd *cobra.Command, rawURL string, opts *options) error {
	method, err := webconn.ParseMethod(opts.method)
	if err != nil {
		return shared.NewInvalidArgsError("invalid method", err)
	}

	body, err := readBody(cmd, opts)
	if err != nil {
		return shared.NewInvalidArgsError("failed to read body", err)
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

	conn, err := rt.Client.ForURLMethod(rawURL, method)
	if err != nil {
		return shared.NewInvalidArgsError("invalid request", err)
	}
	if err := shared.ApplyHeaders(conn, rt.Config.Headers, &opts.request); err != nil {
		return err
	}
	bucket := rt.Bucket(cmd, &opts.request, rawURL)
	conn.WithRateID(bucket)

	ctx, logger := rt.Context(cmd.Context())
	logger.Debug("sending request", log.MethodKey, method, log.BucketKey, bucket)

	var deferred *scheduler.Deferred[webconn.Outcome[string]]
	if opts.jsonBody {
		deferred, err = conn.RequestRawJSON(ctx, body)
		if err != nil {
			return shared.NewInvalidArgsError("body is not valid JSON", err)
		}
	} else {
		deferred = conn.Request(ctx, body)
	}

	// The request observes ctx; waiting without it lets a canceled request
	// resolve to its failed outcome.
	outcome, waitErr := deferred.Wait(context.WithoutCancel(ctx))
	return shared.Report(cmd, "send", &opts.request, outcome, waitErr, conn.Codec())
}

func readBody(cmd *cobra.Command, opts *options) (string, error) {
	switch opts.dataFile {
	case "":
		return opts.data, nil
	case "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(opts.dataFile)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}
