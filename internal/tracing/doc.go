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
Package tracing carries request identity across process boundaries.

# Correlation IDs

Every CLI invocation gets a fresh CorrelationID. It rides on the context and
is sent with each outbound request in the X-Correlation-ID header:

	ctx = tracing.ToContext(ctx, tracing.NewCorrelationID())
	tracing.InjectIntoRequest(req.WithContext(ctx))

# Trace Context

Request spans are propagated to servers as W3C traceparent headers:

	tracing.InjectHTTPHeaders(ctx, req.Header)

# Export

NewProvider builds the tracer provider --trace uses. Console spans are written
synchronously; the otlp (gRPC) and otlp_http exporters batch spans to a
collector and flush on Shutdown:

	tp, err := tracing.NewProvider(ctx, tracing.ProviderConfig{
	    ServiceName: "webconn",
	    Exporter:    tracing.ExporterConfig{Type: tracing.ExporterOTLP, Endpoint: "localhost:4317"},
	})
	defer tracing.Shutdown(ctx, tp)
*/
package tracing
