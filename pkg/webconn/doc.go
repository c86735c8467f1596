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

// Package webconn issues rate-limited HTTP requests and returns their
// outcomes as deferred results.
//
// A Client owns the scheduler, HTTP client and JSON codec shared by the
// connections it creates. ForURL returns a QueryConnection that issues GET
// requests with percent-encoded parameters; ForURLMethod returns a
// BodyConnection that sends a string body with any other method.
//
//	client, err := webconn.NewClient()
//	if err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	conn, err := client.ForURL("https://example.com/search")
//	if err != nil {
//	    return err
//	}
//	conn.SetCrawlerUserAgent("ImageBot", "2.0", "https://example.com/bot")
//
//	outcome, err := conn.Request(ctx, map[string]string{"q": "a b"}).Wait(ctx)
//
// Connection configuration is read when Request is called. Changing headers
// or the rate bucket while other goroutines issue requests on the same
// connection is allowed but gives no guarantee which configuration those
// requests see; configure first, or use one connection per configuration.
package webconn
