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
	"context"
	"fmt"
	"maps"
	"net/url"
	"sync"

	"github.com/tombee/webconn/pkg/jsoncodec"
	"github.com/tombee/webconn/pkg/scheduler"
)

// HeaderUserAgent is the header SetUserAgent writes.
const HeaderUserAgent = "User-Agent"

// connection holds the configuration shared by both connection shapes.
type connection struct {
	client *Client
	target *url.URL

	mu      sync.RWMutex
	headers map[string]string
	rateID  int
}

func newConnection(client *Client, target *url.URL) *connection {
	return &connection{
		client:  client,
		target:  target,
		headers: make(map[string]string),
	}
}

// AddHeader sets header name to value, replacing any previous value for the
// same name. Names are case-sensitive here and are not validated; an
// illegal name surfaces as a transport failure when a request is sent.
func (c *connection) AddHeader(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[name] = value
}

// SetUserAgent sets the User-Agent header.
func (c *connection) SetUserAgent(agent string) {
	c.AddHeader(HeaderUserAgent, agent)
}

// SetCrawlerUserAgent sets the User-Agent header in the conventional crawler
// form "name/version (+infoURL)".
func (c *connection) SetCrawlerUserAgent(name, version, infoURL string) {
	c.SetUserAgent(fmt.Sprintf("%s/%s (+%s)", name, version, infoURL))
}

// Headers returns a copy of the configured headers.
func (c *connection) Headers() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.headers)
}

// URL returns a copy of the target URL.
func (c *connection) URL() *url.URL {
	u := *c.target
	return &u
}

// RateID returns the rate bucket requests are submitted to.
func (c *connection) RateID() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rateID
}

func (c *connection) setRateID(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rateID = id
}

// Codec returns the JSON codec used by RequestJSON.
func (c *connection) Codec() *jsoncodec.Codec {
	return c.client.codec
}

// snapshot returns the configuration current at call time.
func (c *connection) snapshot() (map[string]string, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.headers), c.rateID
}

func (c *connection) submit(ctx context.Context, method Method, target *url.URL, body string, defaults map[string]string) *scheduler.Deferred[Outcome[string]] {
	headers, bucket := c.snapshot()
	return c.client.execute(ctx, call{
		method:   method,
		target:   target,
		headers:  headers,
		defaults: defaults,
		body:     body,
		bucket:   bucket,
	})
}
