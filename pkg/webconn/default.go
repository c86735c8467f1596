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
	"fmt"
	"sync"
)

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// Default returns the process-wide Client, creating it with NewClient on
// first use.
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultClient == nil {
		c, err := NewClient()
		if err != nil {
			// NewClient only fails on invalid options; none are passed here.
			panic(fmt.Sprintf("webconn: default client: %v", err))
		}
		defaultClient = c
	}
	return defaultClient
}

// SetDefault replaces the process-wide Client. Connections created earlier
// keep the Client they were created with. Passing nil makes the next
// Default call build a fresh Client.
func SetDefault(c *Client) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultClient = c
}

// ForURL returns a QueryConnection from the Default client.
func ForURL(rawURL string) (*QueryConnection, error) {
	return Default().ForURL(rawURL)
}

// ForURLMethod returns a BodyConnection from the Default client.
func ForURLMethod(rawURL string, method Method) (*BodyConnection, error) {
	return Default().ForURLMethod(rawURL, method)
}
