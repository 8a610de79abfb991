// Copyright 2025 Edgeo SCADA
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

package prologix

import (
	"log/slog"
	"time"
)

// clientOptions holds configuration for the client
type clientOptions struct {
	// Network configuration
	localAddress     string
	broadcastAddress string
	port             int

	// Default discovery window
	timeout time.Duration

	// Logging
	logger *slog.Logger
}

// defaultOptions returns the default client options
func defaultOptions() *clientOptions {
	return &clientOptions{
		port:    DefaultPort,
		timeout: 500 * time.Millisecond,
		logger:  slog.Default(),
	}
}

// Option is a functional option for configuring the client
type Option func(*clientOptions)

// WithLocalAddress sets the local address to bind to (e.g., "0.0.0.0:0")
func WithLocalAddress(addr string) Option {
	return func(o *clientOptions) {
		o.localAddress = addr
	}
}

// WithBroadcastAddress sets the broadcast target for identify requests.
// Defaults to the network-limited broadcast address 255.255.255.255; a
// directed-subnet broadcast address such as 192.168.1.255 also works.
func WithBroadcastAddress(addr string) Option {
	return func(o *clientOptions) {
		o.broadcastAddress = addr
	}
}

// WithPort sets the controller-side UDP port
func WithPort(port int) Option {
	return func(o *clientOptions) {
		o.port = port
	}
}

// WithTimeout sets the default discovery window
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithLogger sets the logger for the client
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// DiscoverOptions holds per-call configuration for discovery
type DiscoverOptions struct {
	// Timeout is the discovery window: how long to collect replies after
	// the identify broadcast goes out.
	Timeout time.Duration
}

// DiscoverOption is a functional option for discovery
type DiscoverOption func(*DiscoverOptions)

// defaultDiscoverOptions returns per-call defaults seeded from the client
func (c *Client) defaultDiscoverOptions() *DiscoverOptions {
	return &DiscoverOptions{
		Timeout: c.opts.timeout,
	}
}

// WithDiscoveryTimeout sets the discovery window for one call
func WithDiscoveryTimeout(d time.Duration) DiscoverOption {
	return func(o *DiscoverOptions) {
		o.Timeout = d
	}
}
