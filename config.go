// Copyright 2025 Grid Labs Software
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

package joule

import (
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gridlabs-io/joule/ledger"
)

type Config struct {
	promRegistry         prometheus.Registerer
	logger               *slog.Logger
	dataDir              string
	admin                ledger.Principal
	apiListenAddress     string
	metricsListenAddress string
	blockTime            time.Duration
	readingRecencyWindow uint64
	shutdownTimeout      time.Duration
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new joule config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		admin:  "deployer",
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithDataDir specifies the persistent data directory to use. This defaults
// to an in-memory database when empty
func WithDataDir(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithAdmin specifies the principal allowed administrative operations
func WithAdmin(admin ledger.Principal) ConfigOptionFunc {
	return func(c *Config) {
		c.admin = admin
	}
}

// WithPrometheusRegistry specifies a prometheus registry for metrics
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithApiListenAddress specifies the listen address for the REST API
func WithApiListenAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = address
	}
}

// WithMetricsListenAddress specifies the listen address for prometheus
// metrics. Empty disables the metrics listener
func WithMetricsListenAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.metricsListenAddress = address
	}
}

// WithBlockTime specifies the interval between automatic block advances.
// Zero disables the internal block clock
func WithBlockTime(blockTime time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.blockTime = blockTime
	}
}

// WithReadingRecencyWindow specifies the max age (in blocks) of a
// validated meter reading that can back an energy supply
func WithReadingRecencyWindow(window uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.readingRecencyWindow = window
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
