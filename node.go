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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gridlabs-io/joule/api"
	"github.com/gridlabs-io/joule/database"
	"github.com/gridlabs-io/joule/event"
	"github.com/gridlabs-io/joule/state"
)

// Node ties the grid state, database, event bus, and API server together
type Node struct {
	config       Config
	eventBus     *event.EventBus
	db           *database.Database
	gridState    *state.GridState
	api          *api.Api
	done         chan struct{}
	shutdownOnce sync.Once
}

func New(cfg Config) (*Node, error) {
	if cfg.admin == "" {
		return nil, errors.New("no admin principal configured")
	}
	n := &Node{
		config:   cfg,
		eventBus: event.NewEventBus(cfg.promRegistry, cfg.logger),
		done:     make(chan struct{}),
	}
	return n, nil
}

// Run starts the node and blocks until Stop is called or the context is
// cancelled
func (n *Node) Run(ctx context.Context) error {
	// Load database
	db, err := database.New(&database.Config{
		DataDir:      n.config.dataDir,
		Logger:       n.config.logger,
		PromRegistry: n.config.promRegistry,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	// Load grid state
	gridState, err := state.NewGridState(
		state.GridStateConfig{
			Logger:               n.config.logger,
			Database:             n.db,
			EventBus:             n.eventBus,
			PromRegistry:         n.config.promRegistry,
			Admin:                n.config.admin,
			ReadingRecencyWindow: n.config.readingRecencyWindow,
			BlockTime:            n.config.blockTime,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to load grid state: %w", err)
	}
	n.gridState = gridState
	n.gridState.Start()
	// Start API listener
	n.api = api.New(
		api.ApiConfig{
			ListenAddress: n.config.apiListenAddress,
		},
		n.gridState,
		n.config.logger,
	)
	if err := n.api.Start(ctx); err != nil {
		return err
	}
	// Wait for shutdown
	select {
	case <-ctx.Done():
	case <-n.done:
	}
	return n.Stop()
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	n.config.logger.Debug("starting graceful shutdown")

	// Phase 1: stop accepting new work
	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	// Phase 2: stop the block clock and event delivery
	if n.gridState != nil {
		n.gridState.Stop()
	}
	if n.eventBus != nil {
		n.eventBus.Stop()
	}

	// Phase 3: close the database
	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	close(n.done)
	return err
}

// GridState returns the node's grid state for direct access
func (n *Node) GridState() *state.GridState {
	return n.gridState
}
