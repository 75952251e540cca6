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

package state

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gridlabs-io/joule/database"
	"github.com/gridlabs-io/joule/event"
	"github.com/gridlabs-io/joule/ledger"
)

type GridStateConfig struct {
	Logger       *slog.Logger
	Database     *database.Database
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	// Admin is the principal allowed admin operations
	Admin ledger.Principal
	// ReadingRecencyWindow is passed through to the core ledger
	ReadingRecencyWindow uint64
	// BlockTime is the interval between automatic block advances.
	// Zero disables the internal clock; blocks then only advance when
	// AdvanceBlock is called directly.
	BlockTime time.Duration
}

// GridState binds the deterministic grid ledger to the host runtime. It
// serializes transactions, journals a receipt for each accepted one, and
// mirrors the resulting entity state into the metadata store. Replaying
// the receipt journal through a fresh ledger reproduces current state.
type GridState struct {
	sync.RWMutex
	config   GridStateConfig
	logger   *slog.Logger
	db       *database.Database
	eventBus *event.EventBus
	core     *ledger.Ledger
	nextSeq  uint64
	metrics  stateMetrics

	timerMutex   sync.Mutex
	blockTimer   *time.Timer
	clockRunning bool
}

type stateMetrics struct {
	txsProcessed prometheus.Counter
	txsFailed    prometheus.Counter
	blockHeight  prometheus.Gauge
	openOrders   prometheus.Gauge
	totalSupply  prometheus.Gauge
}

func NewGridState(cfg GridStateConfig) (*GridState, error) {
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("no database provided")
	}
	g := &GridState{
		config:   cfg,
		logger:   cfg.Logger.With("component", "state"),
		db:       cfg.Database,
		eventBus: cfg.EventBus,
	}
	g.initMetrics(cfg.PromRegistry)
	if err := g.load(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *GridState) initMetrics(promRegistry prometheus.Registerer) {
	if promRegistry == nil {
		promRegistry = prometheus.NewRegistry()
	}
	promautoFactory := promauto.With(promRegistry)
	g.metrics.txsProcessed = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "joule_grid_txs_processed_total",
			Help: "total number of grid transactions accepted",
		},
	)
	g.metrics.txsFailed = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "joule_grid_txs_failed_total",
			Help: "total number of grid transactions rejected",
		},
	)
	g.metrics.blockHeight = promautoFactory.NewGauge(
		prometheus.GaugeOpts{
			Name: "joule_grid_block_height",
			Help: "current block height",
		},
	)
	g.metrics.openOrders = promautoFactory.NewGauge(
		prometheus.GaugeOpts{
			Name: "joule_grid_open_orders",
			Help: "number of open trade orders",
		},
	)
	g.metrics.totalSupply = promautoFactory.NewGauge(
		prometheus.GaugeOpts{
			Name: "joule_grid_energy_total_supply",
			Help: "total supply of energy credit tokens",
		},
	)
}

// load rebuilds the in-memory ledger from the receipt journal and then
// restores the block height from persisted network state. Block advances
// are not journaled, so the saved height can be ahead of the last receipt.
func (g *GridState) load() error {
	core, nextSeq, err := g.replayJournal()
	if err != nil {
		return err
	}
	g.core = core
	g.nextSeq = nextSeq
	networkState, err := g.db.GetNetworkState(nil)
	if err != nil {
		return fmt.Errorf("load network state: %w", err)
	}
	if networkState.BlockHeight > g.core.BlockHeight() {
		g.core.SetHeight(networkState.BlockHeight)
	}
	g.metrics.blockHeight.Set(float64(g.core.BlockHeight()))
	g.metrics.openOrders.Set(float64(g.core.OpenOrderCount()))
	g.metrics.totalSupply.Set(float64(g.core.TotalSupply()))
	if g.nextSeq > 0 {
		g.logger.Info(
			fmt.Sprintf(
				"restored grid state from %d receipt(s)",
				g.nextSeq,
			),
			"height", g.core.BlockHeight(),
		)
	}
	return nil
}

func (g *GridState) replayJournal() (*ledger.Ledger, uint64, error) {
	core := g.newCore()
	var nextSeq uint64
	err := g.db.IterateReceipts(func(seq uint64, payload []byte) error {
		var receipt Receipt
		if err := json.Unmarshal(payload, &receipt); err != nil {
			return fmt.Errorf("decode receipt %d: %w", seq, err)
		}
		if err := applyReceipt(core, &receipt); err != nil {
			return fmt.Errorf(
				"replay receipt %d (%s): %w",
				seq,
				receipt.Op,
				err,
			)
		}
		nextSeq = seq + 1
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return core, nextSeq, nil
}

func (g *GridState) newCore() *ledger.Ledger {
	return ledger.NewLedger(
		ledger.LedgerConfig{
			Logger:               g.config.Logger,
			Admin:                g.config.Admin,
			ReadingRecencyWindow: g.config.ReadingRecencyWindow,
		},
	)
}

// Start begins the internal block clock, if configured
func (g *GridState) Start() {
	if g.config.BlockTime <= 0 {
		return
	}
	g.timerMutex.Lock()
	defer g.timerMutex.Unlock()
	g.clockRunning = true
	g.scheduleBlockAdvance()
}

// Stop halts the internal block clock
func (g *GridState) Stop() {
	g.timerMutex.Lock()
	defer g.timerMutex.Unlock()
	g.clockRunning = false
	if g.blockTimer != nil {
		g.blockTimer.Stop()
		g.blockTimer = nil
	}
}

// scheduleBlockAdvance arms the next clock tick. Callers must hold
// timerMutex.
func (g *GridState) scheduleBlockAdvance() {
	if !g.clockRunning {
		return
	}
	g.blockTimer = time.AfterFunc(g.config.BlockTime, func() {
		if _, err := g.AdvanceBlock(); err != nil {
			g.logger.Error(
				"failed to advance block",
				"error", err,
			)
		}
		g.timerMutex.Lock()
		g.scheduleBlockAdvance()
		g.timerMutex.Unlock()
	})
}

// AdvanceBlock increments the block height and persists it. Block
// advances carry no transaction semantics and are not journaled.
func (g *GridState) AdvanceBlock() (uint64, error) {
	g.Lock()
	defer g.Unlock()
	height := g.core.AdvanceBlock()
	err := database.NewTxn(g.db, true).Do(func(txn *database.Txn) error {
		return g.mirrorNetworkState(txn)
	})
	if err != nil {
		return 0, fmt.Errorf("persist block height: %w", err)
	}
	g.metrics.blockHeight.Set(float64(height))
	g.publishEvent(BlockEventType, BlockEvent{Height: height})
	return height, nil
}

// apply runs a transaction against the core ledger and, when accepted,
// journals its receipt and mirrors the dirty entity rows in a single
// database transaction. On a storage failure the in-memory ledger is
// rebuilt from the journal so it never gets ahead of durable state.
func (g *GridState) apply(
	op string,
	caller ledger.Principal,
	args any,
	fn func(*ledger.Ledger) error,
	mirror func(*database.Txn) error,
) error {
	g.Lock()
	defer g.Unlock()
	if err := fn(g.core); err != nil {
		g.metrics.txsFailed.Inc()
		g.logger.Debug(
			"transaction rejected",
			"op", op,
			"caller", string(caller),
			"error", err,
		)
		return err
	}
	receipt := &Receipt{
		Seq:    g.nextSeq,
		Height: g.core.BlockHeight(),
		Op:     op,
		Caller: string(caller),
		Args:   mustMarshalArgs(args),
	}
	payload, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("encode receipt: %w", err)
	}
	err = database.NewTxn(g.db, true).Do(func(txn *database.Txn) error {
		if err := g.db.SetReceipt(receipt.Seq, payload, txn); err != nil {
			return err
		}
		if err := g.mirrorNetworkState(txn); err != nil {
			return err
		}
		if mirror != nil {
			return mirror(txn)
		}
		return nil
	})
	if err != nil {
		// The core has already applied the transaction. Roll it back by
		// rebuilding from the journal, which does not include this receipt.
		g.logger.Error(
			"failed to persist transaction, rebuilding from journal",
			"op", op,
			"error", err,
		)
		if rebuildErr := g.rebuild(); rebuildErr != nil {
			g.logger.Error(
				"failed to rebuild from journal",
				"error", rebuildErr,
			)
		}
		return fmt.Errorf("persist transaction: %w", err)
	}
	g.nextSeq++
	g.metrics.txsProcessed.Inc()
	g.metrics.openOrders.Set(float64(g.core.OpenOrderCount()))
	g.metrics.totalSupply.Set(float64(g.core.TotalSupply()))
	return nil
}

// rebuild replaces the in-memory ledger with one replayed from the
// journal. Callers must hold the write lock.
func (g *GridState) rebuild() error {
	core, nextSeq, err := g.replayJournal()
	if err != nil {
		return err
	}
	networkState, err := g.db.GetNetworkState(nil)
	if err != nil {
		return err
	}
	if networkState.BlockHeight > core.BlockHeight() {
		core.SetHeight(networkState.BlockHeight)
	}
	g.core = core
	g.nextSeq = nextSeq
	return nil
}

func (g *GridState) publishEvent(eventType event.EventType, data any) {
	if g.eventBus == nil {
		return
	}
	g.eventBus.Publish(eventType, event.NewEvent(eventType, data))
}
