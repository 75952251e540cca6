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

package ledger

import (
	"io"
	"log/slog"
	"math"
)

// DefaultReadingRecencyWindow is the number of blocks a validated meter
// reading remains fresh enough to back an energy supply
const DefaultReadingRecencyWindow = 144

// Principal is a unique participant identity as assigned by the host
// ledger runtime. The runtime authenticates callers; the core only ever
// sees the resolved identity.
type Principal string

type readingKey struct {
	MeterID uint64
	Height  uint64
}

// LedgerConfig carries the policy knobs for a grid ledger instance
type LedgerConfig struct {
	Logger *slog.Logger
	// Admin is the principal allowed to perform administrative actions
	// (valid-meter registration, minting, reading validation)
	Admin Principal
	// ReadingRecencyWindow is the max age (in blocks) of a validated
	// reading that can back an energy supply. Zero accepts any height.
	ReadingRecencyWindow uint64
}

// Ledger is the deterministic state machine for the energy grid. Every
// entry point runs to completion against current state: all precondition
// checks happen before the first mutation, so a returned error always
// leaves state untouched. The ledger has no internal locking; the caller
// (the host runtime binding) is responsible for serializing transactions.
type Ledger struct {
	logger               *slog.Logger
	admin                Principal
	readingRecencyWindow uint64
	height               uint64

	participants     map[Principal]*Participant
	participantOrder []Principal
	meters           map[uint64]*Meter
	readings         map[readingKey]*Reading
	orders           []*TradeOrder
	balances         map[Principal]uint64
	totalSupply      uint64
	lastSettlement   uint64
}

// NewLedger creates an empty grid ledger at block height zero
func NewLedger(cfg LedgerConfig) *Ledger {
	l := &Ledger{
		logger:               cfg.Logger,
		admin:                cfg.Admin,
		readingRecencyWindow: cfg.ReadingRecencyWindow,
		participants:         make(map[Principal]*Participant),
		meters:               make(map[uint64]*Meter),
		readings:             make(map[readingKey]*Reading),
		balances:             make(map[Principal]uint64),
	}
	if l.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		l.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return l
}

// Admin returns the administrator principal
func (l *Ledger) Admin() Principal {
	return l.admin
}

// BlockHeight returns the current block height
func (l *Ledger) BlockHeight() uint64 {
	return l.height
}

// SetHeight moves the block-height clock. The host runtime owns block
// production; the core only reads the clock to timestamp readings and to
// gate supply recency.
func (l *Ledger) SetHeight(height uint64) {
	l.height = height
}

// AdvanceBlock increments the block-height clock and returns the new height
func (l *Ledger) AdvanceBlock() uint64 {
	l.height++
	return l.height
}

func (l *Ledger) isAdmin(caller Principal) bool {
	return caller == l.admin
}

// checkedAdd fails rather than wraps on uint64 overflow
func checkedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrAmountOverflow
	}
	return a + b, nil
}

// checkedMul fails rather than wraps on uint64 overflow
func checkedMul(a, b uint64) (uint64, error) {
	if a != 0 && b > math.MaxUint64/a {
		return 0, ErrAmountOverflow
	}
	return a * b, nil
}
