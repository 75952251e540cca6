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
	"github.com/gridlabs-io/joule/ledger"
)

// Read-only queries served directly from the in-memory ledger

func (g *GridState) Admin() ledger.Principal {
	return g.config.Admin
}

func (g *GridState) BlockHeight() uint64 {
	g.RLock()
	defer g.RUnlock()
	return g.core.BlockHeight()
}

func (g *GridState) GetParticipantInfo(
	principal ledger.Principal,
) *ledger.Participant {
	g.RLock()
	defer g.RUnlock()
	return g.core.GetParticipantInfo(principal)
}

func (g *GridState) Participants() []ledger.Principal {
	g.RLock()
	defer g.RUnlock()
	return g.core.Participants()
}

func (g *GridState) GetMeter(meterID uint64) *ledger.Meter {
	g.RLock()
	defer g.RUnlock()
	return g.core.GetMeter(meterID)
}

func (g *GridState) GetReading(
	meterID uint64,
	height uint64,
) *ledger.Reading {
	g.RLock()
	defer g.RUnlock()
	return g.core.GetReading(meterID, height)
}

func (g *GridState) GetTradeOrder(orderID uint64) *ledger.TradeOrder {
	g.RLock()
	defer g.RUnlock()
	return g.core.GetTradeOrder(orderID)
}

func (g *GridState) OrderCount() int {
	g.RLock()
	defer g.RUnlock()
	return g.core.OrderCount()
}

func (g *GridState) OpenOrderCount() int {
	g.RLock()
	defer g.RUnlock()
	return g.core.OpenOrderCount()
}

func (g *GridState) GetBalance(principal ledger.Principal) uint64 {
	g.RLock()
	defer g.RUnlock()
	return g.core.GetBalance(principal)
}

func (g *GridState) TotalSupply() uint64 {
	g.RLock()
	defer g.RUnlock()
	return g.core.TotalSupply()
}

func (g *GridState) LastSettlementHeight() uint64 {
	g.RLock()
	defer g.RUnlock()
	return g.core.LastSettlementHeight()
}
