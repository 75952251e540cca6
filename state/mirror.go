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
	"fmt"

	"github.com/gridlabs-io/joule/database"
	"github.com/gridlabs-io/joule/database/models"
	"github.com/gridlabs-io/joule/ledger"
)

// The mirror helpers copy entity state out of the core ledger into the
// metadata store after a transaction is accepted. Callers hold the write
// lock, so the copied state is exactly what the transaction produced.

func (g *GridState) mirrorNetworkState(txn *database.Txn) error {
	networkState, err := g.db.GetNetworkState(txn)
	if err != nil {
		return err
	}
	networkState.BlockHeight = g.core.BlockHeight()
	networkState.TotalSupply = g.core.TotalSupply()
	networkState.NextOrderID = uint64(g.core.OrderCount())
	networkState.LastSettlementHeight = g.core.LastSettlementHeight()
	return g.db.SetNetworkState(networkState, txn)
}

func (g *GridState) mirrorParticipant(
	principal ledger.Principal,
	txn *database.Txn,
) error {
	participant := g.core.GetParticipantInfo(principal)
	if participant == nil {
		return fmt.Errorf("no participant record for %s", principal)
	}
	row := &models.Participant{
		Principal:         string(principal),
		SmartMeterID:      participant.SmartMeterID,
		EnergyBalance:     participant.EnergyBalance,
		CreditBalance:     participant.CreditBalance,
		SettlementBalance: participant.SettlementBalance,
		LastMeterReading:  participant.LastMeterReading,
		RegisteredAt:      g.registrationIndex(principal),
		Active:            participant.Active,
	}
	return g.db.SetParticipant(row, txn)
}

func (g *GridState) registrationIndex(principal ledger.Principal) uint64 {
	for i, p := range g.core.Participants() {
		if p == principal {
			return uint64(i)
		}
	}
	return 0
}

func (g *GridState) mirrorMeter(meterID uint64, txn *database.Txn) error {
	meter := g.core.GetMeter(meterID)
	if meter == nil {
		return fmt.Errorf("no meter record for %d", meterID)
	}
	row := &models.Meter{
		MeterID:     meterID,
		Location:    meter.Location,
		MaxCapacity: meter.MaxCapacity,
		Valid:       meter.Valid,
		HasMetadata: meter.HasMetadata(),
	}
	return g.db.SetMeter(row, txn)
}

func (g *GridState) mirrorReading(
	meterID uint64,
	height uint64,
	txn *database.Txn,
) error {
	reading := g.core.GetReading(meterID, height)
	if reading == nil {
		return fmt.Errorf("no reading record for %d@%d", meterID, height)
	}
	row := &models.Reading{
		MeterID:    meterID,
		Height:     height,
		Value:      reading.Value,
		ReportedBy: string(reading.ReportedBy),
		Validated:  reading.Validated,
	}
	return g.db.SetReading(row, txn)
}

func (g *GridState) mirrorOrder(orderID uint64, txn *database.Txn) error {
	order := g.core.GetTradeOrder(orderID)
	if order == nil {
		return fmt.Errorf("no order record for %d", orderID)
	}
	row := &models.TradeOrder{
		OrderID:  orderID,
		Seller:   string(order.Seller),
		Quantity: order.Quantity,
		Price:    order.Price,
		Status:   string(order.Status),
	}
	return g.db.SetTradeOrder(row, txn)
}

func (g *GridState) mirrorBalance(
	principal ledger.Principal,
	txn *database.Txn,
) error {
	row := &models.TokenBalance{
		Principal: string(principal),
		Balance:   g.core.GetBalance(principal),
	}
	return g.db.SetTokenBalance(row, txn)
}

func (g *GridState) mirrorAllParticipants(txn *database.Txn) error {
	for _, principal := range g.core.Participants() {
		if err := g.mirrorParticipant(principal, txn); err != nil {
			return err
		}
	}
	return nil
}
