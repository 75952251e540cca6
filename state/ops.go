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
	"github.com/gridlabs-io/joule/database"
	"github.com/gridlabs-io/joule/ledger"
)

func (g *GridState) RegisterValidMeter(
	caller ledger.Principal,
	meterID uint64,
) error {
	err := g.apply(
		OpRegisterValidMeter,
		caller,
		meterArgs{MeterID: meterID},
		func(l *ledger.Ledger) error {
			return l.RegisterValidMeter(caller, meterID)
		},
		func(txn *database.Txn) error {
			return g.mirrorMeter(meterID, txn)
		},
	)
	if err != nil {
		return err
	}
	g.publishEvent(
		ValidMeterRegisteredEventType,
		MeterEvent{MeterID: meterID},
	)
	return nil
}

func (g *GridState) RegisterParticipant(
	caller ledger.Principal,
	meterID uint64,
) error {
	err := g.apply(
		OpRegisterParticipant,
		caller,
		meterArgs{MeterID: meterID},
		func(l *ledger.Ledger) error {
			return l.RegisterParticipant(caller, meterID)
		},
		func(txn *database.Txn) error {
			return g.mirrorParticipant(caller, txn)
		},
	)
	if err != nil {
		return err
	}
	g.publishEvent(
		ParticipantRegisteredEventType,
		ParticipantEvent{Principal: string(caller), MeterID: meterID},
	)
	return nil
}

func (g *GridState) DeactivateParticipant(
	caller ledger.Principal,
	participant ledger.Principal,
) error {
	err := g.apply(
		OpDeactivateParticipant,
		caller,
		principalArgs{Principal: string(participant)},
		func(l *ledger.Ledger) error {
			return l.DeactivateParticipant(caller, participant)
		},
		func(txn *database.Txn) error {
			return g.mirrorParticipant(participant, txn)
		},
	)
	if err != nil {
		return err
	}
	g.publishEvent(
		ParticipantDeactivatedEventType,
		ParticipantEvent{Principal: string(participant)},
	)
	return nil
}

func (g *GridState) Mint(
	caller ledger.Principal,
	amount uint64,
	recipient ledger.Principal,
) error {
	err := g.apply(
		OpMint,
		caller,
		mintArgs{Amount: amount, Recipient: string(recipient)},
		func(l *ledger.Ledger) error {
			return l.Mint(caller, amount, recipient)
		},
		func(txn *database.Txn) error {
			return g.mirrorBalance(recipient, txn)
		},
	)
	if err != nil {
		return err
	}
	g.publishEvent(
		TokenMintedEventType,
		TokenEvent{Amount: amount, Recipient: string(recipient)},
	)
	return nil
}

func (g *GridState) Transfer(
	caller ledger.Principal,
	amount uint64,
	sender ledger.Principal,
	recipient ledger.Principal,
	memo *string,
) error {
	err := g.apply(
		OpTransfer,
		caller,
		transferArgs{
			Amount:    amount,
			Sender:    string(sender),
			Recipient: string(recipient),
			Memo:      memo,
		},
		func(l *ledger.Ledger) error {
			return l.Transfer(caller, amount, sender, recipient, memo)
		},
		func(txn *database.Txn) error {
			if err := g.mirrorBalance(sender, txn); err != nil {
				return err
			}
			return g.mirrorBalance(recipient, txn)
		},
	)
	if err != nil {
		return err
	}
	g.publishEvent(
		TokenTransferredEventType,
		TokenEvent{
			Amount:    amount,
			Sender:    string(sender),
			Recipient: string(recipient),
		},
	)
	return nil
}

func (g *GridState) Burn(caller ledger.Principal, amount uint64) error {
	err := g.apply(
		OpBurn,
		caller,
		amountArgs{Amount: amount},
		func(l *ledger.Ledger) error {
			return l.Burn(caller, amount)
		},
		func(txn *database.Txn) error {
			return g.mirrorBalance(caller, txn)
		},
	)
	if err != nil {
		return err
	}
	g.publishEvent(
		TokenBurnedEventType,
		TokenEvent{Amount: amount, Sender: string(caller)},
	)
	return nil
}

func (g *GridState) RegisterMeter(
	caller ledger.Principal,
	meterID uint64,
	location string,
	maxCapacity uint64,
) error {
	err := g.apply(
		OpRegisterMeter,
		caller,
		registerMeterArgs{
			MeterID:     meterID,
			Location:    location,
			MaxCapacity: maxCapacity,
		},
		func(l *ledger.Ledger) error {
			return l.RegisterMeter(caller, meterID, location, maxCapacity)
		},
		func(txn *database.Txn) error {
			return g.mirrorMeter(meterID, txn)
		},
	)
	if err != nil {
		return err
	}
	g.publishEvent(
		MeterRegisteredEventType,
		MeterEvent{
			MeterID:     meterID,
			Location:    location,
			MaxCapacity: maxCapacity,
		},
	)
	return nil
}

func (g *GridState) SubmitReading(
	caller ledger.Principal,
	meterID uint64,
	value uint64,
) error {
	// Readings are keyed by the height they were submitted at
	var readingHeight uint64
	err := g.apply(
		OpSubmitReading,
		caller,
		readingArgs{MeterID: meterID, Value: value},
		func(l *ledger.Ledger) error {
			readingHeight = l.BlockHeight()
			return l.SubmitReading(caller, meterID, value)
		},
		func(txn *database.Txn) error {
			return g.mirrorReading(meterID, readingHeight, txn)
		},
	)
	if err != nil {
		return err
	}
	g.publishEvent(
		ReadingSubmittedEventType,
		ReadingEvent{
			MeterID:   meterID,
			Height:    readingHeight,
			Value:     value,
			Principal: string(caller),
		},
	)
	return nil
}

func (g *GridState) ValidateReading(
	caller ledger.Principal,
	meterID uint64,
	height uint64,
) error {
	var reportedBy ledger.Principal
	err := g.apply(
		OpValidateReading,
		caller,
		validateReadingArgs{MeterID: meterID, Height: height},
		func(l *ledger.Ledger) error {
			if err := l.ValidateReading(caller, meterID, height); err != nil {
				return err
			}
			reportedBy = l.GetReading(meterID, height).ReportedBy
			return nil
		},
		func(txn *database.Txn) error {
			if err := g.mirrorReading(meterID, height, txn); err != nil {
				return err
			}
			// Validation can advance the reporter's last-reading marker
			if g.core.GetParticipantInfo(reportedBy) != nil {
				return g.mirrorParticipant(reportedBy, txn)
			}
			return nil
		},
	)
	if err != nil {
		return err
	}
	g.publishEvent(
		ReadingValidatedEventType,
		ReadingEvent{
			MeterID:   meterID,
			Height:    height,
			Principal: string(reportedBy),
		},
	)
	return nil
}

func (g *GridState) SupplyEnergy(
	caller ledger.Principal,
	amount uint64,
) error {
	err := g.apply(
		OpSupplyEnergy,
		caller,
		amountArgs{Amount: amount},
		func(l *ledger.Ledger) error {
			return l.SupplyEnergy(caller, amount)
		},
		func(txn *database.Txn) error {
			return g.mirrorParticipant(caller, txn)
		},
	)
	if err != nil {
		return err
	}
	g.publishEvent(
		EnergySuppliedEventType,
		EnergyEvent{Principal: string(caller), Amount: amount},
	)
	return nil
}

func (g *GridState) CreateTradeOrder(
	caller ledger.Principal,
	quantity uint64,
	price uint64,
) (uint64, error) {
	var orderID uint64
	err := g.apply(
		OpCreateTradeOrder,
		caller,
		createOrderArgs{Quantity: quantity, Price: price},
		func(l *ledger.Ledger) error {
			var err error
			orderID, err = l.CreateTradeOrder(caller, quantity, price)
			return err
		},
		func(txn *database.Txn) error {
			if err := g.mirrorOrder(orderID, txn); err != nil {
				return err
			}
			return g.mirrorParticipant(caller, txn)
		},
	)
	if err != nil {
		return 0, err
	}
	g.publishEvent(
		OrderCreatedEventType,
		OrderEvent{
			OrderID:  orderID,
			Seller:   string(caller),
			Quantity: quantity,
			Price:    price,
		},
	)
	return orderID, nil
}

func (g *GridState) ExecuteTrade(
	caller ledger.Principal,
	orderID uint64,
) error {
	var order ledger.TradeOrder
	err := g.apply(
		OpExecuteTrade,
		caller,
		orderArgs{OrderID: orderID},
		func(l *ledger.Ledger) error {
			if err := l.ExecuteTrade(caller, orderID); err != nil {
				return err
			}
			order = *l.GetTradeOrder(orderID)
			return nil
		},
		func(txn *database.Txn) error {
			if err := g.mirrorOrder(orderID, txn); err != nil {
				return err
			}
			if err := g.mirrorParticipant(caller, txn); err != nil {
				return err
			}
			return g.mirrorParticipant(order.Seller, txn)
		},
	)
	if err != nil {
		return err
	}
	g.publishEvent(
		OrderFilledEventType,
		OrderEvent{
			OrderID:  orderID,
			Seller:   string(order.Seller),
			Buyer:    string(caller),
			Quantity: order.Quantity,
			Price:    order.Price,
		},
	)
	return nil
}

func (g *GridState) CancelTradeOrder(
	caller ledger.Principal,
	orderID uint64,
) error {
	var order ledger.TradeOrder
	err := g.apply(
		OpCancelTradeOrder,
		caller,
		orderArgs{OrderID: orderID},
		func(l *ledger.Ledger) error {
			if err := l.CancelTradeOrder(caller, orderID); err != nil {
				return err
			}
			order = *l.GetTradeOrder(orderID)
			return nil
		},
		func(txn *database.Txn) error {
			if err := g.mirrorOrder(orderID, txn); err != nil {
				return err
			}
			return g.mirrorParticipant(caller, txn)
		},
	)
	if err != nil {
		return err
	}
	g.publishEvent(
		OrderCancelledEventType,
		OrderEvent{
			OrderID:  orderID,
			Seller:   string(caller),
			Quantity: order.Quantity,
			Price:    order.Price,
		},
	)
	return nil
}

func (g *GridState) DepositCredits(
	caller ledger.Principal,
	amount uint64,
) error {
	err := g.apply(
		OpDepositCredits,
		caller,
		amountArgs{Amount: amount},
		func(l *ledger.Ledger) error {
			return l.DepositCredits(caller, amount)
		},
		func(txn *database.Txn) error {
			if err := g.mirrorBalance(caller, txn); err != nil {
				return err
			}
			return g.mirrorParticipant(caller, txn)
		},
	)
	if err != nil {
		return err
	}
	g.publishEvent(
		CreditsDepositedEventType,
		CreditsEvent{Principal: string(caller), Amount: amount},
	)
	return nil
}

func (g *GridState) WithdrawCredits(
	caller ledger.Principal,
	amount uint64,
) error {
	err := g.apply(
		OpWithdrawCredits,
		caller,
		amountArgs{Amount: amount},
		func(l *ledger.Ledger) error {
			return l.WithdrawCredits(caller, amount)
		},
		func(txn *database.Txn) error {
			if err := g.mirrorBalance(caller, txn); err != nil {
				return err
			}
			return g.mirrorParticipant(caller, txn)
		},
	)
	if err != nil {
		return err
	}
	g.publishEvent(
		CreditsWithdrawnEventType,
		CreditsEvent{Principal: string(caller), Amount: amount},
	)
	return nil
}

func (g *GridState) TriggerSettlement(caller ledger.Principal) (int, error) {
	var settled int
	var height uint64
	err := g.apply(
		OpTriggerSettlement,
		caller,
		nil,
		func(l *ledger.Ledger) error {
			var err error
			settled, err = l.TriggerSettlement(caller)
			height = l.BlockHeight()
			return err
		},
		func(txn *database.Txn) error {
			return g.mirrorAllParticipants(txn)
		},
	)
	if err != nil {
		return 0, err
	}
	g.publishEvent(
		SettlementCompletedEventType,
		SettlementEvent{Height: height, Settled: settled},
	)
	return settled, nil
}
