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
	"github.com/gridlabs-io/joule/event"
)

const (
	ParticipantRegisteredEventType  event.EventType = "grid.participant.registered"
	ParticipantDeactivatedEventType event.EventType = "grid.participant.deactivated"
	MeterRegisteredEventType        event.EventType = "grid.meter.registered"
	ValidMeterRegisteredEventType   event.EventType = "grid.meter.validated"
	ReadingSubmittedEventType       event.EventType = "grid.reading.submitted"
	ReadingValidatedEventType       event.EventType = "grid.reading.validated"
	EnergySuppliedEventType         event.EventType = "grid.energy.supplied"
	OrderCreatedEventType           event.EventType = "grid.order.created"
	OrderFilledEventType            event.EventType = "grid.order.filled"
	OrderCancelledEventType         event.EventType = "grid.order.cancelled"
	TokenMintedEventType            event.EventType = "grid.token.minted"
	TokenTransferredEventType       event.EventType = "grid.token.transferred"
	TokenBurnedEventType            event.EventType = "grid.token.burned"
	CreditsDepositedEventType       event.EventType = "grid.credits.deposited"
	CreditsWithdrawnEventType       event.EventType = "grid.credits.withdrawn"
	SettlementCompletedEventType    event.EventType = "grid.settlement.completed"
	BlockEventType                  event.EventType = "grid.block.advanced"
)

type ParticipantEvent struct {
	Principal string `json:"principal"`
	MeterID   uint64 `json:"meterId,omitempty"`
}

type MeterEvent struct {
	MeterID     uint64 `json:"meterId"`
	Location    string `json:"location,omitempty"`
	MaxCapacity uint64 `json:"maxCapacity,omitempty"`
}

type ReadingEvent struct {
	MeterID   uint64 `json:"meterId"`
	Height    uint64 `json:"height"`
	Value     uint64 `json:"value,omitempty"`
	Principal string `json:"principal"`
}

type EnergyEvent struct {
	Principal string `json:"principal"`
	Amount    uint64 `json:"amount"`
}

type OrderEvent struct {
	OrderID  uint64 `json:"orderId"`
	Seller   string `json:"seller"`
	Buyer    string `json:"buyer,omitempty"`
	Quantity uint64 `json:"quantity"`
	Price    uint64 `json:"price"`
}

type TokenEvent struct {
	Amount    uint64 `json:"amount"`
	Sender    string `json:"sender,omitempty"`
	Recipient string `json:"recipient,omitempty"`
}

type CreditsEvent struct {
	Principal string `json:"principal"`
	Amount    uint64 `json:"amount"`
}

type SettlementEvent struct {
	Height  uint64 `json:"height"`
	Settled int    `json:"settled"`
}

type BlockEvent struct {
	Height uint64 `json:"height"`
}
