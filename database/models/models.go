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

package models

// MigrateModels contains a list of model objects that should have DB migrations applied
var MigrateModels = []any{
	&Participant{},
	&Meter{},
	&Reading{},
	&TradeOrder{},
	&TokenBalance{},
	&NetworkState{},
}

// Participant mirrors a grid participant record. Rows are only ever
// written from applied ledger transactions, so they reflect committed
// state.
type Participant struct {
	ID                uint   `gorm:"primarykey"`
	Principal         string `gorm:"uniqueIndex;size:255"`
	SmartMeterID      *uint64
	EnergyBalance     uint64
	CreditBalance     uint64
	SettlementBalance int64
	LastMeterReading  uint64
	RegisteredAt      uint64 `gorm:"index"` // registration sequence, drives settlement order
	Active            bool   `gorm:"default:true"`
}

func (Participant) TableName() string {
	return "participant"
}

type Meter struct {
	ID          uint   `gorm:"primarykey"`
	MeterID     uint64 `gorm:"uniqueIndex"`
	Location    string `gorm:"size:255"`
	MaxCapacity uint64
	Valid       bool
	HasMetadata bool
}

func (Meter) TableName() string {
	return "meter"
}

type Reading struct {
	ID         uint   `gorm:"primarykey"`
	MeterID    uint64 `gorm:"index:idx_reading_meter_height,unique"`
	Height     uint64 `gorm:"index:idx_reading_meter_height,unique"`
	Value      uint64
	ReportedBy string `gorm:"size:255"`
	Validated  bool
}

func (Reading) TableName() string {
	return "reading"
}

type TradeOrder struct {
	ID       uint   `gorm:"primarykey"`
	OrderID  uint64 `gorm:"uniqueIndex"`
	Seller   string `gorm:"index;size:255"`
	Quantity uint64
	Price    uint64
	Status   string `gorm:"index;size:16"`
}

func (TradeOrder) TableName() string {
	return "trade_order"
}

type TokenBalance struct {
	ID        uint   `gorm:"primarykey"`
	Principal string `gorm:"uniqueIndex;size:255"`
	Balance   uint64
}

func (TokenBalance) TableName() string {
	return "token_balance"
}

// NetworkState is a single-row table carrying the grid-wide counters
// needed to resume from a cold start
type NetworkState struct {
	ID                   uint `gorm:"primarykey"`
	BlockHeight          uint64
	TotalSupply          uint64
	NextOrderID          uint64
	LastSettlementHeight uint64
}

func (NetworkState) TableName() string {
	return "network_state"
}
