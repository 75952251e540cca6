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

package api

type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`
}

type OkResponse struct {
	Ok bool `json:"ok"`
}

type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

type NetworkResponse struct {
	BlockHeight          uint64 `json:"block_height"`
	TotalSupply          uint64 `json:"total_supply"`
	Participants         int    `json:"participants"`
	Orders               int    `json:"orders"`
	OpenOrders           int    `json:"open_orders"`
	LastSettlementHeight uint64 `json:"last_settlement_height"`
}

type MeterIdRequest struct {
	MeterID uint64 `json:"meter_id"`
}

type ParticipantResponse struct {
	Principal         string  `json:"principal"`
	SmartMeterID      *uint64 `json:"smart_meter_id"`
	EnergyBalance     uint64  `json:"energy_balance"`
	CreditBalance     uint64  `json:"credit_balance"`
	SettlementBalance int64   `json:"settlement_balance"`
	LastMeterReading  uint64  `json:"last_meter_reading"`
	Active            bool    `json:"active"`
}

type MintRequest struct {
	Amount    uint64 `json:"amount"`
	Recipient string `json:"recipient"`
}

type TransferRequest struct {
	Amount    uint64  `json:"amount"`
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient"`
	Memo      *string `json:"memo,omitempty"`
}

type AmountRequest struct {
	Amount uint64 `json:"amount"`
}

type BalanceResponse struct {
	Principal string `json:"principal"`
	Balance   uint64 `json:"balance"`
}

type SupplyResponse struct {
	TotalSupply uint64 `json:"total_supply"`
}

type RegisterMeterRequest struct {
	MeterID     uint64 `json:"meter_id"`
	Location    string `json:"location"`
	MaxCapacity uint64 `json:"max_capacity"`
}

type MeterResponse struct {
	MeterID     uint64 `json:"meter_id"`
	Location    string `json:"location"`
	MaxCapacity uint64 `json:"max_capacity"`
	Valid       bool   `json:"valid"`
	HasMetadata bool   `json:"has_metadata"`
}

type SubmitReadingRequest struct {
	Value uint64 `json:"value"`
}

type ReadingResponse struct {
	MeterID    uint64 `json:"meter_id"`
	Height     uint64 `json:"height"`
	Value      uint64 `json:"value"`
	ReportedBy string `json:"reported_by"`
	Validated  bool   `json:"validated"`
}

type CreateOrderRequest struct {
	Quantity uint64 `json:"quantity"`
	Price    uint64 `json:"price"`
}

type OrderResponse struct {
	OrderID  uint64 `json:"order_id"`
	Seller   string `json:"seller"`
	Quantity uint64 `json:"quantity"`
	Price    uint64 `json:"price"`
	Status   string `json:"status"`
}

type SettlementResponse struct {
	Settled int `json:"settled"`
}
