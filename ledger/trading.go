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

import "math"

// OrderStatus is the lifecycle state of a trade order
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// TradeOrder is a fixed-price offer of energy. The offered quantity is
// escrowed out of the seller's energy balance while the order is open and
// returns only via cancellation. Filled and cancelled are terminal.
type TradeOrder struct {
	Seller   Principal
	Quantity uint64
	Price    uint64
	Status   OrderStatus
}

// SupplyEnergy credits generated energy to the caller's tradeable balance.
// The caller must be an active participant whose smart meter has a
// validated reading within the recency window.
func (l *Ledger) SupplyEnergy(caller Principal, amount uint64) error {
	participant, ok := l.participants[caller]
	if !ok {
		return ErrNotRegistered
	}
	if !participant.Active {
		return ErrInactive
	}
	if participant.SmartMeterID == nil {
		return ErrNoValidReading
	}
	if !l.hasFreshReading(*participant.SmartMeterID) {
		return ErrNoValidReading
	}
	newBalance, err := checkedAdd(participant.EnergyBalance, amount)
	if err != nil {
		return err
	}
	participant.EnergyBalance = newBalance
	l.logger.Debug(
		"supplied energy",
		"component", "trading",
		"principal", caller,
		"amount", amount,
	)
	return nil
}

// CreateTradeOrder opens a fixed-price sell order, escrowing the offered
// quantity out of the seller's energy balance. Order ids are sequential
// starting at zero. Returns the new order's id.
func (l *Ledger) CreateTradeOrder(
	caller Principal,
	quantity uint64,
	price uint64,
) (uint64, error) {
	participant, ok := l.participants[caller]
	if !ok {
		return 0, ErrNotRegistered
	}
	if !participant.Active {
		return 0, ErrInactive
	}
	if participant.EnergyBalance < quantity {
		return 0, ErrInsufficientEnergy
	}
	participant.EnergyBalance -= quantity
	orderID := uint64(len(l.orders))
	l.orders = append(l.orders, &TradeOrder{
		Seller:   caller,
		Quantity: quantity,
		Price:    price,
		Status:   OrderStatusOpen,
	})
	l.logger.Debug(
		"created trade order",
		"component", "trading",
		"order_id", orderID,
		"seller", caller,
		"quantity", quantity,
		"price", price,
	)
	return orderID, nil
}

// ExecuteTrade fills an open order. The buyer pays quantity*price from its
// credit balance and receives the escrowed energy; the proceeds accrue to
// the seller's settlement balance rather than its spendable balance, so a
// later settlement pass can reconcile them.
func (l *Ledger) ExecuteTrade(caller Principal, orderID uint64) error {
	buyer, ok := l.participants[caller]
	if !ok {
		return ErrNotRegistered
	}
	if !buyer.Active {
		return ErrInactive
	}
	if orderID >= uint64(len(l.orders)) {
		return ErrOrderNotFound
	}
	order := l.orders[orderID]
	if order.Status != OrderStatusOpen {
		return ErrOrderAlreadyFilled
	}
	cost, err := checkedMul(order.Quantity, order.Price)
	if err != nil {
		return err
	}
	if cost > math.MaxInt64 {
		return ErrAmountOverflow
	}
	if buyer.CreditBalance < cost {
		return ErrInsufficientFunds
	}
	seller, ok := l.participants[order.Seller]
	if !ok {
		// Orders only exist for registered participants and records are
		// never deleted
		return ErrOrderNotFound
	}
	newEnergy, err := checkedAdd(buyer.EnergyBalance, order.Quantity)
	if err != nil {
		return err
	}
	if seller.SettlementBalance > math.MaxInt64-int64(cost) {
		return ErrAmountOverflow
	}
	buyer.CreditBalance -= cost
	buyer.EnergyBalance = newEnergy
	seller.SettlementBalance += int64(cost)
	order.Status = OrderStatusFilled
	l.logger.Debug(
		"executed trade",
		"component", "trading",
		"order_id", orderID,
		"buyer", caller,
		"seller", order.Seller,
		"cost", cost,
	)
	return nil
}

// CancelTradeOrder cancels an open order, returning the escrowed quantity
// to the seller. Only the original seller may cancel.
func (l *Ledger) CancelTradeOrder(caller Principal, orderID uint64) error {
	if orderID >= uint64(len(l.orders)) {
		return ErrOrderNotFound
	}
	order := l.orders[orderID]
	if order.Seller != caller {
		return ErrUnauthorized
	}
	if order.Status != OrderStatusOpen {
		return ErrOrderAlreadyFilled
	}
	seller := l.participants[order.Seller]
	newBalance, err := checkedAdd(seller.EnergyBalance, order.Quantity)
	if err != nil {
		return err
	}
	seller.EnergyBalance = newBalance
	order.Status = OrderStatusCancelled
	l.logger.Debug(
		"cancelled trade order",
		"component", "trading",
		"order_id", orderID,
		"seller", caller,
	)
	return nil
}

// GetTradeOrder returns a copy of the order, or nil if the id has never
// been issued
func (l *Ledger) GetTradeOrder(orderID uint64) *TradeOrder {
	if orderID >= uint64(len(l.orders)) {
		return nil
	}
	ret := *l.orders[orderID]
	return &ret
}

// OpenOrderCount returns the number of currently open orders
func (l *Ledger) OpenOrderCount() int {
	count := 0
	for _, order := range l.orders {
		if order.Status == OrderStatusOpen {
			count++
		}
	}
	return count
}

// OrderCount returns the total number of orders ever created
func (l *Ledger) OrderCount() int {
	return len(l.orders)
}
