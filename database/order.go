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

package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gridlabs-io/joule/database/models"
)

// GetTradeOrder fetches a trade order row by order id. Returns nil without
// error when the id has never been issued.
func (d *Database) GetTradeOrder(
	orderID uint64,
	txn *Txn,
) (*models.TradeOrder, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	ret := &models.TradeOrder{}
	result := txn.Metadata().Where("order_id = ?", orderID).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetTradeOrder creates or updates a trade order row
func (d *Database) SetTradeOrder(order *models.TradeOrder, txn *Txn) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Commit() //nolint:errcheck
	}
	existing := &models.TradeOrder{}
	result := txn.Metadata().
		Where("order_id = ?", order.OrderID).
		First(existing)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		if err := txn.Metadata().Create(order).Error; err != nil {
			return fmt.Errorf("failed to create trade order: %w", err)
		}
		return nil
	}
	order.ID = existing.ID
	if err := txn.Metadata().Save(order).Error; err != nil {
		return fmt.Errorf("failed to update trade order: %w", err)
	}
	return nil
}

// GetTokenBalance fetches a token balance row. Returns nil without error
// for unknown principals (who implicitly hold zero).
func (d *Database) GetTokenBalance(
	principal string,
	txn *Txn,
) (*models.TokenBalance, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	ret := &models.TokenBalance{}
	result := txn.Metadata().Where("principal = ?", principal).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetTokenBalance creates or updates a token balance row
func (d *Database) SetTokenBalance(
	balance *models.TokenBalance,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Commit() //nolint:errcheck
	}
	existing := &models.TokenBalance{}
	result := txn.Metadata().
		Where("principal = ?", balance.Principal).
		First(existing)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		if err := txn.Metadata().Create(balance).Error; err != nil {
			return fmt.Errorf("failed to create token balance: %w", err)
		}
		return nil
	}
	balance.ID = existing.ID
	if err := txn.Metadata().Save(balance).Error; err != nil {
		return fmt.Errorf("failed to update token balance: %w", err)
	}
	return nil
}

// GetNetworkState fetches the single network state row, creating a zeroed
// row on first access
func (d *Database) GetNetworkState(txn *Txn) (*models.NetworkState, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	ret := &models.NetworkState{}
	result := txn.Metadata().First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return &models.NetworkState{ID: 1}, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetNetworkState updates the single network state row
func (d *Database) SetNetworkState(
	state *models.NetworkState,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Commit() //nolint:errcheck
	}
	if state.ID == 0 {
		state.ID = 1
	}
	if err := txn.Metadata().Save(state).Error; err != nil {
		return fmt.Errorf("failed to update network state: %w", err)
	}
	return nil
}
