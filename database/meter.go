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

// GetMeter fetches a meter row by meter id. Returns nil without error
// when the meter is unknown.
func (d *Database) GetMeter(
	meterID uint64,
	txn *Txn,
) (*models.Meter, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	ret := &models.Meter{}
	result := txn.Metadata().Where("meter_id = ?", meterID).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetMeter creates or updates a meter row
func (d *Database) SetMeter(meter *models.Meter, txn *Txn) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Commit() //nolint:errcheck
	}
	existing := &models.Meter{}
	result := txn.Metadata().Where("meter_id = ?", meter.MeterID).First(existing)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		if err := txn.Metadata().Create(meter).Error; err != nil {
			return fmt.Errorf("failed to create meter: %w", err)
		}
		return nil
	}
	meter.ID = existing.ID
	if err := txn.Metadata().Save(meter).Error; err != nil {
		return fmt.Errorf("failed to update meter: %w", err)
	}
	return nil
}

// GetReading fetches a reading row for a meter at a height. Returns nil
// without error when absent.
func (d *Database) GetReading(
	meterID uint64,
	height uint64,
	txn *Txn,
) (*models.Reading, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	ret := &models.Reading{}
	result := txn.Metadata().
		Where("meter_id = ? AND height = ?", meterID, height).
		First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetReading creates or updates a reading row
func (d *Database) SetReading(reading *models.Reading, txn *Txn) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Commit() //nolint:errcheck
	}
	existing := &models.Reading{}
	result := txn.Metadata().
		Where("meter_id = ? AND height = ?", reading.MeterID, reading.Height).
		First(existing)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		if err := txn.Metadata().Create(reading).Error; err != nil {
			return fmt.Errorf("failed to create reading: %w", err)
		}
		return nil
	}
	reading.ID = existing.ID
	if err := txn.Metadata().Save(reading).Error; err != nil {
		return fmt.Errorf("failed to update reading: %w", err)
	}
	return nil
}
