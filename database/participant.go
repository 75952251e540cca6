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

// GetParticipant fetches a participant row by principal. Returns nil
// without error when the principal has never registered.
func (d *Database) GetParticipant(
	principal string,
	txn *Txn,
) (*models.Participant, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	ret := &models.Participant{}
	result := txn.Metadata().Where("principal = ?", principal).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetParticipant creates or updates a participant row
func (d *Database) SetParticipant(
	participant *models.Participant,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Commit() //nolint:errcheck
	}
	existing := &models.Participant{}
	result := txn.Metadata().
		Where("principal = ?", participant.Principal).
		First(existing)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return result.Error
		}
		if err := txn.Metadata().Create(participant).Error; err != nil {
			return fmt.Errorf("failed to create participant: %w", err)
		}
		return nil
	}
	participant.ID = existing.ID
	if err := txn.Metadata().Save(participant).Error; err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return nil
}

// GetParticipants returns all participant rows in registration order
func (d *Database) GetParticipants(
	txn *Txn,
) ([]models.Participant, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	var ret []models.Participant
	result := txn.Metadata().Order("registered_at").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
