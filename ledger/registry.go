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

// Participant is a grid account. Records are never deleted; deactivation
// flips Active and locks the participant out of trading entry points.
type Participant struct {
	// SmartMeterID is nil for a participant whose meter association has
	// never been made. Such a participant cannot supply energy.
	SmartMeterID *uint64
	// EnergyBalance is tradeable energy (kWh) net of open-order escrow
	EnergyBalance uint64
	// CreditBalance is the spendable token balance used to buy energy
	CreditBalance uint64
	// SettlementBalance holds net trade proceeds awaiting a settlement pass
	SettlementBalance int64
	// LastMeterReading is the block height of the last validated reading
	// reported for this participant's meter
	LastMeterReading uint64
	Active           bool
}

// Meter is a physical grid meter. Valid is managed by the registry
// (administrative allow-listing); Location and MaxCapacity are managed by
// the readings store and remain zero until RegisterMeter records them.
type Meter struct {
	Location    string
	MaxCapacity uint64
	Valid       bool
	// hasMetadata tracks whether RegisterMeter has recorded physical
	// metadata, independent of the admin validity flag
	hasMetadata bool
}

// HasMetadata reports whether physical metadata has been registered for
// the meter
func (m *Meter) HasMetadata() bool {
	return m.hasMetadata
}

// RegisterValidMeter marks a meter as valid for participant association.
// Administrative and idempotent: re-registering an already-valid meter
// succeeds without effect.
func (l *Ledger) RegisterValidMeter(caller Principal, meterID uint64) error {
	if !l.isAdmin(caller) {
		return ErrUnauthorized
	}
	meter, ok := l.meters[meterID]
	if !ok {
		meter = &Meter{}
		l.meters[meterID] = meter
	}
	meter.Valid = true
	l.logger.Debug(
		"registered valid meter",
		"component", "registry",
		"meter_id", meterID,
	)
	return nil
}

// RegisterParticipant registers the caller as a grid participant bound to
// the given meter. The meter must have been allow-listed by the
// administrator first.
func (l *Ledger) RegisterParticipant(caller Principal, meterID uint64) error {
	meter, ok := l.meters[meterID]
	if !ok || !meter.Valid {
		return ErrInvalidMeter
	}
	if _, ok := l.participants[caller]; ok {
		return ErrAlreadyRegistered
	}
	meterIDCopy := meterID
	l.participants[caller] = &Participant{
		Active:       true,
		SmartMeterID: &meterIDCopy,
	}
	l.participantOrder = append(l.participantOrder, caller)
	l.logger.Debug(
		"registered participant",
		"component", "registry",
		"principal", caller,
		"meter_id", meterID,
	)
	return nil
}

// DeactivateParticipant deactivates a participant without deleting its
// record. Administrative. Idempotent for an already-inactive participant.
func (l *Ledger) DeactivateParticipant(
	caller Principal,
	principal Principal,
) error {
	if !l.isAdmin(caller) {
		return ErrUnauthorized
	}
	participant, ok := l.participants[principal]
	if !ok {
		return ErrNotRegistered
	}
	participant.Active = false
	l.logger.Debug(
		"deactivated participant",
		"component", "registry",
		"principal", principal,
	)
	return nil
}

// GetParticipantInfo returns a copy of the participant record, or nil if
// the principal has never registered
func (l *Ledger) GetParticipantInfo(principal Principal) *Participant {
	participant, ok := l.participants[principal]
	if !ok {
		return nil
	}
	ret := *participant
	if participant.SmartMeterID != nil {
		meterID := *participant.SmartMeterID
		ret.SmartMeterID = &meterID
	}
	return &ret
}

// GetMeter returns a copy of the meter record, or nil if unknown
func (l *Ledger) GetMeter(meterID uint64) *Meter {
	meter, ok := l.meters[meterID]
	if !ok {
		return nil
	}
	ret := *meter
	return &ret
}

// Participants returns all registered principals in ascending registration
// order
func (l *Ledger) Participants() []Principal {
	ret := make([]Principal, len(l.participantOrder))
	copy(ret, l.participantOrder)
	return ret
}
