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

// Reading is a meter reading reported at a specific block height. Readings
// are append-only: one per meter per height, the value never changes after
// submission, only Validated may flip false to true.
type Reading struct {
	ReportedBy Principal
	Value      uint64
	Validated  bool
}

// RegisterMeter records physical metadata for a meter. This is distinct
// from the administrative validity flag: a meter can carry metadata without
// being allow-listed, and vice versa.
func (l *Ledger) RegisterMeter(
	caller Principal,
	meterID uint64,
	location string,
	maxCapacity uint64,
) error {
	_ = caller
	meter, ok := l.meters[meterID]
	if ok && meter.hasMetadata {
		return ErrDuplicateMeter
	}
	if !ok {
		meter = &Meter{}
		l.meters[meterID] = meter
	}
	meter.Location = location
	meter.MaxCapacity = maxCapacity
	meter.hasMetadata = true
	l.logger.Debug(
		"registered meter",
		"component", "meters",
		"meter_id", meterID,
		"location", location,
		"max_capacity", maxCapacity,
	)
	return nil
}

// SubmitReading records a reading for a meter at the current block height.
// At most one reading may exist per meter per height.
func (l *Ledger) SubmitReading(
	caller Principal,
	meterID uint64,
	value uint64,
) error {
	meter, ok := l.meters[meterID]
	if !ok || !meter.hasMetadata {
		return ErrUnknownMeter
	}
	if meter.MaxCapacity > 0 && value > meter.MaxCapacity {
		return ErrReadingExceedsCapacity
	}
	key := readingKey{MeterID: meterID, Height: l.height}
	if _, ok := l.readings[key]; ok {
		return ErrReadingExists
	}
	l.readings[key] = &Reading{
		Value:      value,
		ReportedBy: caller,
	}
	l.logger.Debug(
		"submitted reading",
		"component", "meters",
		"meter_id", meterID,
		"height", l.height,
		"value", value,
		"reported_by", caller,
	)
	return nil
}

// ValidateReading marks a reading as validated, making it eligible to back
// an energy supply. Administrative; idempotent for an already-validated
// reading. When the reporter is a registered participant bound to this
// meter, its LastMeterReading advances to the reading's height.
func (l *Ledger) ValidateReading(
	caller Principal,
	meterID uint64,
	height uint64,
) error {
	if !l.isAdmin(caller) {
		return ErrUnauthorized
	}
	if _, ok := l.meters[meterID]; !ok {
		return ErrUnknownMeter
	}
	reading, ok := l.readings[readingKey{MeterID: meterID, Height: height}]
	if !ok {
		return ErrNoValidReading
	}
	reading.Validated = true
	if participant, ok := l.participants[reading.ReportedBy]; ok {
		if participant.SmartMeterID != nil &&
			*participant.SmartMeterID == meterID &&
			participant.LastMeterReading < height {
			participant.LastMeterReading = height
		}
	}
	l.logger.Debug(
		"validated reading",
		"component", "meters",
		"meter_id", meterID,
		"height", height,
	)
	return nil
}

// GetReading returns a copy of the reading for a meter at a height, or nil
// if absent
func (l *Ledger) GetReading(meterID uint64, height uint64) *Reading {
	reading, ok := l.readings[readingKey{MeterID: meterID, Height: height}]
	if !ok {
		return nil
	}
	ret := *reading
	return &ret
}

// hasFreshReading reports whether the meter has a validated reading at or
// after the recency cutoff implied by the configured window
func (l *Ledger) hasFreshReading(meterID uint64) bool {
	var cutoff uint64
	if l.readingRecencyWindow > 0 && l.height > l.readingRecencyWindow {
		cutoff = l.height - l.readingRecencyWindow
	}
	for key, reading := range l.readings {
		if key.MeterID != meterID || !reading.Validated {
			continue
		}
		if key.Height >= cutoff {
			return true
		}
	}
	return false
}
