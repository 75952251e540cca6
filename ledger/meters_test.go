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

package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridlabs-io/joule/ledger"
)

func TestRegisterMeterAndSubmitReading(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.RegisterMeter(testAdmin, 1, "Location 1", 100000))
	l.SetHeight(2)
	require.NoError(t, l.SubmitReading(testAdmin, 1, 1000))

	reading := l.GetReading(1, 2)
	require.NotNil(t, reading)
	require.Equal(t, uint64(1000), reading.Value)
	require.False(t, reading.Validated)
	require.Equal(t, testAdmin, reading.ReportedBy)
}

func TestRegisterMeterDuplicate(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.RegisterMeter(testAdmin, 1, "Location 1", 100000))
	err := l.RegisterMeter(testAdmin, 1, "Location 1b", 200000)
	require.ErrorIs(t, err, ledger.ErrDuplicateMeter)
	meter := l.GetMeter(1)
	require.NotNil(t, meter)
	require.Equal(t, "Location 1", meter.Location)
}

func TestRegisterMeterAfterValidityFlag(t *testing.T) {
	l := newTestLedger(t)
	// Validity flag and physical metadata are separate registrations on
	// the same meter record
	require.NoError(t, l.RegisterValidMeter(testAdmin, 1))
	require.NoError(t, l.RegisterMeter(testAdmin, 1, "Location 1", 100000))
	meter := l.GetMeter(1)
	require.True(t, meter.Valid)
	require.Equal(t, uint64(100000), meter.MaxCapacity)
}

func TestSubmitReadingUnknownMeter(t *testing.T) {
	l := newTestLedger(t)
	err := l.SubmitReading(testWallet1, 9, 1000)
	require.ErrorIs(t, err, ledger.ErrUnknownMeter)

	// A meter with only the validity flag has no metadata yet
	require.NoError(t, l.RegisterValidMeter(testAdmin, 9))
	err = l.SubmitReading(testWallet1, 9, 1000)
	require.ErrorIs(t, err, ledger.ErrUnknownMeter)
}

func TestSubmitReadingDuplicateHeight(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.RegisterMeter(testAdmin, 1, "Location 1", 100000))
	l.SetHeight(5)
	require.NoError(t, l.SubmitReading(testWallet1, 1, 1000))
	err := l.SubmitReading(testWallet1, 1, 1001)
	require.ErrorIs(t, err, ledger.ErrReadingExists)
	// One reading per meter per height; next block accepts again
	l.AdvanceBlock()
	require.NoError(t, l.SubmitReading(testWallet1, 1, 1001))
}

func TestSubmitReadingExceedsCapacity(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.RegisterMeter(testAdmin, 1, "Location 1", 500))
	err := l.SubmitReading(testWallet1, 1, 501)
	require.ErrorIs(t, err, ledger.ErrReadingExceedsCapacity)
	require.NoError(t, l.SubmitReading(testWallet1, 1, 500))
}

func TestGetReadingAbsent(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.RegisterMeter(testAdmin, 1, "Location 1", 100000))
	if reading := l.GetReading(1, 99); reading != nil {
		t.Fatalf("expected nil reading, got %#v", reading)
	}
}

func TestValidateReading(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.RegisterValidMeter(testAdmin, 1))
	require.NoError(t, l.RegisterMeter(testAdmin, 1, "Location 1", 100000))
	require.NoError(t, l.RegisterParticipant(testWallet1, 1))
	l.SetHeight(3)
	require.NoError(t, l.SubmitReading(testWallet1, 1, 1000))

	err := l.ValidateReading(testWallet1, 1, 3)
	require.ErrorIs(t, err, ledger.ErrUnauthorized)

	require.NoError(t, l.ValidateReading(testAdmin, 1, 3))
	reading := l.GetReading(1, 3)
	require.True(t, reading.Validated)
	// Value is immutable across validation
	require.Equal(t, uint64(1000), reading.Value)
	// Reporter's participant record tracks the validated height
	info := l.GetParticipantInfo(testWallet1)
	require.Equal(t, uint64(3), info.LastMeterReading)

	// Idempotent
	require.NoError(t, l.ValidateReading(testAdmin, 1, 3))
}

func TestValidateReadingErrors(t *testing.T) {
	l := newTestLedger(t)
	err := l.ValidateReading(testAdmin, 7, 0)
	require.ErrorIs(t, err, ledger.ErrUnknownMeter)

	require.NoError(t, l.RegisterMeter(testAdmin, 7, "Location 7", 100000))
	err = l.ValidateReading(testAdmin, 7, 12)
	require.ErrorIs(t, err, ledger.ErrNoValidReading)
}
