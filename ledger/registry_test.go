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

const (
	testAdmin   = ledger.Principal("deployer")
	testWallet1 = ledger.Principal("wallet_1")
	testWallet2 = ledger.Principal("wallet_2")
)

func newTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	return ledger.NewLedger(ledger.LedgerConfig{
		Admin: testAdmin,
	})
}

func TestRegisterParticipant(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.RegisterValidMeter(testAdmin, 1))
	require.NoError(t, l.RegisterParticipant(testWallet1, 1))

	info := l.GetParticipantInfo(testWallet1)
	require.NotNil(t, info)
	require.True(t, info.Active)
	require.Equal(t, uint64(0), info.EnergyBalance)
	require.Equal(t, uint64(0), info.CreditBalance)
	require.Equal(t, int64(0), info.SettlementBalance)
	require.Equal(t, uint64(0), info.LastMeterReading)
	require.NotNil(t, info.SmartMeterID)
	require.Equal(t, uint64(1), *info.SmartMeterID)
}

func TestRegisterValidMeterUnauthorized(t *testing.T) {
	l := newTestLedger(t)
	err := l.RegisterValidMeter(testWallet1, 1)
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
}

func TestRegisterValidMeterIdempotent(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.RegisterValidMeter(testAdmin, 1))
	require.NoError(t, l.RegisterValidMeter(testAdmin, 1))
	meter := l.GetMeter(1)
	require.NotNil(t, meter)
	require.True(t, meter.Valid)
}

func TestRegisterParticipantInvalidMeter(t *testing.T) {
	l := newTestLedger(t)
	// Never-registered meter
	err := l.RegisterParticipant(testWallet1, 42)
	require.ErrorIs(t, err, ledger.ErrInvalidMeter)
	// Meter with metadata but no validity flag
	require.NoError(t, l.RegisterMeter(testAdmin, 42, "Location 42", 1000))
	err = l.RegisterParticipant(testWallet1, 42)
	require.ErrorIs(t, err, ledger.ErrInvalidMeter)
}

func TestRegisterParticipantTwice(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.RegisterValidMeter(testAdmin, 1))
	require.NoError(t, l.RegisterValidMeter(testAdmin, 2))
	require.NoError(t, l.RegisterParticipant(testWallet1, 1))
	err := l.RegisterParticipant(testWallet1, 2)
	require.ErrorIs(t, err, ledger.ErrAlreadyRegistered)
}

func TestGetParticipantInfoUnknown(t *testing.T) {
	l := newTestLedger(t)
	if info := l.GetParticipantInfo(testWallet1); info != nil {
		t.Fatalf("expected nil participant info, got %#v", info)
	}
}

func TestGetParticipantInfoReturnsCopy(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.RegisterValidMeter(testAdmin, 1))
	require.NoError(t, l.RegisterParticipant(testWallet1, 1))
	info := l.GetParticipantInfo(testWallet1)
	info.EnergyBalance = 9999
	*info.SmartMeterID = 7
	fresh := l.GetParticipantInfo(testWallet1)
	require.Equal(t, uint64(0), fresh.EnergyBalance)
	require.Equal(t, uint64(1), *fresh.SmartMeterID)
}

func TestDeactivateParticipant(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.RegisterValidMeter(testAdmin, 1))
	require.NoError(t, l.RegisterParticipant(testWallet1, 1))

	err := l.DeactivateParticipant(testWallet2, testWallet1)
	require.ErrorIs(t, err, ledger.ErrUnauthorized)

	require.NoError(t, l.DeactivateParticipant(testAdmin, testWallet1))
	info := l.GetParticipantInfo(testWallet1)
	require.NotNil(t, info)
	require.False(t, info.Active)

	// Record survives deactivation
	err = l.SupplyEnergy(testWallet1, 10)
	require.ErrorIs(t, err, ledger.ErrInactive)
}

func TestParticipantsRegistrationOrder(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.RegisterValidMeter(testAdmin, 1))
	require.NoError(t, l.RegisterValidMeter(testAdmin, 2))
	require.NoError(t, l.RegisterParticipant(testWallet2, 2))
	require.NoError(t, l.RegisterParticipant(testWallet1, 1))
	require.Equal(
		t,
		[]ledger.Principal{testWallet2, testWallet1},
		l.Participants(),
	)
}
