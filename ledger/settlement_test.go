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

func TestTriggerSettlement(t *testing.T) {
	l := newTestLedger(t)
	setupTradingPair(t, l)
	require.NoError(t, l.SupplyEnergy(testWallet1, 100))
	orderID, err := l.CreateTradeOrder(testWallet1, 50, 10)
	require.NoError(t, err)
	require.NoError(t, l.ExecuteTrade(testWallet2, orderID))

	settled, err := l.TriggerSettlement(testWallet2)
	require.NoError(t, err)
	require.Equal(t, 1, settled)

	seller := l.GetParticipantInfo(testWallet1)
	require.Equal(t, uint64(500), seller.CreditBalance)
	require.Equal(t, int64(0), seller.SettlementBalance)
}

func TestTriggerSettlementIdempotent(t *testing.T) {
	l := newTestLedger(t)
	setupTradingPair(t, l)
	require.NoError(t, l.SupplyEnergy(testWallet1, 100))
	orderID, err := l.CreateTradeOrder(testWallet1, 50, 10)
	require.NoError(t, err)
	require.NoError(t, l.ExecuteTrade(testWallet2, orderID))

	settled, err := l.TriggerSettlement(testAdmin)
	require.NoError(t, err)
	require.Equal(t, 1, settled)

	// Immediate second pass with no intervening trades is a no-op
	settled, err = l.TriggerSettlement(testAdmin)
	require.NoError(t, err)
	require.Equal(t, 0, settled)
	seller := l.GetParticipantInfo(testWallet1)
	require.Equal(t, uint64(500), seller.CreditBalance)
}

func TestTriggerSettlementEmptyLedger(t *testing.T) {
	l := newTestLedger(t)
	settled, err := l.TriggerSettlement(ledger.Principal("anyone"))
	require.NoError(t, err)
	require.Equal(t, 0, settled)
}

func TestTriggerSettlementRecordsHeight(t *testing.T) {
	l := newTestLedger(t)
	l.SetHeight(42)
	_, err := l.TriggerSettlement(testAdmin)
	require.NoError(t, err)
	require.Equal(t, uint64(42), l.LastSettlementHeight())
}

func TestCompleteTradingWorkflow(t *testing.T) {
	l := newTestLedger(t)

	// Register meters, allow-list them, register participants
	require.NoError(t, l.RegisterMeter(testAdmin, 1, "Producer Location", 100000))
	require.NoError(t, l.RegisterMeter(testAdmin, 2, "Consumer Location", 100000))
	require.NoError(t, l.RegisterValidMeter(testAdmin, 1))
	require.NoError(t, l.RegisterValidMeter(testAdmin, 2))
	require.NoError(t, l.RegisterParticipant(testWallet1, 1))
	require.NoError(t, l.RegisterParticipant(testWallet2, 2))

	// Producer reports a reading; admin validates it
	l.AdvanceBlock()
	require.NoError(t, l.SubmitReading(testWallet1, 1, 1000))
	require.NoError(t, l.ValidateReading(testAdmin, 1, l.BlockHeight()))

	// Consumer funds its grid credit balance
	require.NoError(t, l.Mint(testAdmin, 1000, testWallet2))
	require.NoError(t, l.DepositCredits(testWallet2, 1000))

	// Supply, trade, execute
	l.AdvanceBlock()
	require.NoError(t, l.SupplyEnergy(testWallet1, 100))
	orderID, err := l.CreateTradeOrder(testWallet1, 50, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(0), orderID)
	require.NoError(t, l.ExecuteTrade(testWallet2, orderID))

	// Settle
	l.AdvanceBlock()
	settled, err := l.TriggerSettlement(testAdmin)
	require.NoError(t, err)
	require.Equal(t, 1, settled)

	producer := l.GetParticipantInfo(testWallet1)
	require.Equal(t, uint64(50), producer.EnergyBalance)
	require.Equal(t, uint64(500), producer.CreditBalance)
	require.Equal(t, int64(0), producer.SettlementBalance)

	consumer := l.GetParticipantInfo(testWallet2)
	require.Equal(t, uint64(50), consumer.EnergyBalance)
	require.Equal(t, uint64(500), consumer.CreditBalance)
}
