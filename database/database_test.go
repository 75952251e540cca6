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

package database_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridlabs-io/joule/database"
	"github.com/gridlabs-io/joule/database/models"
)

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{
		DataDir: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestParticipantRoundTrip(t *testing.T) {
	db := newTestDatabase(t)
	meterID := uint64(1)
	err := db.SetParticipant(&models.Participant{
		Principal:    "wallet_1",
		Active:       true,
		SmartMeterID: &meterID,
		RegisteredAt: 1,
	}, nil)
	require.NoError(t, err)

	participant, err := db.GetParticipant("wallet_1", nil)
	require.NoError(t, err)
	require.NotNil(t, participant)
	require.True(t, participant.Active)
	require.NotNil(t, participant.SmartMeterID)
	require.Equal(t, uint64(1), *participant.SmartMeterID)

	// Update in place
	participant.EnergyBalance = 100
	require.NoError(t, db.SetParticipant(participant, nil))
	participant, err = db.GetParticipant("wallet_1", nil)
	require.NoError(t, err)
	require.Equal(t, uint64(100), participant.EnergyBalance)

	// Unknown principal is nil, not an error
	missing, err := db.GetParticipant("nobody", nil)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestParticipantsOrderedByRegistration(t *testing.T) {
	db := newTestDatabase(t)
	for i, principal := range []string{"wallet_3", "wallet_1", "wallet_2"} {
		err := db.SetParticipant(&models.Participant{
			Principal:    principal,
			Active:       true,
			RegisteredAt: uint64(i + 1),
		}, nil)
		require.NoError(t, err)
	}
	participants, err := db.GetParticipants(nil)
	require.NoError(t, err)
	require.Len(t, participants, 3)
	require.Equal(t, "wallet_3", participants[0].Principal)
	require.Equal(t, "wallet_1", participants[1].Principal)
	require.Equal(t, "wallet_2", participants[2].Principal)
}

func TestTxnRollback(t *testing.T) {
	db := newTestDatabase(t)
	txn := db.Transaction(true)
	err := db.SetMeter(&models.Meter{
		MeterID:     7,
		Location:    "Location 7",
		MaxCapacity: 1000,
		Valid:       true,
	}, txn)
	require.NoError(t, err)
	require.NoError(t, txn.Rollback())

	meter, err := db.GetMeter(7, nil)
	require.NoError(t, err)
	require.Nil(t, meter)
}

func TestTxnDoCommitsOnSuccess(t *testing.T) {
	db := newTestDatabase(t)
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		return db.SetTokenBalance(&models.TokenBalance{
			Principal: "wallet_1",
			Balance:   1000,
		}, txn)
	})
	require.NoError(t, err)
	balance, err := db.GetTokenBalance("wallet_1", nil)
	require.NoError(t, err)
	require.NotNil(t, balance)
	require.Equal(t, uint64(1000), balance.Balance)
}

func TestTxnDoRollsBackOnError(t *testing.T) {
	db := newTestDatabase(t)
	boom := errors.New("boom")
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := db.SetTokenBalance(&models.TokenBalance{
			Principal: "wallet_1",
			Balance:   1000,
		}, txn); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	balance, err := db.GetTokenBalance("wallet_1", nil)
	require.NoError(t, err)
	require.Nil(t, balance)
}

func TestReceiptJournalOrder(t *testing.T) {
	db := newTestDatabase(t)
	payloads := [][]byte{
		[]byte(`{"op":"mint"}`),
		[]byte(`{"op":"transfer"}`),
		[]byte(`{"op":"supply-energy"}`),
	}
	for i, payload := range payloads {
		err := db.Transaction(true).Do(func(txn *database.Txn) error {
			return db.SetReceipt(uint64(i), payload, txn)
		})
		require.NoError(t, err)
	}
	var got [][]byte
	var seqs []uint64
	err := db.IterateReceipts(func(seq uint64, payload []byte) error {
		seqs = append(seqs, seq)
		got = append(got, payload)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 1, 2}, seqs)
	require.Equal(t, payloads, got)
}

func TestReadingUniquePerMeterHeight(t *testing.T) {
	db := newTestDatabase(t)
	err := db.SetReading(&models.Reading{
		MeterID:    1,
		Height:     5,
		Value:      1000,
		ReportedBy: "wallet_1",
	}, nil)
	require.NoError(t, err)

	// Same key updates rather than duplicating
	err = db.SetReading(&models.Reading{
		MeterID:    1,
		Height:     5,
		Value:      1000,
		ReportedBy: "wallet_1",
		Validated:  true,
	}, nil)
	require.NoError(t, err)

	reading, err := db.GetReading(1, 5, nil)
	require.NoError(t, err)
	require.NotNil(t, reading)
	require.True(t, reading.Validated)
}

func TestNetworkStateDefaults(t *testing.T) {
	db := newTestDatabase(t)
	state, err := db.GetNetworkState(nil)
	require.NoError(t, err)
	require.Equal(t, uint64(0), state.BlockHeight)

	state.BlockHeight = 10
	state.TotalSupply = 5000
	state.NextOrderID = 2
	require.NoError(t, db.SetNetworkState(state, nil))

	state, err = db.GetNetworkState(nil)
	require.NoError(t, err)
	require.Equal(t, uint64(10), state.BlockHeight)
	require.Equal(t, uint64(5000), state.TotalSupply)
	require.Equal(t, uint64(2), state.NextOrderID)
}

func TestInMemoryDatabase(t *testing.T) {
	db, err := database.New(nil)
	require.NoError(t, err)
	defer db.Close()
	require.Equal(t, "", db.DataDir())
	err = db.SetMeter(&models.Meter{MeterID: 1, Valid: true}, nil)
	require.NoError(t, err)
	meter, err := db.GetMeter(1, nil)
	require.NoError(t, err)
	require.NotNil(t, meter)
	require.True(t, meter.Valid)
}
