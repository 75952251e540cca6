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

package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gridlabs-io/joule/api"
	"github.com/gridlabs-io/joule/database"
	"github.com/gridlabs-io/joule/ledger"
	"github.com/gridlabs-io/joule/state"
)

const testAdmin = "deployer"

func newTestServer(t *testing.T) (*httptest.Server, *state.GridState) {
	t.Helper()
	db, err := database.New(
		&database.Config{DataDir: t.TempDir()},
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	g, err := state.NewGridState(
		state.GridStateConfig{
			Database: db,
			Admin:    ledger.Principal(testAdmin),
		},
	)
	require.NoError(t, err)
	a := api.New(api.ApiConfig{}, g, nil)
	srv := httptest.NewServer(a.Routes())
	t.Cleanup(srv.Close)
	return srv, g
}

func doRequest(
	t *testing.T,
	srv *httptest.Server,
	method string,
	path string,
	principal string,
	body any,
) *http.Response {
	t.Helper()
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &reqBody)
	require.NoError(t, err)
	if principal != "" {
		req.Header.Set(api.PrincipalHeader, principal)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() {
		resp.Body.Close()
	})
	return resp
}

func decodeResponse[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var ret T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ret))
	return ret
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doRequest(t, srv, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	health := decodeResponse[api.HealthResponse](t, resp)
	require.True(t, health.IsHealthy)
}

func TestMissingPrincipal(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doRequest(
		t,
		srv,
		http.MethodPost,
		"/v1/token/mint",
		"",
		api.MintRequest{Amount: 100, Recipient: "wallet-1"},
	)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errResp := decodeResponse[api.ErrorResponse](t, resp)
	require.Equal(t, "missing-principal", errResp.Error)
}

func TestMintUnauthorized(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doRequest(
		t,
		srv,
		http.MethodPost,
		"/v1/token/mint",
		"wallet-1",
		api.MintRequest{Amount: 100, Recipient: "wallet-1"},
	)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	errResp := decodeResponse[api.ErrorResponse](t, resp)
	require.Equal(t, "unauthorized", errResp.Error)
}

func TestRegistrationFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doRequest(
		t,
		srv,
		http.MethodPost,
		"/v1/registry/valid-meters",
		testAdmin,
		api.MeterIdRequest{MeterID: 1},
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doRequest(
		t,
		srv,
		http.MethodPost,
		"/v1/registry/participants",
		"wallet-1",
		api.MeterIdRequest{MeterID: 1},
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	// Second registration for the same principal is rejected
	resp = doRequest(
		t,
		srv,
		http.MethodPost,
		"/v1/registry/participants",
		"wallet-1",
		api.MeterIdRequest{MeterID: 1},
	)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp = doRequest(
		t,
		srv,
		http.MethodGet,
		"/v1/registry/participants/wallet-1",
		"",
		nil,
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	participant := decodeResponse[api.ParticipantResponse](t, resp)
	require.Equal(t, "wallet-1", participant.Principal)
	require.NotNil(t, participant.SmartMeterID)
	require.Equal(t, uint64(1), *participant.SmartMeterID)
	require.True(t, participant.Active)
	require.Equal(t, uint64(0), participant.EnergyBalance)
}

func TestParticipantNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doRequest(
		t,
		srv,
		http.MethodGet,
		"/v1/registry/participants/nobody",
		"",
		nil,
	)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTokenFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doRequest(
		t,
		srv,
		http.MethodPost,
		"/v1/token/mint",
		testAdmin,
		api.MintRequest{Amount: 1000, Recipient: "wallet-1"},
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doRequest(
		t,
		srv,
		http.MethodPost,
		"/v1/token/transfer",
		"wallet-1",
		api.TransferRequest{
			Amount:    300,
			Sender:    "wallet-1",
			Recipient: "wallet-2",
		},
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = doRequest(
		t,
		srv,
		http.MethodGet,
		"/v1/token/balances/wallet-2",
		"",
		nil,
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	balance := decodeResponse[api.BalanceResponse](t, resp)
	require.Equal(t, uint64(300), balance.Balance)
	resp = doRequest(
		t,
		srv,
		http.MethodGet,
		"/v1/token/supply",
		"",
		nil,
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	supply := decodeResponse[api.SupplyResponse](t, resp)
	require.Equal(t, uint64(1000), supply.TotalSupply)
}

func TestTradingFlow(t *testing.T) {
	srv, g := newTestServer(t)
	admin := ledger.Principal(testAdmin)
	require.NoError(t, g.RegisterValidMeter(admin, 1))
	require.NoError(t, g.RegisterValidMeter(admin, 2))
	require.NoError(t, g.RegisterMeter(admin, 1, "Building A", 10000))
	require.NoError(t, g.RegisterMeter(admin, 2, "Building B", 10000))
	require.NoError(t, g.RegisterParticipant("wallet-1", 1))
	require.NoError(t, g.RegisterParticipant("wallet-2", 2))
	_, err := g.AdvanceBlock()
	require.NoError(t, err)
	require.NoError(t, g.SubmitReading("wallet-1", 1, 500))
	require.NoError(t, g.ValidateReading(admin, 1, g.BlockHeight()))
	require.NoError(t, g.Mint(admin, 1000, "wallet-2"))
	require.NoError(t, g.DepositCredits("wallet-2", 1000))
	require.NoError(t, g.SupplyEnergy("wallet-1", 100))

	resp := doRequest(
		t,
		srv,
		http.MethodPost,
		"/v1/grid/orders",
		"wallet-1",
		api.CreateOrderRequest{Quantity: 50, Price: 10},
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := decodeResponse[api.OrderResponse](t, resp)
	require.Equal(t, uint64(0), order.OrderID)
	require.Equal(t, "open", order.Status)

	resp = doRequest(
		t,
		srv,
		http.MethodPost,
		"/v1/grid/orders/0/execute",
		"wallet-2",
		nil,
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(
		t,
		srv,
		http.MethodGet,
		"/v1/grid/orders/0",
		"",
		nil,
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	order = decodeResponse[api.OrderResponse](t, resp)
	require.Equal(t, "filled", order.Status)

	// A filled order cannot be executed again
	resp = doRequest(
		t,
		srv,
		http.MethodPost,
		"/v1/grid/orders/0/execute",
		"wallet-2",
		nil,
	)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doRequest(
		t,
		srv,
		http.MethodPost,
		"/v1/grid/settlement",
		"wallet-1",
		nil,
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	settlement := decodeResponse[api.SettlementResponse](t, resp)
	require.Equal(t, 1, settlement.Settled)
}

func TestOrderNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doRequest(
		t,
		srv,
		http.MethodGet,
		"/v1/grid/orders/42",
		"",
		nil,
	)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	errResp := decodeResponse[api.ErrorResponse](t, resp)
	require.Equal(t, "order-not-found", errResp.Error)
}

func TestMeterReadings(t *testing.T) {
	srv, g := newTestServer(t)
	admin := ledger.Principal(testAdmin)
	require.NoError(t, g.RegisterValidMeter(admin, 7))
	resp := doRequest(
		t,
		srv,
		http.MethodPost,
		"/v1/meters",
		testAdmin,
		api.RegisterMeterRequest{
			MeterID:     7,
			Location:    "Substation 12",
			MaxCapacity: 5000,
		},
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doRequest(
		t,
		srv,
		http.MethodPost,
		"/v1/meters/7/readings",
		"wallet-1",
		api.SubmitReadingRequest{Value: 450},
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	// Readings over the meter capacity are rejected
	resp = doRequest(
		t,
		srv,
		http.MethodPost,
		"/v1/meters/7/readings",
		"wallet-2",
		api.SubmitReadingRequest{Value: 6000},
	)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = doRequest(
		t,
		srv,
		http.MethodGet,
		"/v1/meters/7/readings/0",
		"",
		nil,
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reading := decodeResponse[api.ReadingResponse](t, resp)
	require.Equal(t, uint64(450), reading.Value)
	require.Equal(t, "wallet-1", reading.ReportedBy)
	require.False(t, reading.Validated)
	resp = doRequest(
		t,
		srv,
		http.MethodPost,
		"/v1/meters/7/readings/0/validate",
		testAdmin,
		nil,
	)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNetwork(t *testing.T) {
	srv, g := newTestServer(t)
	admin := ledger.Principal(testAdmin)
	require.NoError(t, g.Mint(admin, 500, "wallet-1"))
	_, err := g.AdvanceBlock()
	require.NoError(t, err)
	resp := doRequest(t, srv, http.MethodGet, "/v1/network", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	network := decodeResponse[api.NetworkResponse](t, resp)
	require.Equal(t, uint64(1), network.BlockHeight)
	require.Equal(t, uint64(500), network.TotalSupply)
	require.Equal(t, 0, network.Orders)
}
