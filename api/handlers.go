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

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gridlabs-io/joule/ledger"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(
	w http.ResponseWriter,
	status int,
	errStr string,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      errStr,
		Message:    message,
	})
}

// writeLedgerError maps a rejected transaction onto an HTTP status via
// the ledger's stable error codes
func writeLedgerError(w http.ResponseWriter, err error) {
	code := ledger.ErrorCode(err)
	status := http.StatusBadRequest
	switch code {
	case "unauthorized":
		status = http.StatusForbidden
	case "order-not-found", "unknown-meter", "not-registered":
		status = http.StatusNotFound
	case "already-registered", "duplicate-meter", "reading-exists",
		"order-already-filled":
		status = http.StatusConflict
	case "internal":
		status = http.StatusInternalServerError
	}
	writeError(w, status, code, err.Error())
}

// caller resolves the authenticated principal from the request headers.
// Writes the error response itself when the header is missing.
func (a *Api) caller(
	w http.ResponseWriter,
	r *http.Request,
) (ledger.Principal, bool) {
	principal := r.Header.Get(PrincipalHeader)
	if principal == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"missing-principal",
			"missing "+PrincipalHeader+" header",
		)
		return "", false
	}
	return ledger.Principal(principal), true
}

// pathUint parses a numeric path segment. Writes the error response
// itself on a malformed value.
func pathUint(
	w http.ResponseWriter,
	r *http.Request,
	name string,
) (uint64, bool) {
	val, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"invalid-path-value",
			"invalid "+name+" in path",
		)
		return 0, false
	}
	return val, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"invalid-body",
			"invalid request body",
		)
		return false
	}
	return true
}

func (a *Api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{IsHealthy: true})
}

func (a *Api) handleNetwork(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, NetworkResponse{
		BlockHeight:          a.node.BlockHeight(),
		TotalSupply:          a.node.TotalSupply(),
		Participants:         len(a.node.Participants()),
		Orders:               a.node.OrderCount(),
		OpenOrders:           a.node.OpenOrderCount(),
		LastSettlementHeight: a.node.LastSettlementHeight(),
	})
}

func (a *Api) handleRegisterValidMeter(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	var req MeterIdRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := a.node.RegisterValidMeter(caller, req.MeterID); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OkResponse{Ok: true})
}

func (a *Api) handleRegisterParticipant(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	var req MeterIdRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := a.node.RegisterParticipant(caller, req.MeterID); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, OkResponse{Ok: true})
}

func (a *Api) handleGetParticipant(
	w http.ResponseWriter,
	r *http.Request,
) {
	principal := ledger.Principal(r.PathValue("principal"))
	participant := a.node.GetParticipantInfo(principal)
	if participant == nil {
		writeError(
			w,
			http.StatusNotFound,
			"not-registered",
			"unknown participant",
		)
		return
	}
	writeJSON(w, http.StatusOK, ParticipantResponse{
		Principal:         string(principal),
		SmartMeterID:      participant.SmartMeterID,
		EnergyBalance:     participant.EnergyBalance,
		CreditBalance:     participant.CreditBalance,
		SettlementBalance: participant.SettlementBalance,
		LastMeterReading:  participant.LastMeterReading,
		Active:            participant.Active,
	})
}

func (a *Api) handleDeactivateParticipant(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	principal := ledger.Principal(r.PathValue("principal"))
	if err := a.node.DeactivateParticipant(caller, principal); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OkResponse{Ok: true})
}

func (a *Api) handleMint(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	var req MintRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := a.node.Mint(caller, req.Amount, ledger.Principal(req.Recipient))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OkResponse{Ok: true})
}

func (a *Api) handleTransfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	var req TransferRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := a.node.Transfer(
		caller,
		req.Amount,
		ledger.Principal(req.Sender),
		ledger.Principal(req.Recipient),
		req.Memo,
	)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OkResponse{Ok: true})
}

func (a *Api) handleBurn(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	var req AmountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := a.node.Burn(caller, req.Amount); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OkResponse{Ok: true})
}

func (a *Api) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	principal := r.PathValue("principal")
	writeJSON(w, http.StatusOK, BalanceResponse{
		Principal: principal,
		Balance:   a.node.GetBalance(ledger.Principal(principal)),
	})
}

func (a *Api) handleGetSupply(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SupplyResponse{
		TotalSupply: a.node.TotalSupply(),
	})
}

func (a *Api) handleRegisterMeter(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	var req RegisterMeterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := a.node.RegisterMeter(
		caller,
		req.MeterID,
		req.Location,
		req.MaxCapacity,
	)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, OkResponse{Ok: true})
}

func (a *Api) handleGetMeter(w http.ResponseWriter, r *http.Request) {
	meterID, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	meter := a.node.GetMeter(meterID)
	if meter == nil {
		writeError(
			w,
			http.StatusNotFound,
			"unknown-meter",
			"unknown meter",
		)
		return
	}
	writeJSON(w, http.StatusOK, MeterResponse{
		MeterID:     meterID,
		Location:    meter.Location,
		MaxCapacity: meter.MaxCapacity,
		Valid:       meter.Valid,
		HasMetadata: meter.HasMetadata(),
	})
}

func (a *Api) handleSubmitReading(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	meterID, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	var req SubmitReadingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := a.node.SubmitReading(caller, meterID, req.Value); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, OkResponse{Ok: true})
}

func (a *Api) handleGetReading(w http.ResponseWriter, r *http.Request) {
	meterID, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	height, ok := pathUint(w, r, "height")
	if !ok {
		return
	}
	reading := a.node.GetReading(meterID, height)
	if reading == nil {
		writeError(
			w,
			http.StatusNotFound,
			"no-valid-reading",
			"no reading at that height",
		)
		return
	}
	writeJSON(w, http.StatusOK, ReadingResponse{
		MeterID:    meterID,
		Height:     height,
		Value:      reading.Value,
		ReportedBy: string(reading.ReportedBy),
		Validated:  reading.Validated,
	})
}

func (a *Api) handleValidateReading(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	meterID, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	height, ok := pathUint(w, r, "height")
	if !ok {
		return
	}
	if err := a.node.ValidateReading(caller, meterID, height); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OkResponse{Ok: true})
}

func (a *Api) handleSupplyEnergy(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	var req AmountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := a.node.SupplyEnergy(caller, req.Amount); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OkResponse{Ok: true})
}

func (a *Api) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	orderID, err := a.node.CreateTradeOrder(caller, req.Quantity, req.Price)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, OrderResponse{
		OrderID:  orderID,
		Seller:   string(caller),
		Quantity: req.Quantity,
		Price:    req.Price,
		Status:   string(ledger.OrderStatusOpen),
	})
}

func (a *Api) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	order := a.node.GetTradeOrder(orderID)
	if order == nil {
		writeError(
			w,
			http.StatusNotFound,
			"order-not-found",
			"unknown order",
		)
		return
	}
	writeJSON(w, http.StatusOK, OrderResponse{
		OrderID:  orderID,
		Seller:   string(order.Seller),
		Quantity: order.Quantity,
		Price:    order.Price,
		Status:   string(order.Status),
	})
}

func (a *Api) handleExecuteTrade(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	orderID, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	if err := a.node.ExecuteTrade(caller, orderID); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OkResponse{Ok: true})
}

func (a *Api) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	orderID, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	if err := a.node.CancelTradeOrder(caller, orderID); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OkResponse{Ok: true})
}

func (a *Api) handleDepositCredits(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	var req AmountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := a.node.DepositCredits(caller, req.Amount); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OkResponse{Ok: true})
}

func (a *Api) handleWithdrawCredits(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	var req AmountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := a.node.WithdrawCredits(caller, req.Amount); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OkResponse{Ok: true})
}

func (a *Api) handleTriggerSettlement(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := a.caller(w, r)
	if !ok {
		return
	}
	settled, err := a.node.TriggerSettlement(caller)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SettlementResponse{Settled: settled})
}
