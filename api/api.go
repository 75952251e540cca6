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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gridlabs-io/joule/ledger"
)

// PrincipalHeader carries the authenticated caller identity. Requests
// without it are rejected for any operation that mutates state.
const PrincipalHeader = "X-Grid-Principal"

// GridNode is the interface the API server needs from the grid runtime
type GridNode interface {
	Admin() ledger.Principal
	BlockHeight() uint64
	GetParticipantInfo(ledger.Principal) *ledger.Participant
	Participants() []ledger.Principal
	GetMeter(uint64) *ledger.Meter
	GetReading(uint64, uint64) *ledger.Reading
	GetTradeOrder(uint64) *ledger.TradeOrder
	OrderCount() int
	OpenOrderCount() int
	GetBalance(ledger.Principal) uint64
	TotalSupply() uint64
	LastSettlementHeight() uint64
	RegisterValidMeter(ledger.Principal, uint64) error
	RegisterParticipant(ledger.Principal, uint64) error
	DeactivateParticipant(ledger.Principal, ledger.Principal) error
	Mint(ledger.Principal, uint64, ledger.Principal) error
	Transfer(ledger.Principal, uint64, ledger.Principal, ledger.Principal, *string) error
	Burn(ledger.Principal, uint64) error
	RegisterMeter(ledger.Principal, uint64, string, uint64) error
	SubmitReading(ledger.Principal, uint64, uint64) error
	ValidateReading(ledger.Principal, uint64, uint64) error
	SupplyEnergy(ledger.Principal, uint64) error
	CreateTradeOrder(ledger.Principal, uint64, uint64) (uint64, error)
	ExecuteTrade(ledger.Principal, uint64) error
	CancelTradeOrder(ledger.Principal, uint64) error
	DepositCredits(ledger.Principal, uint64) error
	WithdrawCredits(ledger.Principal, uint64) error
	TriggerSettlement(ledger.Principal) (int, error)
}

type ApiConfig struct {
	ListenAddress string
}

// Api is the grid REST API server
type Api struct {
	config     ApiConfig
	logger     *slog.Logger
	node       GridNode
	httpServer *http.Server
	mu         sync.Mutex
}

func New(cfg ApiConfig, node GridNode, logger *slog.Logger) *Api {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8080"
	}
	return &Api{
		config: cfg,
		logger: logger,
		node:   node,
	}
}

// Routes returns the request mux for the API. Exposed separately so
// tests can drive handlers without a listening socket.
func (a *Api) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /v1/network", a.handleNetwork)
	mux.HandleFunc(
		"POST /v1/registry/valid-meters",
		a.handleRegisterValidMeter,
	)
	mux.HandleFunc(
		"POST /v1/registry/participants",
		a.handleRegisterParticipant,
	)
	mux.HandleFunc(
		"GET /v1/registry/participants/{principal}",
		a.handleGetParticipant,
	)
	mux.HandleFunc(
		"POST /v1/registry/participants/{principal}/deactivate",
		a.handleDeactivateParticipant,
	)
	mux.HandleFunc("POST /v1/token/mint", a.handleMint)
	mux.HandleFunc("POST /v1/token/transfer", a.handleTransfer)
	mux.HandleFunc("POST /v1/token/burn", a.handleBurn)
	mux.HandleFunc(
		"GET /v1/token/balances/{principal}",
		a.handleGetBalance,
	)
	mux.HandleFunc("GET /v1/token/supply", a.handleGetSupply)
	mux.HandleFunc("POST /v1/meters", a.handleRegisterMeter)
	mux.HandleFunc("GET /v1/meters/{id}", a.handleGetMeter)
	mux.HandleFunc(
		"POST /v1/meters/{id}/readings",
		a.handleSubmitReading,
	)
	mux.HandleFunc(
		"GET /v1/meters/{id}/readings/{height}",
		a.handleGetReading,
	)
	mux.HandleFunc(
		"POST /v1/meters/{id}/readings/{height}/validate",
		a.handleValidateReading,
	)
	mux.HandleFunc("POST /v1/grid/supply", a.handleSupplyEnergy)
	mux.HandleFunc("POST /v1/grid/orders", a.handleCreateOrder)
	mux.HandleFunc("GET /v1/grid/orders/{id}", a.handleGetOrder)
	mux.HandleFunc(
		"POST /v1/grid/orders/{id}/execute",
		a.handleExecuteTrade,
	)
	mux.HandleFunc(
		"POST /v1/grid/orders/{id}/cancel",
		a.handleCancelOrder,
	)
	mux.HandleFunc(
		"POST /v1/grid/credits/deposit",
		a.handleDepositCredits,
	)
	mux.HandleFunc(
		"POST /v1/grid/credits/withdraw",
		a.handleWithdrawCredits,
	)
	mux.HandleFunc(
		"POST /v1/grid/settlement",
		a.handleTriggerSettlement,
	)
	return mux
}

// Start starts the HTTP server in a background goroutine
func (a *Api) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.httpServer != nil {
		a.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              a.config.ListenAddress,
		Handler:           a.Routes(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	a.httpServer = server
	a.mu.Unlock()

	// Bind the socket first so port conflicts surface immediately
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		a.mu.Lock()
		a.httpServer = nil
		a.mu.Unlock()
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()

	a.logger.Info(
		"API listener started on " + a.config.ListenAddress,
	)

	go func() {
		<-ctx.Done()
		a.mu.Lock()
		srv := a.httpServer
		a.httpServer = nil
		a.mu.Unlock()
		if srv != nil {
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				30*time.Second,
			)
			defer cancel()
			//nolint:contextcheck
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error(
					"failed to shutdown API server on context cancellation",
					"error", err,
				)
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server
func (a *Api) Stop(ctx context.Context) error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.mu.Unlock()
	if srv != nil {
		a.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown API server: %w", err)
		}
	}
	return nil
}
