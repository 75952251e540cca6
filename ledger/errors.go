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

import "errors"

// Every precondition failure is terminal for the transaction that hit it.
// The host surfaces the code to the submitter and discards the mutation, so
// each failure mode gets its own sentinel that maps to a stable wire code.
var (
	ErrUnauthorized           = errors.New("unauthorized")
	ErrAlreadyRegistered      = errors.New("participant already registered")
	ErrNotRegistered          = errors.New("participant not registered")
	ErrInactive               = errors.New("participant inactive")
	ErrInvalidMeter           = errors.New("meter not registered as valid")
	ErrDuplicateMeter         = errors.New("meter already registered")
	ErrUnknownMeter           = errors.New("unknown meter")
	ErrReadingExists          = errors.New("reading already exists for height")
	ErrNoValidReading         = errors.New("no valid meter reading")
	ErrReadingExceedsCapacity = errors.New("reading exceeds meter capacity")
	ErrInsufficientEnergy     = errors.New("insufficient energy balance")
	ErrInsufficientFunds      = errors.New("insufficient credit balance")
	ErrInsufficientBalance    = errors.New("insufficient token balance")
	ErrOrderNotFound          = errors.New("trade order not found")
	ErrOrderAlreadyFilled     = errors.New("trade order not open")
	ErrAmountOverflow         = errors.New("amount overflow")
)

var errorCodes = map[error]string{
	ErrUnauthorized:           "unauthorized",
	ErrAlreadyRegistered:      "already-registered",
	ErrNotRegistered:          "not-registered",
	ErrInactive:               "inactive",
	ErrInvalidMeter:           "invalid-meter",
	ErrDuplicateMeter:         "duplicate-meter",
	ErrUnknownMeter:           "unknown-meter",
	ErrReadingExists:          "reading-exists",
	ErrNoValidReading:         "no-valid-reading",
	ErrReadingExceedsCapacity: "reading-exceeds-capacity",
	ErrInsufficientEnergy:     "insufficient-energy",
	ErrInsufficientFunds:      "insufficient-funds",
	ErrInsufficientBalance:    "insufficient-balance",
	ErrOrderNotFound:          "order-not-found",
	ErrOrderAlreadyFilled:     "order-already-filled",
	ErrAmountOverflow:         "amount-overflow",
}

// ErrorCode returns the stable wire code for a ledger error, or "internal"
// for anything outside the taxonomy
func ErrorCode(err error) string {
	for sentinel, code := range errorCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return "internal"
}
