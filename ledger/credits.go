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

// DepositCredits moves tokens from the caller's token balance into its
// spendable grid credit balance. Deposited tokens are held by the grid
// until withdrawn; total supply is unchanged.
func (l *Ledger) DepositCredits(caller Principal, amount uint64) error {
	participant, ok := l.participants[caller]
	if !ok {
		return ErrNotRegistered
	}
	if !participant.Active {
		return ErrInactive
	}
	balance := l.balances[caller]
	if balance < amount {
		return ErrInsufficientBalance
	}
	newCredit, err := checkedAdd(participant.CreditBalance, amount)
	if err != nil {
		return err
	}
	l.balances[caller] = balance - amount
	participant.CreditBalance = newCredit
	l.logger.Debug(
		"deposited credits",
		"component", "trading",
		"principal", caller,
		"amount", amount,
	)
	return nil
}

// WithdrawCredits moves spendable grid credit back to the caller's token
// balance
func (l *Ledger) WithdrawCredits(caller Principal, amount uint64) error {
	participant, ok := l.participants[caller]
	if !ok {
		return ErrNotRegistered
	}
	if participant.CreditBalance < amount {
		return ErrInsufficientFunds
	}
	newBalance, err := checkedAdd(l.balances[caller], amount)
	if err != nil {
		return err
	}
	participant.CreditBalance -= amount
	l.balances[caller] = newBalance
	l.logger.Debug(
		"withdrew credits",
		"component", "trading",
		"principal", caller,
		"amount", amount,
	)
	return nil
}
