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

// Mint creates new energy credits for a recipient. Administrative. Total
// supply and the recipient balance both grow by amount; overflow fails the
// transaction rather than wrapping.
func (l *Ledger) Mint(caller Principal, amount uint64, recipient Principal) error {
	if !l.isAdmin(caller) {
		return ErrUnauthorized
	}
	newSupply, err := checkedAdd(l.totalSupply, amount)
	if err != nil {
		return err
	}
	newBalance, err := checkedAdd(l.balances[recipient], amount)
	if err != nil {
		return err
	}
	l.totalSupply = newSupply
	l.balances[recipient] = newBalance
	l.logger.Debug(
		"minted tokens",
		"component", "token",
		"amount", amount,
		"recipient", recipient,
	)
	return nil
}

// Transfer moves energy credits from sender to recipient. The caller must
// be the sender; the sender+recipient sum is conserved. The memo is opaque
// passthrough recorded by the host binding, with no semantic effect here.
func (l *Ledger) Transfer(
	caller Principal,
	amount uint64,
	sender Principal,
	recipient Principal,
	memo *string,
) error {
	_ = memo
	if caller != sender {
		return ErrUnauthorized
	}
	senderBalance := l.balances[sender]
	if senderBalance < amount {
		return ErrInsufficientBalance
	}
	if sender == recipient {
		// Self-transfer conserves trivially
		return nil
	}
	newRecipient, err := checkedAdd(l.balances[recipient], amount)
	if err != nil {
		return err
	}
	l.balances[sender] = senderBalance - amount
	l.balances[recipient] = newRecipient
	l.logger.Debug(
		"transferred tokens",
		"component", "token",
		"amount", amount,
		"sender", sender,
		"recipient", recipient,
	)
	return nil
}

// Burn destroys energy credits from the caller's own balance, shrinking
// total supply
func (l *Ledger) Burn(caller Principal, amount uint64) error {
	balance := l.balances[caller]
	if balance < amount {
		return ErrInsufficientBalance
	}
	l.balances[caller] = balance - amount
	l.totalSupply -= amount
	l.logger.Debug(
		"burned tokens",
		"component", "token",
		"amount", amount,
		"principal", caller,
	)
	return nil
}

// GetBalance returns the token balance for a principal. Unknown principals
// hold zero; this is never an error.
func (l *Ledger) GetBalance(principal Principal) uint64 {
	return l.balances[principal]
}

// TotalSupply returns the total minted-minus-burned token supply
func (l *Ledger) TotalSupply() uint64 {
	return l.totalSupply
}
