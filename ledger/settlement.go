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

import "math"

// TriggerSettlement reconciles pending trade proceeds into spendable
// credit. Callable by anyone: the pass is deterministic and idempotent, so
// open access cannot be abused. Participants are processed in ascending
// registration order. A negative settlement balance drains credit at most
// to zero; any remainder stays pending. Settlement only moves value already
// earned and never mints.
//
// Returns the number of participants whose balances changed; an immediate
// second call with no intervening trades returns zero.
func (l *Ledger) TriggerSettlement(caller Principal) (int, error) {
	_ = caller
	settled := 0
	for _, principal := range l.participantOrder {
		participant := l.participants[principal]
		if participant.SettlementBalance == 0 {
			continue
		}
		if participant.SettlementBalance > 0 {
			pending := uint64(participant.SettlementBalance)
			newCredit, err := checkedAdd(participant.CreditBalance, pending)
			if err != nil {
				return settled, err
			}
			participant.CreditBalance = newCredit
			participant.SettlementBalance = 0
		} else {
			// math.MinInt64 has no positive counterpart; trades can never
			// accrue it, but guard the conversion anyway
			if participant.SettlementBalance == math.MinInt64 {
				return settled, ErrAmountOverflow
			}
			owed := uint64(-participant.SettlementBalance)
			if owed > participant.CreditBalance {
				owed = participant.CreditBalance
			}
			if owed == 0 {
				// Nothing to drain; remainder stays pending for a later pass
				continue
			}
			participant.CreditBalance -= owed
			participant.SettlementBalance += int64(owed)
		}
		settled++
	}
	l.lastSettlement = l.height
	l.logger.Debug(
		"settlement pass complete",
		"component", "settlement",
		"height", l.height,
		"settled", settled,
	)
	return settled, nil
}

// LastSettlementHeight returns the block height of the most recent
// settlement pass
func (l *Ledger) LastSettlementHeight() uint64 {
	return l.lastSettlement
}
