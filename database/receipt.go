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

package database

import (
	"encoding/binary"
)

var receiptKeyPrefix = []byte("receipt/")

// ReceiptKey builds the journal key for a transaction sequence number.
// Big-endian encoding keeps lexicographic key order equal to commit order.
func ReceiptKey(seq uint64) []byte {
	key := make([]byte, 0, len(receiptKeyPrefix)+8)
	key = append(key, receiptKeyPrefix...)
	key = binary.BigEndian.AppendUint64(key, seq)
	return key
}

// SetReceipt appends a transaction receipt to the journal within the
// given transaction
func (d *Database) SetReceipt(seq uint64, payload []byte, txn *Txn) error {
	if txn == nil {
		txn = d.Transaction(true)
		defer txn.Commit() //nolint:errcheck
	}
	return txn.Blob().Set(ReceiptKey(seq), payload)
}

// IterateReceipts walks all journaled receipts in commit order
func (d *Database) IterateReceipts(fn func(seq uint64, payload []byte) error) error {
	return d.blob.IteratePrefix(receiptKeyPrefix, func(key, value []byte) error {
		seq := binary.BigEndian.Uint64(key[len(receiptKeyPrefix):])
		return fn(seq, value)
	})
}
