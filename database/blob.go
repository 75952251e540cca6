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
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

// ErrBlobKeyNotFound is returned by blob operations when a key is missing
var ErrBlobKeyNotFound = errors.New("blob key not found")

// BlobStore is the append-only transaction receipt journal backed by
// Badger. Keys are ordered, so iterating the journal prefix replays
// receipts in commit order.
type BlobStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// newBlobStore creates a Badger blob store. Uses an in-memory database if
// dataDir is empty.
func newBlobStore(dataDir string, logger *slog.Logger) (*BlobStore, error) {
	var opts badger.Options
	if dataDir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Join(dataDir, "blob"))
	}
	// Badger logs through our slog logger at debug level
	opts = opts.WithLogger(newBadgerLogger(logger))
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BlobStore{db: db, logger: logger}, nil
}

// NewTransaction begins a new blob transaction
func (b *BlobStore) NewTransaction(readWrite bool) *badger.Txn {
	return b.db.NewTransaction(readWrite)
}

// Get fetches a value outside any caller transaction
func (b *BlobStore) Get(key []byte) ([]byte, error) {
	var ret []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrBlobKeyNotFound
			}
			return err
		}
		ret, err = item.ValueCopy(nil)
		return err
	})
	return ret, err
}

// IteratePrefix walks all keys with the given prefix in key order,
// invoking fn with each key and value. Returning an error from fn stops
// the iteration.
func (b *BlobStore) IteratePrefix(
	prefix []byte,
	fn func(key, value []byte) error,
) error {
	return b.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(item.KeyCopy(nil), val); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying Badger database
func (b *BlobStore) Close() error {
	return b.db.Close()
}

// badgerLogger adapts badger's logger interface to slog
type badgerLogger struct {
	logger *slog.Logger
}

func newBadgerLogger(logger *slog.Logger) *badgerLogger {
	return &badgerLogger{logger: logger.With("component", "badger")}
}

func (b *badgerLogger) Errorf(format string, args ...any) {
	b.logger.Error(badgerLogMsg(format, args...))
}

func (b *badgerLogger) Warningf(format string, args ...any) {
	b.logger.Warn(badgerLogMsg(format, args...))
}

func (b *badgerLogger) Infof(format string, args ...any) {
	b.logger.Debug(badgerLogMsg(format, args...))
}

func (b *badgerLogger) Debugf(format string, args ...any) {
	b.logger.Debug(badgerLogMsg(format, args...))
}

func badgerLogMsg(format string, args ...any) string {
	return strings.TrimSuffix(fmt.Sprintf(format, args...), "\n")
}
