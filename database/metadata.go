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
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/gridlabs-io/joule/database/models"
)

// MetadataStore holds the relational entity tables (participants, meters,
// readings, orders, balances) backed by SQLite
type MetadataStore struct {
	db      *gorm.DB
	logger  *slog.Logger
	dataDir string
}

// newMetadataStore creates a SQLite metadata store. Uses an in-memory
// database if dataDir is empty.
func newMetadataStore(
	dataDir string,
	logger *slog.Logger,
) (*MetadataStore, error) {
	var metadataDb *gorm.DB
	var err error
	if dataDir == "" {
		// Use in-memory database when no data directory is specified, useful for testing
		// cache=shared allows multiple connections to share the same in-memory database
		metadataDb, err = gorm.Open(
			sqlite.Open("file::memory:?cache=shared"),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
		if err != nil {
			return nil, err
		}
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(dataDir, fs.ModePerm); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		metadataDbPath := filepath.Join(dataDir, "metadata.sqlite")
		// WAL journal mode, disable sync on write
		metadataConnOpts := "_pragma=journal_mode(WAL)&_pragma=sync(OFF)"
		metadataDb, err = gorm.Open(
			sqlite.Open(
				fmt.Sprintf("file:%s?%s", metadataDbPath, metadataConnOpts),
			),
			&gorm.Config{
				Logger:                 gormlogger.Discard,
				SkipDefaultTransaction: true,
			},
		)
		if err != nil {
			return nil, err
		}
	}
	store := &MetadataStore{
		db:      metadataDb,
		dataDir: dataDir,
		logger:  logger,
	}
	// Configure tracing for GORM
	if err := store.db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}
	// Create table schemas
	for _, model := range models.MigrateModels {
		if err := store.db.AutoMigrate(model); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// DB returns the underlying gorm handle
func (m *MetadataStore) DB() *gorm.DB {
	return m.db
}

// Transaction begins a new metadata transaction
func (m *MetadataStore) Transaction() *gorm.DB {
	return m.db.Begin()
}

// Close closes the underlying SQLite connection
func (m *MetadataStore) Close() error {
	sqlDb, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDb.Close()
}
