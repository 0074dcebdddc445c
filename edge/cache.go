// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package edge

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Cache is an advisory response store keyed by request signature. Every
// read or write failure degrades to a miss: a broken cache forces re-fetch,
// never a request failure.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (or creates) the SQLite cache database at path.
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS responses (
		signature  TEXT PRIMARY KEY,
		payload    BLOB NOT NULL,
		fetched_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache: %w", err)
	}

	return &Cache{db: db}, nil
}

// Lookup returns the cached payload for a request signature.
func (cache *Cache) Lookup(signature string) ([]byte, bool) {
	var payload []byte

	err := cache.db.QueryRow(
		"SELECT payload FROM responses WHERE signature = ?", signature,
	).Scan(&payload)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Warn().Err(err).Msg("cache lookup failed, treating as miss")
		}

		return nil, false
	}

	return payload, true
}

// Store writes a payload through to the cache.
func (cache *Cache) Store(signature string, payload []byte) {
	_, err := cache.db.Exec(
		"INSERT OR REPLACE INTO responses (signature, payload, fetched_at) VALUES (?, ?, ?)",
		signature, payload, time.Now().Unix(),
	)
	if err != nil {
		log.Warn().Err(err).Msg("cache store failed")
	}
}

func (cache *Cache) Close() error {
	return cache.db.Close()
}
