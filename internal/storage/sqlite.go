// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// sessionSchema holds the three flat keys, one row each.
const sessionSchema = `
CREATE TABLE IF NOT EXISTS session_kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;
`

// touchSQL only writes lastActivity while a token row exists.
const touchSQL = `
INSERT INTO session_kv (key, value)
SELECT ?, ? WHERE EXISTS (SELECT 1 FROM session_kv WHERE key = ? AND value <> '')
ON CONFLICT(key) DO UPDATE SET value = excluded.value
`

// =============================================================================
// SQLITE STORE
// =============================================================================

// SQLiteStore persists the session in a local SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, unavailable("create directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable("open", err)
	}

	// SQLite supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, unavailable("configure", fmt.Errorf("%s: %w", pragma, err))
		}
	}

	if _, err := db.Exec(sessionSchema); err != nil {
		db.Close()
		return nil, unavailable("schema", err)
	}

	// The token is a bearer credential; keep the file owner-only.
	if path != ":memory:" {
		_ = os.Chmod(path, 0600)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM session_kv")
	if err != nil {
		return Record{}, unavailable("load", err)
	}
	defer rows.Close()

	m := make(map[string]string, len(Keys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Record{}, unavailable("load", err)
		}
		m[k] = v
	}
	if err := rows.Err(); err != nil {
		return Record{}, unavailable("load", err)
	}
	return recordFromMap(m), nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("save", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM session_kv"); err != nil {
		return unavailable("save", err)
	}
	for k, v := range recordToMap(rec) {
		if _, err := tx.ExecContext(ctx, "INSERT INTO session_kv (key, value) VALUES (?, ?)", k, v); err != nil {
			return unavailable("save", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return unavailable("save", err)
	}
	return nil
}

func (s *SQLiteStore) Touch(ctx context.Context, at time.Time) error {
	res, err := s.db.ExecContext(ctx, touchSQL, KeyLastActivity, FormatMillis(at), KeyAuthToken)
	if err != nil {
		return unavailable("touch", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("touch", err)
	}
	if n == 0 {
		return ErrNoSession
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session_kv"); err != nil {
		return unavailable("clear", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Describe() string { return "sqlite:" + s.path }
