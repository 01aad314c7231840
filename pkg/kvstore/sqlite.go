// Package kvstore provides durable layout preference backends.
package kvstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	layout "github.com/cubeos/go-layout/components/layout"
)

const schema = `CREATE TABLE IF NOT EXISTS layout_prefs (
	mode  TEXT NOT NULL,
	key   TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
	PRIMARY KEY (mode, key)
);`

// SQLiteBackend persists layout fields in a local SQLite database, one row
// per (mode, field).
type SQLiteBackend struct {
	db *sql.DB
}

var _ layout.Backend = (*SQLiteBackend)(nil)

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("kvstore: open %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("kvstore: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("kvstore: ensure schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// ReadAll fetches every stored field for a mode.
func (b *SQLiteBackend) ReadAll(ctx context.Context, mode layout.Mode) (map[string]json.RawMessage, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT key, value FROM layout_prefs WHERE mode = ?`, string(mode))
	if err != nil {
		return nil, fmt.Errorf("kvstore: read %s: %w", mode, err)
	}
	defer rows.Close()

	out := map[string]json.RawMessage{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("kvstore: scan %s: %w", mode, err)
		}
		out[key] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("kvstore: read %s: %w", mode, err)
	}
	return out, nil
}

// Write replaces a single field for a mode.
func (b *SQLiteBackend) Write(ctx context.Context, mode layout.Mode, key string, value json.RawMessage) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO layout_prefs (mode, key, value, updated_at)
		 VALUES (?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		 ON CONFLICT (mode, key) DO UPDATE SET
		   value = excluded.value,
		   updated_at = excluded.updated_at`,
		string(mode), key, string(value))
	if err != nil {
		return fmt.Errorf("kvstore: write %s/%s: %w", mode, key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
