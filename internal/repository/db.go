// Package repository is the local archive: every reservation the service
// accepts is fingerprinted and stored in an embedded SQLite database, so
// redelivered webhooks are dropped without a round trip to Lark and the
// export endpoint has something to read.
package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS processed_records (
	id             TEXT PRIMARY KEY,
	fingerprint    TEXT NOT NULL UNIQUE,
	customer_name  TEXT NOT NULL,
	customer_email TEXT NOT NULL,
	event_name     TEXT NOT NULL,
	desired_date   TEXT NOT NULL DEFAULT '',
	status         TEXT NOT NULL,
	lark_record_id TEXT NOT NULL DEFAULT '',
	payload        TEXT NOT NULL,
	created_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_processed_created ON processed_records(created_at);
`

// Open opens (creating if needed) the archive database at path with
// production-safe pragmas and ensures the schema exists.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 10000;",
		"PRAGMA synchronous = NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping archive: %w", err)
	}
	return db, nil
}
