package database

import (
	"context"
	"fmt"
)

var catalogDDL = []struct {
	name string
	ddl  string
}{
	{"bundles", `CREATE TABLE IF NOT EXISTS bundles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tag TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL,
		size INTEGER NOT NULL,
		entry_count INTEGER NOT NULL,
		recorded_at TEXT NOT NULL
	)`},
	{"entries", `CREATE TABLE IF NOT EXISTS entries (
		bundle_id INTEGER NOT NULL REFERENCES bundles(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		size INTEGER NOT NULL,
		fingerprint TEXT NOT NULL,
		PRIMARY KEY (bundle_id, name)
	)`},
	{"entries_fingerprint", `CREATE INDEX IF NOT EXISTS entries_fingerprint ON entries (fingerprint)`},
}

// EnsureSchema creates the catalog tables if they do not exist yet
func (d *Database) EnsureSchema(ctx context.Context) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	for _, stmt := range catalogDDL {
		if _, err := tx.ExecContext(ctx, stmt.ddl); err != nil {
			return fmt.Errorf("creating %s: %w", stmt.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}
