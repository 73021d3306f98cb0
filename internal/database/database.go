package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var errClosed = errors.New("catalog database is closed")

// Database is the SQLite bundle catalog
type Database struct {
	db   *sql.DB
	path string
}

// DatabaseOptions configures the catalog connection
type DatabaseOptions struct {
	Path        string
	WALMode     bool
	ForeignKeys bool
	BusyTimeout time.Duration
}

// DefaultDatabaseOptions returns the options used by the CLI
func DefaultDatabaseOptions(path string) *DatabaseOptions {
	return &DatabaseOptions{
		Path:        path,
		WALMode:     true,
		ForeignKeys: true,
		BusyTimeout: 30 * time.Second,
	}
}

// NewDatabase opens the catalog at options.Path, creating its directory
func NewDatabase(options *DatabaseOptions) (*Database, error) {
	if options == nil {
		return nil, fmt.Errorf("database options cannot be nil")
	}
	if options.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	if dir := filepath.Dir(options.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", buildConnectionString(options))
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", options.Path, err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", options.Path, err)
	}

	return &Database{db: db, path: options.Path}, nil
}

// Close is a no-op on a closed catalog
func (d *Database) Close() error {
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	if err != nil {
		return fmt.Errorf("closing database connection: %w", err)
	}
	return nil
}

func (d *Database) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	if d.db == nil {
		return nil, errClosed
	}
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	return tx, nil
}

func (d *Database) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if d.db == nil {
		return nil, errClosed
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	return rows, nil
}

func (d *Database) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, query, args...)
}

func (d *Database) Path() string {
	return d.path
}

// HasTable reports whether the catalog contains the named table
func (d *Database) HasTable(ctx context.Context, name string) (bool, error) {
	if d.db == nil {
		return false, errClosed
	}
	var count int
	err := d.QueryRow(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking for table %s: %w", name, err)
	}
	return count > 0, nil
}

func buildConnectionString(options *DatabaseOptions) string {
	var pragmas []string
	if options.WALMode {
		pragmas = append(pragmas, "_journal_mode=WAL")
	}
	if options.ForeignKeys {
		pragmas = append(pragmas, "_foreign_keys=on")
	}
	if options.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("_busy_timeout=%d", options.BusyTimeout.Milliseconds()))
	}
	pragmas = append(pragmas, "_synchronous=NORMAL", "_cache_size=10000")

	return "file:" + options.Path + "?" + strings.Join(pragmas, "&")
}
