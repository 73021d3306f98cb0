package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jchantrell/modelbundle/internal/utils"
)

// Source is a loaded bundle whose entries can be recorded
type Source interface {
	Tag() string
	ListFiles() []string
	GetFile(name string) ([]byte, error)
}

// BundleRecord describes the bundle row written by Record
type BundleRecord struct {
	Tag    string
	Source string
	Size   int64
}

// ProgressCallback is called for each entry once its batch is written
type ProgressCallback func(name string)

// Recorder writes bundles and their entries into the catalog in batches
type Recorder struct {
	db        *Database
	batchSize int
	now       func() time.Time
}

// RecorderOptions configures catalog recording
type RecorderOptions struct {
	// BatchSize determines how many entries each INSERT statement writes
	BatchSize int
}

// DefaultRecorderOptions returns sensible defaults for recording
func DefaultRecorderOptions() *RecorderOptions {
	return &RecorderOptions{
		BatchSize: 500,
	}
}

// NewRecorder creates a new recorder with the given database and options
func NewRecorder(db *Database, options *RecorderOptions) *Recorder {
	if options == nil {
		options = DefaultRecorderOptions()
	}
	batchSize := options.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultRecorderOptions().BatchSize
	}

	return &Recorder{
		db:        db,
		batchSize: batchSize,
		now:       time.Now,
	}
}

type entryRow struct {
	name        string
	size        int
	fingerprint string
}

// Record replaces any previous record of the bundle's tag with its current
// entries and returns the new bundle id. Nothing is written if any entry
// fails.
func (r *Recorder) Record(ctx context.Context, src Source, record BundleRecord, progress ProgressCallback) (int64, error) {
	names := src.ListFiles()

	rows := make([]entryRow, 0, len(names))
	for _, name := range names {
		data, err := src.GetFile(name)
		if err != nil {
			return 0, fmt.Errorf("reading entry %s: %w", name, err)
		}
		rows = append(rows, entryRow{
			name:        name,
			size:        len(data),
			fingerprint: utils.FormatFingerprint(utils.Fingerprint(data)),
		})
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() // Safe to call even after commit

	bundleID, err := r.replaceBundle(ctx, tx, record, len(rows))
	if err != nil {
		return 0, err
	}

	for i := 0; i < len(rows); i += r.batchSize {
		end := min(i+r.batchSize, len(rows))
		if err := insertBatch(ctx, tx, bundleID, rows[i:end]); err != nil {
			return 0, fmt.Errorf("inserting entries %d-%d for bundle %s: %w", i, end-1, record.Tag, err)
		}
		if progress != nil {
			for _, row := range rows[i:end] {
				progress(row.name)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing bundle %s: %w", record.Tag, err)
	}

	slog.Debug("Recorded bundle", "tag", record.Tag, "bundle_id", bundleID, "entries", len(rows))

	return bundleID, nil
}

func (r *Recorder) replaceBundle(ctx context.Context, tx *sql.Tx, record BundleRecord, entryCount int) (int64, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM bundles WHERE tag = ?`, record.Tag); err != nil {
		return 0, fmt.Errorf("removing previous record of %s: %w", record.Tag, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bundles (tag, source, size, entry_count, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		record.Tag, record.Source, record.Size, entryCount, r.now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("inserting bundle %s: %w", record.Tag, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading bundle id: %w", err)
	}
	return id, nil
}

// insertBatch writes a batch of entries with one multi-row INSERT
func insertBatch(ctx context.Context, tx *sql.Tx, bundleID int64, batch []entryRow) error {
	placeholders := make([]string, len(batch))
	args := make([]any, 0, 4*len(batch))
	for i, row := range batch {
		placeholders[i] = "(?, ?, ?, ?)"
		args = append(args, bundleID, row.name, row.size, row.fingerprint)
	}

	query := `INSERT INTO entries (bundle_id, name, size, fingerprint) VALUES ` + strings.Join(placeholders, ", ")
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return nil
}

// EntryInfo is a catalogued entry
type EntryInfo struct {
	Name        string
	Size        int64
	Fingerprint string
}

// BundleInfo is a catalogued bundle
type BundleInfo struct {
	ID         int64
	Tag        string
	Source     string
	Size       int64
	EntryCount int
	RecordedAt string
}

// Bundles lists all catalogued bundles ordered by tag
func (d *Database) Bundles(ctx context.Context) ([]BundleInfo, error) {
	rows, err := d.Query(ctx, `SELECT id, tag, source, size, entry_count, recorded_at FROM bundles ORDER BY tag`)
	if err != nil {
		return nil, fmt.Errorf("listing bundles: %w", err)
	}
	defer rows.Close()

	var bundles []BundleInfo
	for rows.Next() {
		var b BundleInfo
		if err := rows.Scan(&b.ID, &b.Tag, &b.Source, &b.Size, &b.EntryCount, &b.RecordedAt); err != nil {
			return nil, fmt.Errorf("scanning bundle row: %w", err)
		}
		bundles = append(bundles, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bundles: %w", err)
	}

	return bundles, nil
}

// Entries lists the catalogued entries of the bundle with the given tag ordered by name
func (d *Database) Entries(ctx context.Context, tag string) ([]EntryInfo, error) {
	rows, err := d.Query(ctx, `
		SELECT e.name, e.size, e.fingerprint
		FROM entries e JOIN bundles b ON b.id = e.bundle_id
		WHERE b.tag = ?
		ORDER BY e.name`, tag)
	if err != nil {
		return nil, fmt.Errorf("listing entries of %s: %w", tag, err)
	}
	defer rows.Close()

	var entries []EntryInfo
	for rows.Next() {
		var e EntryInfo
		if err := rows.Scan(&e.Name, &e.Size, &e.Fingerprint); err != nil {
			return nil, fmt.Errorf("scanning entry row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, nil
}
