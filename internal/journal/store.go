// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal persists a history of finished conversions in SQLite.
// The Recorder adapter plugs the store into the conversion queue.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docbridge/pkg/types"
)

const (
	defaultLimit = 50

	// timeLayout has fixed-width fractional seconds so stored timestamps
	// sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store manages the conversion journal database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the journal database at cfg.Path, creating the
// parent directory and schema as needed.
func Open(cfg types.JournalConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("journal path must not be empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			destination TEXT NOT NULL,
			format TEXT NOT NULL,
			mode TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_finished ON conversions(finished_at)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_status ON conversions(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts r, replacing any earlier row with the same ID.
func (s *Store) Record(ctx context.Context, r types.ConversionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO conversions
			(id, source, destination, format, mode, status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Source, r.Destination, r.Format, string(r.Mode), string(r.Status),
		nullString(r.Error),
		r.StartedAt.UTC().Format(timeLayout), r.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording conversion %s: %w", r.ID, err)
	}
	return nil
}

// QueryOptions filters List results.
type QueryOptions struct {
	// Status restricts results to one outcome.
	Status types.ConversionStatus

	// Source restricts results to one source path.
	Source string

	// Limit caps the number of rows. Zero uses the default (50).
	Limit int
}

// List returns journal entries, most recently finished first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]types.ConversionRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, source, destination, format, mode, status, error, started_at, finished_at
		FROM conversions WHERE 1=1`)
	if opts.Status != "" {
		qb.WriteString(` AND status = ?`)
		args = append(args, string(opts.Status))
	}
	if opts.Source != "" {
		qb.WriteString(` AND source = ?`)
		args = append(args, opts.Source)
	}
	qb.WriteString(` ORDER BY finished_at DESC, id LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var out []types.ConversionRecord
	for rows.Next() {
		var (
			r                 types.ConversionRecord
			mode, status      string
			errText           sql.NullString
			started, finished string
		)
		if err := rows.Scan(&r.ID, &r.Source, &r.Destination, &r.Format, &mode, &status,
			&errText, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		r.Mode = types.ConverterMode(mode)
		r.Status = types.ConversionStatus(status)
		r.Error = errText.String
		if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parsing started_at for %s: %w", r.ID, err)
		}
		if r.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("parsing finished_at for %s: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
