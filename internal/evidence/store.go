// Package evidence persists a per-document audit trail of sanitization and
// rehydration runs in SQLite: which document, how many spans of which
// labels, from which detectors, how long it took. The trail answers "what
// did we redact and when" without retaining any original content.
package evidence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	pkgotel "github.com/leedsrising/pdf-to-text/internal/otel"
)

var tracer = pkgotel.Tracer("github.com/leedsrising/pdf-to-text/internal/evidence")

// Operation names recorded per run.
const (
	OpSanitize  = "sanitize"
	OpRehydrate = "rehydrate"
)

// Record is the audit entry for one document run. Label and source counts
// are stored as JSON; no document text is ever persisted.
type Record struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Document   string         `json:"document"`
	Operation  string         `json:"operation"`
	SpanCount  int            `json:"span_count"`
	ByLabel    map[string]int `json:"by_label,omitempty"`
	BySource   map[string]int `json:"by_source,omitempty"`
	DurationMS int64          `json:"duration_ms"`
	Error      string         `json:"error,omitempty"`
}

// Store persists run records in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the evidence database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening evidence database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		document TEXT NOT NULL,
		operation TEXT NOT NULL,
		span_count INTEGER NOT NULL,
		by_label TEXT,
		by_source TEXT,
		duration_ms INTEGER NOT NULL,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	CREATE INDEX IF NOT EXISTS idx_runs_document ON runs(document);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating evidence schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert stores a run record, assigning an ID and timestamp when unset.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	ctx, span := tracer.Start(ctx, "evidence.insert")
	defer span.End()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	byLabel, err := json.Marshal(rec.ByLabel)
	if err != nil {
		return fmt.Errorf("marshalling label counts: %w", err)
	}
	bySource, err := json.Marshal(rec.BySource)
	if err != nil {
		return fmt.Errorf("marshalling source counts: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, timestamp, document, operation, span_count, by_label, by_source, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp.Format(time.RFC3339Nano), rec.Document, rec.Operation,
		rec.SpanCount, string(byLabel), string(bySource), rec.DurationMS, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting evidence record: %w", err)
	}
	return nil
}

// List returns the most recent records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "evidence.list")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, document, operation, span_count, by_label, by_source, duration_ms, error
		FROM runs ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying evidence records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec       Record
			ts        string
			byLabel   sql.NullString
			bySource  sql.NullString
			errString sql.NullString
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.Document, &rec.Operation, &rec.SpanCount,
			&byLabel, &bySource, &rec.DurationMS, &errString); err != nil {
			return nil, fmt.Errorf("scanning evidence record: %w", err)
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		if byLabel.Valid && byLabel.String != "null" {
			_ = json.Unmarshal([]byte(byLabel.String), &rec.ByLabel)
		}
		if bySource.Valid && bySource.String != "null" {
			_ = json.Unmarshal([]byte(bySource.String), &rec.BySource)
		}
		rec.Error = errString.String
		records = append(records, rec)
	}
	return records, rows.Err()
}
