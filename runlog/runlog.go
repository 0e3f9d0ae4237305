// Package runlog archives raw per-domain crawl outcomes into SQLite, one row
// per run and one per (run, domain). The archive is a side store: every
// write failure is logged and swallowed, so a broken archive can never fail
// a measurement run. The JSON documents remain the canonical output.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/extbench/dbopen"
	"github.com/hazyhaar/extbench/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id         INTEGER PRIMARY KEY AUTOINCREMENT,
	with_extension INTEGER NOT NULL,
	started_at     INTEGER NOT NULL,
	finished_at    INTEGER,
	visited        INTEGER,
	successes      INTEGER
);

CREATE TABLE IF NOT EXISTS run_results (
	run_id              INTEGER NOT NULL REFERENCES runs(run_id),
	domain              TEXT    NOT NULL,
	request_count       INTEGER NOT NULL,
	request_body_size   INTEGER NOT NULL,
	response_count      INTEGER NOT NULL,
	response_body_size  INTEGER NOT NULL,
	navigation_duration REAL,
	resource_duration   REAL,
	fcp                 REAL,
	error_code          INTEGER,
	error_message       TEXT,
	created_at          INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_results_run ON run_results(run_id);
`

// Store writes run outcomes. A nil *Store is valid and discards everything,
// so callers can wire it unconditionally.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (or creates) the archive database at path.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := dbopen.Open(path, dbopen.WithSchema(schema))
	if err != nil {
		return nil, fmt.Errorf("runlog: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// StartRun records a new run and returns its id. On failure it logs and
// returns 0; subsequent writes with run id 0 are skipped.
func (s *Store) StartRun(ctx context.Context, withExtension bool) int64 {
	if s == nil {
		return 0
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (with_extension, started_at) VALUES (?, ?)`,
		withExtension, time.Now().Unix())
	if err != nil {
		s.log.Warn("runlog: start run failed", "error", err)
		return 0
	}
	id, err := res.LastInsertId()
	if err != nil {
		s.log.Warn("runlog: run id unavailable", "error", err)
		return 0
	}
	return id
}

// RecordResult archives one raw query result.
func (s *Store) RecordResult(ctx context.Context, runID int64, domain string, r *metrics.QueryResult) {
	if s == nil || runID == 0 {
		return
	}

	var errCode *int
	var errMessage *string
	if r.Error != nil {
		errCode = r.Error.Code
		if r.Error.Message != "" {
			errMessage = &r.Error.Message
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_results (
			run_id, domain, request_count, request_body_size,
			response_count, response_body_size,
			navigation_duration, resource_duration, fcp,
			error_code, error_message, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		runID, domain, r.RequestCount, r.AccumulatedRequestBodySize,
		r.ResponseCount, r.AccumulatedResponseBodySize,
		r.NavigationDuration, r.ResourceDuration, r.FirstContentfulPaint,
		errCode, errMessage, time.Now().Unix())
	if err != nil {
		s.log.Warn("runlog: record result failed", "domain", domain, "error", err)
	}
}

// FinishRun stamps the run with its end time and totals.
func (s *Store) FinishRun(ctx context.Context, runID int64, visited, successes int) {
	if s == nil || runID == 0 {
		return
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, visited = ?, successes = ? WHERE run_id = ?`,
		time.Now().Unix(), visited, successes, runID)
	if err != nil {
		s.log.Warn("runlog: finish run failed", "error", err)
	}
}
