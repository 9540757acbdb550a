// Package journal persists cell outcomes and recompute traces in a local
// sqlite database.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mizuchi-dev/cellar/runtime/metrics"
	"github.com/mizuchi-dev/cellar/runtime/retry"
	"github.com/mizuchi-dev/cellar/runtime/tracing"
)

var (
	appendCount  = metrics.NewCounter("cellar_journal_append_count")
	appendErrors = metrics.NewCounter("cellar_journal_append_errors")
	openJournals = metrics.NewGauge("cellar_journal_open")
)

// DB is a journal backed by a local sqlite file.
type DB struct {
	fName string
	db    *sql.DB
}

// Outcome is one recorded evaluation attempt of a named cell.
type Outcome struct {
	ID      string
	Cell    string
	OK      bool
	Display string
	Payload []byte
	Time    time.Time
}

// Trace is the queryable summary of one recorded trace.
type Trace struct {
	TraceID     string
	App         string
	Version     string
	Name        string
	StartMicros int64
	EndMicros   int64
	Status      string
}

func Open(ctx context.Context, fName string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(fName), 0700); err != nil {
		return nil, err
	}

	const params = "?_locking_mode=NORMAL&_busy_timeout=10000"
	db, err := sql.Open("sqlite", fName+params)
	if err != nil {
		return nil, fmt.Errorf("open db %q failed: %w", fName, err)
	}
	db.SetMaxOpenConns(1)

	j := &DB{
		fName: fName,
		db:    db,
	}

	const initDB = `
-- Disable foreign key checking as spans may get inserted into encoded_spans
-- before the corresponding traces are inserted into traces.
PRAGMA foreign_keys=OFF;

-- One row per recorded cell evaluation attempt.
CREATE TABLE IF NOT EXISTS outcomes (
	id TEXT NOT NULL,
	cell TEXT NOT NULL,
	ok INTEGER NOT NULL,
	display TEXT,
	payload BLOB,
	time_unix_us INTEGER,
	PRIMARY KEY(id)
);

-- Queryable trace data.
CREATE TABLE IF NOT EXISTS traces (
	trace_id TEXT NOT NULL,
	app TEXT NOT NULL,
	version TEXT NOT NULL,
	name TEXT,
	start_time_unix_us INTEGER,
	end_time_unix_us INTEGER,
	status TEXT,
	PRIMARY KEY(trace_id)
);

-- Encoded spans.
CREATE TABLE IF NOT EXISTS encoded_spans (
	trace_id TEXT NOT NULL,
	start_time_unix_us INTEGER,
	data BLOB,
	FOREIGN KEY (trace_id) REFERENCES traces (trace_id)
);

-- Garbage-collect outcomes older than 30 days.
CREATE TRIGGER IF NOT EXISTS expire_outcomes AFTER INSERT ON outcomes
BEGIN
	DELETE FROM outcomes
	WHERE time_unix_us < (1000000 * unixepoch('now', '-30 days'));
END;

-- Garbage-collect traces older than 30 days.
CREATE TRIGGER IF NOT EXISTS expire_traces AFTER INSERT ON traces
BEGIN
	DELETE FROM traces
	WHERE start_time_unix_us < (1000000 * unixepoch('now', '-30 days'));
END;

-- Garbage-collect spans older than 30 days.
CREATE TRIGGER IF NOT EXISTS expire_spans AFTER INSERT ON encoded_spans
BEGIN
	DELETE FROM encoded_spans
	WHERE start_time_unix_us < (1000000 * unixepoch('now', '-30 days'));
END;
`

	if _, err := j.execDB(ctx, initDB); err != nil {
		return nil, fmt.Errorf("open journal DB %s: %w", fName, err)
	}

	openJournals.Add(1)

	return j, nil
}

func (j *DB) execDB(ctx context.Context, query string, args ...any) (sql.Result, error) {
	for r := retry.Begin(); r.Continue(ctx); {
		res, err := j.db.ExecContext(ctx, query, args...)
		if isLocked(err) {
			continue
		}
		return res, err
	}
	return nil, ctx.Err()
}

func (j *DB) queryDB(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	for r := retry.Begin(); r.Continue(ctx); {
		rows, err := j.db.QueryContext(ctx, query, args...)
		if isLocked(err) {
			continue
		}
		return rows, err
	}
	return nil, ctx.Err()
}

// isLocked returns whether the error is a "database is locked" error.
func isLocked(err error) bool {
	sqlError := &sqlite.Error{}
	ok := errors.As(err, &sqlError)

	return ok && (sqlError.Code() == sqlite3.SQLITE_BUSY || sqlError.Code() == sqlite3.SQLITE_LOCKED)
}

func (j *DB) Close() error {
	openJournals.Sub(1)
	return j.db.Close()
}

// Append records one outcome.
func (j *DB) Append(ctx context.Context, o Outcome) error {
	const stmt = `INSERT INTO outcomes VALUES (?,?,?,?,?,?)`
	_, err := j.execDB(ctx, stmt, o.ID, o.Cell, o.OK, o.Display, o.Payload, o.Time.UnixMicro())
	if err != nil {
		appendErrors.Inc()
		return err
	}
	appendCount.Inc()
	return nil
}

// ListOutcomes returns the most recent outcomes, newest first. cell filters
// to one cell name; "" lists all. limit <= 0 means no limit.
func (j *DB) ListOutcomes(ctx context.Context, cell string, limit int) ([]Outcome, error) {
	query := `SELECT id, cell, ok, display, payload, time_unix_us FROM outcomes`
	var args []any
	if cell != "" {
		query += ` WHERE cell = ?`
		args = append(args, cell)
	}
	query += ` ORDER BY time_unix_us DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.queryDB(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		var us int64
		if err := rows.Scan(&o.ID, &o.Cell, &o.OK, &o.Display, &o.Payload, &us); err != nil {
			return nil, err
		}
		o.Time = time.UnixMicro(us)
		out = append(out, o)
	}

	return out, rows.Err()
}

func (j *DB) storeTrace(ctx context.Context, tx *sql.Tx, app, version string, root tracing.SpanData) error {
	const stmt = `INSERT INTO traces VALUES (?,?,?,?,?,?,?)`
	_, err := tx.ExecContext(ctx, stmt, root.TraceID, app, version, root.Name,
		root.StartMicros, root.EndMicros, root.Status)
	return err
}

func (j *DB) storeSpan(ctx context.Context, tx *sql.Tx, span tracing.SpanData) error {
	const stmt = `INSERT INTO encoded_spans VALUES (?,?,?)`
	_, err := tx.ExecContext(ctx, stmt, span.TraceID, span.StartMicros, span.Encoded)
	return err
}

// StoreSpans persists a batch of finished spans. All rows are inserted in
// one transaction; inserting one row at a time is dramatically slower on
// sqlite.
func (j *DB) StoreSpans(ctx context.Context, app, version string, spans []tracing.SpanData) error {
	tx, err := j.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelLinearizable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var errs []error
	for _, span := range spans {
		if span.Root {
			if err := j.storeTrace(ctx, tx, app, version, span); err != nil {
				errs = append(errs, err)
			}
		}
		if err := j.storeSpan(ctx, tx, span); err != nil {
			errs = append(errs, err)
		}
	}

	if errs != nil {
		return errors.Join(errs...)
	}

	return tx.Commit()
}

// ListTraces returns the most recent traces, newest first. limit <= 0
// means no limit.
func (j *DB) ListTraces(ctx context.Context, limit int) ([]Trace, error) {
	query := `SELECT trace_id, app, version, name, start_time_unix_us, end_time_unix_us, status
		FROM traces ORDER BY start_time_unix_us DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.queryDB(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Trace
	for rows.Next() {
		var t Trace
		if err := rows.Scan(&t.TraceID, &t.App, &t.Version, &t.Name,
			&t.StartMicros, &t.EndMicros, &t.Status); err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, rows.Err()
}
