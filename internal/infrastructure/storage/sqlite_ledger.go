package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"LichessIngest/internal/domain"
	"LichessIngest/internal/ports"
)

const schema = `CREATE TABLE IF NOT EXISTS ingest_runs (
	id          TEXT PRIMARY KEY,
	variant     TEXT NOT NULL,
	month       TEXT NOT NULL,
	archive     TEXT NOT NULL,
	state       TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	started_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL DEFAULT ''
)`

// Fixed-width so that lexical order matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteLedger records every run and its state transitions.
type SQLiteLedger struct {
	db  *sql.DB
	qb  sq.StatementBuilderType
	now func() time.Time
}

var (
	_ ports.RunRecorder = (*SQLiteLedger)(nil)
	_ ports.RunHistory  = (*SQLiteLedger)(nil)
)

// OpenSQLiteLedger opens (or creates) the ledger database at path.
func OpenSQLiteLedger(ctx context.Context, path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}
	return NewSQLiteLedger(db), nil
}

// NewSQLiteLedger wires an already opened database.
func NewSQLiteLedger(db *sql.DB) *SQLiteLedger {
	return &SQLiteLedger{
		db:  db,
		qb:  sq.StatementBuilder.PlaceholderFormat(sq.Question),
		now: time.Now,
	}
}

// Close releases the database handle.
func (l *SQLiteLedger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

// Begin inserts a new run row.
func (l *SQLiteLedger) Begin(ctx context.Context, run domain.Run) error {
	if l.db == nil {
		return nil
	}

	started := run.StartedAt
	if started.IsZero() {
		started = l.now()
	}

	query, args, err := l.qb.Insert("ingest_runs").
		Columns("id", "variant", "month", "archive", "state", "started_at", "updated_at").
		Values(run.ID, string(run.Variant), run.Month.String(), run.Archive, string(run.State),
			started.UTC().Format(timeLayout), started.UTC().Format(timeLayout)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Transition stores the new state; terminal states also stamp finished_at.
func (l *SQLiteLedger) Transition(ctx context.Context, runID string, state domain.RunState, cause error) error {
	if l.db == nil {
		return nil
	}

	now := l.now().UTC().Format(timeLayout)
	update := l.qb.Update("ingest_runs").
		Set("state", string(state)).
		Set("updated_at", now).
		Where(sq.Eq{"id": runID})
	if cause != nil {
		update = update.Set("error", cause.Error())
	}
	if state.Terminal() {
		update = update.Set("finished_at", now)
	}

	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := l.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update run: %s not found", runID)
	}
	return nil
}

// Recent returns up to limit runs, most recently started first.
func (l *SQLiteLedger) Recent(ctx context.Context, limit int) ([]domain.Run, error) {
	if l.db == nil {
		return nil, nil
	}

	builder := l.qb.Select("id", "variant", "month", "archive", "state", "error", "started_at", "finished_at").
		From("ingest_runs").
		OrderBy("started_at DESC", "id")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	var runs []domain.Run
	for rows.Next() {
		var (
			run                   domain.Run
			variant, month, state string
			startedAt, finishedAt string
		)
		if err := rows.Scan(&run.ID, &variant, &month, &run.Archive, &state, &run.Error, &startedAt, &finishedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}

		run.Variant = domain.Variant(variant)
		run.State = domain.RunState(state)
		if run.Month, err = domain.ParseYearMonth(month); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}
		run.StartedAt, _ = time.Parse(timeLayout, startedAt)
		if finishedAt != "" {
			run.FinishedAt, _ = time.Parse(timeLayout, finishedAt)
		}
		runs = append(runs, run)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return runs, nil
}
