package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"manifestlock/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository implements repository.RunHistory using SQLite.
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite run-history repository.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		files_scanned INTEGER NOT NULL DEFAULT 0,
		objects_governed INTEGER NOT NULL DEFAULT 0,
		files_rewritten INTEGER NOT NULL DEFAULT 0,
		warnings INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_failures (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		kind TEXT NOT NULL,
		source TEXT,
		ref TEXT,
		expected TEXT,
		actual TEXT,
		message TEXT,
		PRIMARY KEY (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_run_failures_run ON run_failures(run_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// RecordRun persists a finished run and its failures in one transaction.
func (r *Repository) RecordRun(ctx context.Context, run *domain.RunRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, mode, started_at, finished_at, files_scanned,
			objects_governed, files_rewritten, warnings, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Mode,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Files, run.Objects, run.Rewritten, run.Warnings, run.Status)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if len(run.Failures) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO run_failures (run_id, seq, kind, source, ref, expected, actual, message)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare failure statement: %w", err)
		}
		defer stmt.Close()

		for i, f := range run.Failures {
			_, err := stmt.ExecContext(ctx, run.ID, i, string(f.Kind),
				stringToNull(f.Source), stringToNull(f.Ref),
				stringToNull(f.Expected), stringToNull(f.Actual),
				stringToNull(f.Message))
			if err != nil {
				return fmt.Errorf("failed to insert failure %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRun retrieves a single run by ID with its failures loaded.
func (r *Repository) GetRun(ctx context.Context, id string) (*domain.RunRecord, error) {
	var (
		run                  domain.RunRecord
		startedAt, finished  string
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, mode, started_at, finished_at, files_scanned,
			objects_governed, files_rewritten, warnings, status
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.Mode, &startedAt, &finished,
		&run.Files, &run.Objects, &run.Rewritten, &run.Warnings, &run.Status)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseTime(finished); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT kind, source, ref, expected, actual, message
		FROM run_failures WHERE run_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run failures: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind                                  string
			source, ref, expected, actual, message sql.NullString
		)
		if err := rows.Scan(&kind, &source, &ref, &expected, &actual, &message); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		run.Failures = append(run.Failures, domain.Failure{
			Kind:     domain.FailureKind(kind),
			Source:   nullToString(source),
			Ref:      nullToString(ref),
			Expected: nullToString(expected),
			Actual:   nullToString(actual),
			Message:  nullToString(message),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating failures: %w", err)
	}

	return &run, nil
}

// ListRuns returns the most recent runs, newest first, without failure
// lists. A non-positive limit returns all runs.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]*domain.RunRecord, error) {
	query := `
		SELECT id, mode, started_at, finished_at, files_scanned,
			objects_governed, files_rewritten, warnings, status
		FROM runs ORDER BY started_at DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.RunRecord
	for rows.Next() {
		var (
			run                 domain.RunRecord
			startedAt, finished string
		)
		if err := rows.Scan(&run.ID, &run.Mode, &startedAt, &finished,
			&run.Files, &run.Objects, &run.Rewritten, &run.Warnings, &run.Status); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if run.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}
