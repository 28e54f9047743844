package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Tiliavir/monthly-invoicer/internal/model"
)

// Runs is the invocation history.
type Runs struct {
	db *sql.DB
}

// NewRuns returns a run history backed by db.
func NewRuns(db *sql.DB) *Runs {
	return &Runs{db: db}
}

// Record appends run to the history.
func (r *Runs) Record(ctx context.Context, run model.Run) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, period, started_at, finished_at, status, url, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Period, formatTime(run.StartedAt), formatTime(run.FinishedAt),
		string(run.Status), run.URL, run.Error)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (r *Runs) Recent(ctx context.Context, limit int) ([]model.Run, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, period, started_at, finished_at, status, url, error
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		var run model.Run
		var started, finished, status string
		if err := rows.Scan(&run.ID, &run.Period, &started, &finished, &status, &run.URL, &run.Error); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		run.Status = model.RunStatus(status)
		out = append(out, run)
	}
	return out, rows.Err()
}

// LastSuccess returns the most recent successful run for period, if any.
func (r *Runs) LastSuccess(ctx context.Context, period string) (*model.Run, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, period, started_at, finished_at, status, url, error
		 FROM runs WHERE period = ? AND status = ? ORDER BY started_at DESC LIMIT 1`,
		period, string(model.RunSuccess))
	var run model.Run
	var started, finished, status string
	err := row.Scan(&run.ID, &run.Period, &started, &finished, &status, &run.URL, &run.Error)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading last run for %s: %w", period, err)
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	run.Status = model.RunStatus(status)
	return &run, nil
}
