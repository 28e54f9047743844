package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Tiliavir/monthly-invoicer/internal/model"
)

// Triggers persists daily triggers.
type Triggers struct {
	db *sql.DB
}

// NewTriggers returns a trigger table backed by db.
func NewTriggers(db *sql.DB) *Triggers {
	return &Triggers{db: db}
}

// Replace deletes every trigger of t.Handler and inserts t, in one transaction.
// It returns the number of triggers removed.
func (r *Triggers) Replace(ctx context.Context, t model.Trigger) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM triggers WHERE handler = ?`, t.Handler)
	if err != nil {
		return 0, fmt.Errorf("deleting triggers for %s: %w", t.Handler, err)
	}
	removed, _ := res.RowsAffected()

	if err := insertTrigger(ctx, tx, t); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing trigger: %w", err)
	}
	return int(removed), nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertTrigger(ctx context.Context, db execer, t model.Trigger) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO triggers (id, handler, hour, created_at, last_run) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Handler, t.Hour, formatTime(t.CreatedAt), t.LastRun)
	if err != nil {
		return fmt.Errorf("inserting trigger: %w", err)
	}
	return nil
}

// List returns all triggers ordered by handler then creation time.
func (r *Triggers) List(ctx context.Context) ([]model.Trigger, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, handler, hour, created_at, last_run FROM triggers ORDER BY handler, created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing triggers: %w", err)
	}
	defer rows.Close()

	var out []model.Trigger
	for rows.Next() {
		var t model.Trigger
		var created string
		if err := rows.Scan(&t.ID, &t.Handler, &t.Hour, &created, &t.LastRun); err != nil {
			return nil, fmt.Errorf("scanning trigger: %w", err)
		}
		t.CreatedAt = parseTime(created)
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteHandler removes every trigger of handler and returns how many.
func (r *Triggers) DeleteHandler(ctx context.Context, handler string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM triggers WHERE handler = ?`, handler)
	if err != nil {
		return 0, fmt.Errorf("deleting triggers for %s: %w", handler, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// MarkRun records the local date a trigger fired on.
func (r *Triggers) MarkRun(ctx context.Context, id, date string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE triggers SET last_run = ? WHERE id = ?`, date, id)
	if err != nil {
		return fmt.Errorf("marking trigger %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("marking trigger %s: %w", id, sql.ErrNoRows)
	}
	return nil
}
