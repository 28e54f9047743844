package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Properties is the key/value configuration store.
type Properties struct {
	db  *sql.DB
	now func() time.Time
}

// NewProperties returns a property store backed by db.
func NewProperties(db *sql.DB) *Properties {
	return &Properties{db: db, now: time.Now}
}

// Get returns the value of key and whether it is set.
func (p *Properties) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.db.QueryRowContext(ctx, `SELECT value FROM properties WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading property %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (p *Properties) Set(ctx context.Context, key, value string) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO properties (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, formatTime(p.now()))
	if err != nil {
		return fmt.Errorf("writing property %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (p *Properties) Delete(ctx context.Context, key string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM properties WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting property %s: %w", key, err)
	}
	return nil
}

// All returns every stored property.
func (p *Properties) All(ctx context.Context) (map[string]string, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT key, value FROM properties ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}
