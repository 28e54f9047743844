package store

import (
	"context"

	"github.com/Tiliavir/monthly-invoicer/internal/model"
)

// Insert adds t without removing other triggers of its handler, which
// Replace never leaves behind.
func (r *Triggers) Insert(ctx context.Context, t model.Trigger) error {
	return insertTrigger(ctx, r.db, t)
}
