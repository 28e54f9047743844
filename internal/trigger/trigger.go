// Package trigger keeps the persisted daily triggers and runs them.
package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Tiliavir/monthly-invoicer/internal/model"
)

// HandlerDaily is the handler name of the daily invoicing check.
const HandlerDaily = "daily"

// Store persists triggers.
type Store interface {
	Replace(ctx context.Context, t model.Trigger) (int, error)
	List(ctx context.Context) ([]model.Trigger, error)
	DeleteHandler(ctx context.Context, handler string) (int, error)
	MarkRun(ctx context.Context, id, date string) error
}

// Registry installs and lists triggers.
type Registry struct {
	store Store
	now   func() time.Time
}

// NewRegistry returns a Registry over store.
func NewRegistry(store Store) *Registry {
	return &Registry{store: store, now: time.Now}
}

// Install makes handler fire once a day at hour. Existing triggers of the same
// handler are removed first, so repeated calls leave exactly one. It returns
// the new trigger and the number of triggers it replaced.
func (r *Registry) Install(ctx context.Context, handler string, hour int) (model.Trigger, int, error) {
	if hour < 0 || hour > 23 {
		return model.Trigger{}, 0, fmt.Errorf("invalid hour %d: want 0-23", hour)
	}
	t := model.Trigger{
		ID:        uuid.NewString(),
		Handler:   handler,
		Hour:      hour,
		CreatedAt: r.now(),
	}
	removed, err := r.store.Replace(ctx, t)
	if err != nil {
		return model.Trigger{}, 0, fmt.Errorf("installing %s trigger: %w", handler, err)
	}
	return t, removed, nil
}

// List returns every installed trigger.
func (r *Registry) List(ctx context.Context) ([]model.Trigger, error) {
	return r.store.List(ctx)
}

// Remove deletes the triggers of handler.
func (r *Registry) Remove(ctx context.Context, handler string) (int, error) {
	return r.store.DeleteHandler(ctx, handler)
}
