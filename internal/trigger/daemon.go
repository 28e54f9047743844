package trigger

import (
	"context"
	"log/slog"
	"time"
)

// Handler runs a triggered job and returns a status line for the log.
type Handler func(ctx context.Context, now time.Time) string

// Daemon fires due triggers. A trigger is due once per local day, as soon as
// the local hour reaches its hour.
type Daemon struct {
	store    Store
	handlers map[string]Handler
	loc      *time.Location
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewDaemon returns a Daemon that evaluates triggers every minute in loc.
func NewDaemon(store Store, loc *time.Location, log *slog.Logger) *Daemon {
	if log == nil {
		log = slog.Default()
	}
	return &Daemon{
		store:    store,
		handlers: map[string]Handler{},
		loc:      loc,
		interval: time.Minute,
		log:      log,
		now:      time.Now,
	}
}

// Handle registers h under name.
func (d *Daemon) Handle(name string, h Handler) {
	d.handlers[name] = h
}

// Run checks triggers immediately and then on every tick until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	d.log.Info("trigger daemon started", "interval", d.interval, "timezone", d.loc.String())
	if _, err := d.Tick(ctx, d.now()); err != nil {
		d.log.Error("trigger tick failed", "error", err)
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.log.Info("trigger daemon stopped")
			return nil
		case <-ticker.C:
			if _, err := d.Tick(ctx, d.now()); err != nil {
				d.log.Error("trigger tick failed", "error", err)
			}
		}
	}
}

// Tick fires every due trigger once, sequentially, and returns how many fired.
func (d *Daemon) Tick(ctx context.Context, now time.Time) (int, error) {
	local := now.In(d.loc)
	today := local.Format("2006-01-02")

	triggers, err := d.store.List(ctx)
	if err != nil {
		return 0, err
	}

	fired := 0
	for _, t := range triggers {
		if t.LastRun == today || local.Hour() < t.Hour {
			continue
		}
		h, ok := d.handlers[t.Handler]
		if !ok {
			d.log.Warn("no handler registered for trigger", "trigger", t.ID, "handler", t.Handler)
			continue
		}
		// Marked before running so a crashing handler does not refire all day.
		if err := d.store.MarkRun(ctx, t.ID, today); err != nil {
			return fired, err
		}
		status := h(ctx, local)
		d.log.Info("trigger fired", "trigger", t.ID, "handler", t.Handler, "status", status)
		fired++
	}
	return fired, nil
}
