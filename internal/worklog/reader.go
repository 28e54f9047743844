package worklog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tiliavir/monthly-invoicer/internal/billing"
	"github.com/Tiliavir/monthly-invoicer/internal/model"
)

// RowSource returns the raw rows of a named sheet, header first.
type RowSource interface {
	Rows(ctx context.Context, fileID, sheet string) ([][]any, error)
}

// Reader fetches the work-log entries of a billing period.
type Reader struct {
	src RowSource
	loc *time.Location
	log *slog.Logger
}

// NewReader returns a Reader interpreting dates in loc.
func NewReader(src RowSource, loc *time.Location, log *slog.Logger) *Reader {
	if log == nil {
		log = slog.Default()
	}
	return &Reader{src: src, loc: loc, log: log}
}

// Fetch loads the sheet and returns the entries dated within p.
func (r *Reader) Fetch(ctx context.Context, fileID, sheet string, p billing.Period) ([]model.WorkLogEntry, error) {
	rows, err := r.src.Rows(ctx, fileID, sheet)
	if err != nil {
		return nil, fmt.Errorf("reading work log: %w", err)
	}
	entries, skipped := ParseRows(rows, r.loc)
	if skipped > 0 {
		r.log.Debug("skipped work-log rows with invalid date or hours", "skipped", skipped, "sheet", sheet)
	}
	inPeriod := FilterPeriod(entries, p)
	r.log.Debug("work log loaded", "rows", len(rows), "entries", len(entries), "period", p.String(), "in_period", len(inPeriod))
	return inPeriod, nil
}
