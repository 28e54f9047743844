package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Tiliavir/monthly-invoicer/internal/billing"
	"github.com/Tiliavir/monthly-invoicer/internal/config"
	"github.com/Tiliavir/monthly-invoicer/internal/model"
)

// Daily generates the invoice of today's month when today is an invoicing day.
// It never fails: the outcome is returned as a status line.
func (s *Service) Daily(ctx context.Context, props config.Properties, today time.Time) string {
	date := today.Format("2006-01-02")
	period := billing.PeriodOf(today)

	if !billing.ShouldRunToday(today) {
		s.log.Info("not an invoicing day", "date", date)
		now := s.now()
		s.recordRun(ctx, model.Run{
			ID:         uuid.NewString(),
			Period:     period.String(),
			StartedAt:  now,
			FinishedAt: now,
			Status:     model.RunSkipped,
		})
		return "skipped: " + date + " is not an invoicing day"
	}

	res, err := s.Create(ctx, props, period)
	if err != nil {
		return "error: " + err.Error()
	}
	return res.URL
}
