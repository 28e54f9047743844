package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/monthly-invoicer/internal/invoice"
	"github.com/Tiliavir/monthly-invoicer/internal/trigger"
)

var dailyDate string

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Generate the invoice if today is the invoicing day (for cron)",
	Long: `daily is what the scheduler runs once a day. It creates the invoice only
on the invoicing day: the day before month-end, pulled forward to Thursday
when month-end or the day before it falls on a weekend.`,
	Args: cobra.NoArgs,
	RunE: runDaily,
}

func init() {
	dailyCmd.Flags().StringVar(&dailyDate, "date", "", "Act as if today were this date (YYYY-MM-DD)")
}

func runDaily(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	today := a.now()
	if dailyDate != "" {
		today, err = time.ParseInLocation("2006-01-02", dailyDate, a.loc)
		if err != nil {
			return fmt.Errorf("invalid --date value %q: %w", dailyDate, err)
		}
	}

	svc, err := a.service(ctx)
	if err != nil {
		return err
	}
	status := dailyHandler(a, svc)(ctx, today)
	if strings.HasPrefix(status, "error: ") {
		return errors.New(strings.TrimPrefix(status, "error: "))
	}
	fmt.Println(status)
	return nil
}

// dailyHandler resolves the properties afresh on every call and runs the
// daily check.
func dailyHandler(a *app, svc *invoice.Service) trigger.Handler {
	return func(ctx context.Context, now time.Time) string {
		props, err := a.resolve(ctx)
		if err != nil {
			return "error: " + err.Error()
		}
		return svc.Daily(ctx, props, now)
	}
}
