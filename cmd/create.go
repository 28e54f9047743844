package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/monthly-invoicer/internal/billing"
)

var createPeriod string

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate the invoice for a month now, regardless of the schedule",
	Args:  cobra.NoArgs,
	RunE:  runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createPeriod, "period", "", "Billing month YYYY-MM (default: current month)")
}

func runCreate(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	period, err := periodOrCurrent(createPeriod, a.now())
	if err != nil {
		return err
	}
	props, err := a.resolve(ctx)
	if err != nil {
		return err
	}
	svc, err := a.service(ctx)
	if err != nil {
		return err
	}

	res, err := svc.Create(ctx, props, period)
	if err != nil {
		return err
	}
	fmt.Printf("Invoice created for %s\n", res.Period)
	fmt.Printf("  File:   %s\n", res.FileName)
	fmt.Printf("  URL:    %s\n", res.URL)
	fmt.Printf("  Hours:  %g\n", res.TotalHours)
	fmt.Printf("  Amount: %s\n", res.Amount)
	return nil
}

// periodOrCurrent parses a --period flag, defaulting to the month of now.
func periodOrCurrent(flag string, now time.Time) (billing.Period, error) {
	if flag == "" {
		return billing.PeriodOf(now), nil
	}
	p, err := billing.ParsePeriod(flag)
	if err != nil {
		return billing.Period{}, fmt.Errorf("invalid --period value %q: %w", flag, err)
	}
	return p, nil
}
