package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/monthly-invoicer/internal/billing"
)

var scheduleYear int

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "List the invoicing day of every month of a year",
	Args:  cobra.NoArgs,
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().IntVar(&scheduleYear, "year", 0, "Year (default: current year)")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	now := a.now()
	year := scheduleYear
	if year == 0 {
		year = now.Year()
	}
	today := billing.StartOfDay(now)

	fmt.Printf("Invoicing days %d (%s)\n", year, a.loc)
	fmt.Println("--------------------------------")
	for _, d := range billing.RunDates(year, a.loc) {
		mark := ""
		switch {
		case d.Equal(today):
			mark = "  <- today"
		case d.Before(today):
			mark = "  (past)"
		}
		last := billing.LastDayOfMonth(d)
		fmt.Printf("%s  %s %s  month-end %s %s%s\n",
			billing.PeriodOf(d), d.Format("Mon"), d.Format("2006-01-02"),
			last.Format("Mon"), last.Format("01-02"), mark)
	}
	return nil
}
