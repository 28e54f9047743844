package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/monthly-invoicer/internal/billing"
	"github.com/Tiliavir/monthly-invoicer/internal/model"
	"github.com/Tiliavir/monthly-invoicer/internal/worklog"
)

var (
	hoursPeriod string
	hoursFormat string
)

var hoursCmd = &cobra.Command{
	Use:   "hours",
	Short: "Show the work-log entries and total hours of a month",
	Args:  cobra.NoArgs,
	RunE:  runHours,
}

func init() {
	hoursCmd.Flags().StringVar(&hoursPeriod, "period", "", "Billing month YYYY-MM (default: current month)")
	hoursCmd.Flags().StringVar(&hoursFormat, "format", "md", "Output format: md, csv, json")
}

func runHours(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	period, err := periodOrCurrent(hoursPeriod, a.now())
	if err != nil {
		return err
	}
	props, err := a.resolve(ctx)
	if err != nil {
		return err
	}
	g, err := a.workspace(ctx)
	if err != nil {
		return err
	}
	entries, err := worklog.NewReader(g, a.loc, a.log).Fetch(ctx, props.WorkLogFileID, props.WorkLogSheetName, period)
	if err != nil {
		return err
	}
	total := worklog.BilledHours(entries)

	switch hoursFormat {
	case "csv":
		printHoursCSV(entries)
	case "json":
		data, err := json.MarshalIndent(struct {
			Period     string               `json:"period"`
			Entries    []model.WorkLogEntry `json:"entries"`
			TotalHours float64              `json:"total_hours"`
		}{period.String(), entries, total}, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
		fmt.Println(string(data))
	default: // md
		printHours(period, entries, total)
	}
	return nil
}

func printHours(p billing.Period, entries []model.WorkLogEntry, total float64) {
	fmt.Printf("Period %s (invoice %s)\n", p, p.InvoiceNumber())
	fmt.Println("--------------------------------")
	if len(entries) == 0 {
		fmt.Println("No entries found.")
	}
	for _, e := range entries {
		fmt.Printf("%s  %6s h  %s\n", e.Date.Format("2006-01-02"), formatHours(e.Hours), e.Description)
	}
	fmt.Println("--------------------------------")
	fmt.Printf("%-12s%6s h\n", "Total", formatHours(total))
}

func printHoursCSV(entries []model.WorkLogEntry) {
	fmt.Println("id,date,hours,description")
	for _, e := range entries {
		fmt.Printf("%s,%s,%s,%s\n",
			csvEscape(e.ID),
			csvEscape(e.Date.Format("2006-01-02")),
			formatHours(e.Hours),
			csvEscape(e.Description),
		)
	}
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// csvEscape quotes a field containing a comma, quote or line break.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
