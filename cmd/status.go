package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/monthly-invoicer/internal/billing"
	"github.com/Tiliavir/monthly-invoicer/internal/config"
	"github.com/Tiliavir/monthly-invoicer/internal/storage"
	"github.com/Tiliavir/monthly-invoicer/internal/trigger"
)

var statusRuns int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the next invoicing day, the triggers and recent runs",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusRuns, "runs", 5, "Number of recent runs to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()
	now := a.now()

	fmt.Printf("Today: %s (%s)\n", now.Format("2006-01-02 Mon"), a.loc)
	if billing.ShouldRunToday(now) {
		fmt.Println("Today is the invoicing day.")
	} else {
		next := billing.NextRunDate(now)
		fmt.Printf("Next invoicing day: %s (invoice %s)\n",
			next.Format("2006-01-02 Mon"), billing.PeriodOf(next).InvoiceNumber())
	}
	fmt.Printf("Output: %s, notifications: %s\n", a.settings.Output.Backend, a.settings.Notify.Backend)

	ts, err := trigger.NewRegistry(a.triggers).List(ctx)
	if err != nil {
		return err
	}
	if len(ts) == 0 {
		fmt.Println("Trigger: none (invoicer trigger set)")
	}
	for _, t := range ts {
		last := t.LastRun
		if last == "" {
			last = "never"
		}
		fmt.Printf("Trigger: %s at %02d:00, last run %s\n", t.Handler, t.Hour, last)
	}

	if a.settings.Output.Backend == config.OutputLocal {
		props, err := a.resolve(ctx)
		if err != nil {
			return err
		}
		l, err := storage.NewLocal(a.settings.Output.LocalDir)
		if err != nil {
			return err
		}
		if err := printLocalInvoices(os.Stdout, l, props.InvoiceOutputFolderID, statusRuns); err != nil {
			return err
		}
	}

	runs, err := a.runs.Recent(ctx, statusRuns)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	fmt.Println()
	fmt.Println("Recent runs:")
	for _, r := range runs {
		took := formatElapsed(int64(r.FinishedAt.Sub(r.StartedAt).Seconds()))
		detail := r.URL
		if r.Error != "" {
			detail = r.Error
		}
		fmt.Printf("  %s  %-8s %-7s %6s  %s\n",
			r.StartedAt.In(a.loc).Format("2006-01-02 15:04"), r.Period, r.Status, took, detail)
	}
	return nil
}

// printLocalInvoices lists the newest n PDFs filed by the local output backend.
func printLocalInvoices(w io.Writer, l *storage.Local, folder string, n int) error {
	files, err := l.List(folder)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(w, "Invoices: none filed yet")
		return nil
	}
	if n > 0 && len(files) > n {
		files = files[len(files)-n:]
	}
	fmt.Fprintln(w, "Invoices:")
	for i := len(files) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "  %s\n", files[i].Name)
	}
	return nil
}

// formatElapsed renders seconds as "1h 2m 3s", dropping leading zero units.
func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
