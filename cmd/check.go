package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/monthly-invoicer/internal/diagnose"
)

var checkPeriod string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Troubleshoot the configured spreadsheets and folders",
}

var checkWorkLogCmd = &cobra.Command{
	Use:   "worklog",
	Short: "Read the work-log sheet and show what would be billed",
	Args:  cobra.NoArgs,
	RunE:  runCheckWorkLog,
}

var checkPropsCmd = &cobra.Command{
	Use:   "props",
	Short: "Validate the properties and open every configured file and folder",
	Args:  cobra.NoArgs,
	RunE:  runCheckProps,
}

var checkFileCmd = &cobra.Command{
	Use:   "file ID",
	Short: "Check that a file or folder ID can be opened",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckFile,
}

func init() {
	checkWorkLogCmd.Flags().StringVar(&checkPeriod, "period", "", "Billing month YYYY-MM (default: current month)")
	checkCmd.AddCommand(checkWorkLogCmd)
	checkCmd.AddCommand(checkPropsCmd)
	checkCmd.AddCommand(checkFileCmd)
}

func runCheckWorkLog(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	period, err := periodOrCurrent(checkPeriod, a.now())
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

	r, err := diagnose.NewChecker(g, a.loc).WorkLog(ctx, props, period)
	if err != nil {
		return err
	}
	fmt.Printf("Spreadsheet: %s\n", r.FileID)
	fmt.Printf("Sheets:      %s\n", strings.Join(r.Sheets, ", "))
	if !r.Found {
		return fmt.Errorf("sheet %q not found; set WORK_LOG_SHEET_NAME to one of: %s",
			r.Sheet, strings.Join(r.Sheets, ", "))
	}
	fmt.Printf("Sheet:       %s (%d rows incl. header)\n", r.Sheet, r.Rows)
	fmt.Printf("Header:      %s\n", strings.Join(r.Header, " | "))
	fmt.Printf("Entries:     %d valid, %d skipped (bad date or hours)\n", r.Entries, r.Skipped)
	fmt.Printf("%s:     %d entries, %s h\n", r.Period, r.PeriodRows, formatHours(r.PeriodHours))
	return nil
}

func runCheckProps(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	props, err := a.resolve(ctx)
	if err != nil {
		return err
	}
	validErr := props.Validate()
	if validErr != nil {
		fmt.Printf("Configuration: %v\n", validErr)
	} else {
		fmt.Println("Configuration: all required properties set")
	}

	g, err := a.workspace(ctx)
	if err != nil {
		return err
	}
	failed := 0
	for _, c := range diagnose.NewChecker(g, a.loc).Files(ctx, props) {
		printFileCheck(c)
		if !c.OK() {
			failed++
		}
	}
	if validErr != nil {
		return validErr
	}
	if failed > 0 {
		return fmt.Errorf("%d configured file(s) cannot be opened", failed)
	}
	return nil
}

func runCheckFile(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	g, err := a.workspace(ctx)
	if err != nil {
		return err
	}
	c := diagnose.NewChecker(g, a.loc).File(ctx, "", args[0])
	printFileCheck(c)
	return c.Err
}

func printFileCheck(c diagnose.FileCheck) {
	label := c.ID
	if c.Key != "" {
		label = c.Key + " " + c.ID
	}
	if !c.OK() {
		fmt.Printf("  FAIL %s: %v\n", label, c.Err)
		return
	}
	fmt.Printf("  ok   %s: %s (%s) %s\n", label, c.Info.Name, c.Info.MimeType, c.Info.URL)
}
