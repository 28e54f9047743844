package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/monthly-invoicer/internal/trigger"
)

var triggerHour int

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Manage the daily trigger run by \"invoicer serve\"",
}

var triggerSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Install the daily trigger, replacing any existing one",
	Args:  cobra.NoArgs,
	RunE:  runTriggerSet,
}

var triggerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed triggers",
	Args:  cobra.NoArgs,
	RunE:  runTriggerList,
}

var triggerRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the daily trigger",
	Args:  cobra.NoArgs,
	RunE:  runTriggerRemove,
}

func init() {
	triggerSetCmd.Flags().IntVar(&triggerHour, "hour", -1, "Hour of day 0-23 (default from config, 9)")
	triggerCmd.AddCommand(triggerSetCmd)
	triggerCmd.AddCommand(triggerListCmd)
	triggerCmd.AddCommand(triggerRemoveCmd)
}

func runTriggerSet(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	hour := triggerHour
	if hour < 0 {
		hour = a.settings.Trigger.Hour
	}
	t, removed, err := trigger.NewRegistry(a.triggers).Install(cmd.Context(), trigger.HandlerDaily, hour)
	if err != nil {
		return err
	}
	fmt.Printf("Daily trigger installed: every day at %02d:00 %s (id %s)\n", t.Hour, a.loc, t.ID)
	if removed > 0 {
		fmt.Printf("Replaced %d existing trigger(s).\n", removed)
	}
	return nil
}

func runTriggerList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ts, err := trigger.NewRegistry(a.triggers).List(cmd.Context())
	if err != nil {
		return err
	}
	if len(ts) == 0 {
		fmt.Println("No triggers installed. Install one with: invoicer trigger set")
		return nil
	}
	fmt.Printf("%-8s%-7s%-12s%s\n", "HANDLER", "HOUR", "LAST RUN", "ID")
	for _, t := range ts {
		last := t.LastRun
		if last == "" {
			last = "never"
		}
		fmt.Printf("%-8s%02d:00  %-12s%s\n", t.Handler, t.Hour, last, t.ID)
	}
	return nil
}

func runTriggerRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := trigger.NewRegistry(a.triggers).Remove(cmd.Context(), trigger.HandlerDaily)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d trigger(s).\n", n)
	return nil
}
