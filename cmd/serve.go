package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Tiliavir/monthly-invoicer/internal/trigger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the installed triggers until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	svc, err := a.service(ctx)
	if err != nil {
		return err
	}

	ts, err := trigger.NewRegistry(a.triggers).List(ctx)
	if err != nil {
		return err
	}
	if len(ts) == 0 {
		a.log.Warn("no triggers installed; nothing will run until \"invoicer trigger set\"")
	}

	d := trigger.NewDaemon(a.triggers, a.loc, a.log)
	d.Handle(trigger.HandlerDaily, dailyHandler(a, svc))
	return d.Run(ctx)
}
