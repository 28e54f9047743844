package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/monthly-invoicer/internal/config"
	"github.com/Tiliavir/monthly-invoicer/internal/msgraph"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Sign in to external services",
}

var authOutlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Sign in to Microsoft 365 for the outlook notification backend",
	Args:  cobra.NoArgs,
	RunE:  runAuthOutlook,
}

func init() {
	authCmd.AddCommand(authOutlookCmd)
}

func runAuthOutlook(cmd *cobra.Command, args []string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	file, err := msgraph.DefaultTokenFile()
	if err != nil {
		return err
	}
	if _, err := msgraph.Login(cmd.Context(), settings.Outlook.TenantID, settings.Outlook.ClientID, file, cmd.OutOrStdout()); err != nil {
		return err
	}
	fmt.Printf("Signed in. Token saved to %s\n", file)
	if settings.Notify.Backend != config.NotifyOutlook {
		fmt.Printf("Set \"notify.backend\" to %q in the config to send notifications through Outlook.\n", config.NotifyOutlook)
	}
	return nil
}
