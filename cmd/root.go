package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "invoicer",
	Short: "Monthly invoice automation",
	Long: `invoicer generates the monthly invoice from a work-log spreadsheet.
It sums the hours of the month, fills a copy of the invoice template,
exports it to PDF, files the PDF, archives the copy and sends a mail.

Connection settings live in ~/.invoicer/config.json; business settings
(sheet IDs, payee, cells) in the property store, see "invoicer props".`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

// Execute is the entry point called from main.
func Execute() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.invoicer/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(triggerCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(propsCmd)
	rootCmd.AddCommand(hoursCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(authCmd)
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}
