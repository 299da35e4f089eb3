package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/mediminder/internal/cli"
	"github.com/example/mediminder/internal/version"
	"github.com/example/mediminder/internal/wire"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "mediminder",
		Short:   "MediMinder - medication reminders over Telegram",
		Version: version.String(),
		Long: `MediMinder sends medication reminders over Telegram at each scheduled
time of day, handles Taken/Snooze responses, and escalates unanswered doses.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			wire.SetConfigPath(configPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.mediminder/config.yaml)")

	// Engine
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.TickCmd())

	// Ledger
	rootCmd.AddCommand(cli.MedCmd())
	rootCmd.AddCommand(cli.UserCmd())
	rootCmd.AddCommand(cli.RemindersCmd())
	rootCmd.AddCommand(cli.CallsCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
