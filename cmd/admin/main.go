package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	var logLevel string
	var logFile string

	rootCmd := &cobra.Command{
		Use:   "deadlinr-admin",
		Short: "Admin CLI tool for deadlinr",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogger(logLevel, logFile)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level [debug, info, warn, error]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append logs to this file instead of stderr")

	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newModeratorCmd())
	rootCmd.AddCommand(newAttemptsCmd())
	rootCmd.AddCommand(newNotifCmd())
	rootCmd.AddCommand(newProofsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}
