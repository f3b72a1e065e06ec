package main

import (
	"fmt"
	"time"

	"github.com/deadlinr/backend/ratelimit"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newAttemptsCmd() *cobra.Command {
	attemptsCmd := &cobra.Command{
		Use:   "attempts",
		Short: "Inspect upload attempts kept for rate limiting",
	}

	var olderThan time.Duration
	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete postgres upload attempts that no longer affect the limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan < ratelimit.DefaultWindow {
				return fmt.Errorf("--older-than must be at least %s, attempts inside the window still count", ratelimit.DefaultWindow)
			}
			pool, err := connectPg(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			cutoff := time.Now().Add(-olderThan)
			n, err := ratelimit.NewPgAttemptStore(pool).PruneBefore(cmd.Context(), cutoff)
			if err != nil {
				return err
			}
			log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("pruned upload attempts")
			return nil
		},
	}
	pruneCmd.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Delete attempts older than this")

	attemptsCmd.AddCommand(pruneCmd)
	return attemptsCmd
}
