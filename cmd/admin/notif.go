package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/deadlinr/backend/notif"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newNotifCmd() *cobra.Command {
	notifCmd := &cobra.Command{
		Use:   "notif",
		Short: "Inspect the notification queue",
	}

	var maxMessages int32
	peekCmd := &cobra.Command{
		Use:   "peek",
		Short: "Print queued notification events without deleting them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, awsCfg, err := loadAWS(cmd.Context())
			if err != nil {
				return err
			}
			if cfg.AWS.NotifQueueURL == "" {
				return errors.New("no notification queue configured")
			}
			pub := notif.NewSqsPublisher(sqs.NewFromConfig(awsCfg), cfg.AWS.NotifQueueURL)
			events, _, err := pub.Receive(cmd.Context(), maxMessages)
			if err != nil {
				return err
			}
			log.Info().Int("count", len(events)).Msg("received events")

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			for _, ev := range events {
				if err := enc.Encode(ev); err != nil {
					return err
				}
			}
			return nil
		},
	}
	peekCmd.Flags().Int32VarP(&maxMessages, "max", "n", 10, "Maximum number of messages to receive (1-10)")

	notifCmd.AddCommand(peekCmd)
	return notifCmd
}
