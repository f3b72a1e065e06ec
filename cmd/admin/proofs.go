package main

import (
	"fmt"

	"github.com/deadlinr/backend/s3bucket"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newProofsCmd() *cobra.Command {
	proofsCmd := &cobra.Command{
		Use:   "proofs",
		Short: "Inspect stored proof images",
	}

	lsCmd := &cobra.Command{
		Use:   "ls [owner-uuid]",
		Short: "List stored proof objects, optionally for one owner",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, awsCfg, err := loadAWS(cmd.Context())
			if err != nil {
				return err
			}
			prefix := "proofs/"
			if len(args) == 1 {
				prefix += args[0] + "/"
			}
			keys, err := s3bucket.NewS3Bucket(awsCfg, cfg.AWS.S3Bucket).ListFiles(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Println(k)
			}
			log.Info().Str("prefix", prefix).Int("count", len(keys)).Msg("listed proofs")
			return nil
		},
	}

	proofsCmd.AddCommand(lsCmd)
	return proofsCmd
}
