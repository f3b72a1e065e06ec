package main

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var dir string

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	migrateCmd.PersistentFlags().StringVar(&dir, "dir", "migrate", "Directory with the migration files")

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMigrator(cmd, dir)
			if err != nil {
				return err
			}
			defer m.Close()
			err = m.Up()
			if errors.Is(err, migrate.ErrNoChange) {
				log.Info().Msg("database is up to date")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to migrate up: %w", err)
			}
			return logVersion(m)
		},
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("steps must be positive, got %d", steps)
			}
			m, err := newMigrator(cmd, dir)
			if err != nil {
				return err
			}
			defer m.Close()
			if err := m.Steps(-steps); err != nil {
				return fmt.Errorf("failed to migrate down: %w", err)
			}
			return logVersion(m)
		},
	}
	downCmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to roll back")

	migrateCmd.AddCommand(upCmd, downCmd)
	return migrateCmd
}

func newMigrator(cmd *cobra.Command, dir string) (*migrate.Migrate, error) {
	cfg, err := loadConf()
	if err != nil {
		return nil, err
	}
	// the pgx/v5 driver registers itself under the pgx5 scheme
	dbURL, err := cfg.MigrateURL(cmd.Context(), "pgx5")
	if err != nil {
		return nil, err
	}
	m, err := migrate.New("file://"+dir, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

func logVersion(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		log.Info().Msg("no migrations applied")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migrated")
	return nil
}
