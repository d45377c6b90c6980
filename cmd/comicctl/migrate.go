// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/taibuivan/comicreader/internal/platform/config"
	"github.com/taibuivan/comicreader/internal/platform/migration"
)

var errNoDatabaseURL = errors.New("DATABASE_URL is required for migrations")

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the postgres schema",
		Long: `Only the postgres store is migrated this way. The sqlite store creates its
tables on open and the redis and memory stores have no schema.`,
	}

	run := func(apply func(dsn, path string, logger *slog.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errNoDatabaseURL
			}
			return apply(cfg.DatabaseURL, cfg.MigrationPath, slog.Default())
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  run(migration.RunUp),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			Args:  cobra.NoArgs,
			RunE:  run(migration.RunDown),
		},
	)

	return cmd
}
