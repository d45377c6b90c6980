// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/taibuivan/comicreader/internal/core/progress"
	"github.com/taibuivan/comicreader/internal/platform/config"
	"github.com/taibuivan/comicreader/internal/platform/constants"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "comicctl",
		Short: "Comic reader maintenance tool",
		Long: `comicctl works against the same progress store and library as the API server.

Configuration is read from the environment and from a .env file when present.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
			slog.SetDefault(slog.New(handler).With(slog.String(constants.FieldApp, "comicctl")))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	cmd.AddCommand(
		newPagesCmd(),
		newLibraryCmd(),
		newProgressCmd(),
		newSettingsCmd(),
		newMigrateCmd(),
	)

	return cmd
}

// # Shared Helpers

// openStore opens the configured progress store. The caller closes it.
func openStore(cmd *cobra.Command) (progress.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	store, err := progress.Open(cmd.Context(), progress.Options{
		Driver:        cfg.StoreDriver,
		SQLitePath:    cfg.SQLitePath,
		DatabaseURL:   cfg.DatabaseURL,
		MigrationPath: cfg.MigrationPath,
		RedisURL:      cfg.RedisURL,
	}, slog.Default())
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

// printJSON writes value as indented JSON.
func printJSON(writer io.Writer, value any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// readFile reads an archive given on the command line, "-" meaning stdin.
func readFile(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
