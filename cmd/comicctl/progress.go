// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taibuivan/comicreader/internal/core/progress"
	"github.com/taibuivan/comicreader/internal/platform/validate"
)

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Inspect or edit saved reading positions",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved positions, most recently read first",
			Args:  cobra.NoArgs,
			RunE: withService(func(cmd *cobra.Command, service *progress.Service, args []string) error {
				list, err := service.ListProgress(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), list)
			}),
		},
		&cobra.Command{
			Use:   "get <comic-id>",
			Short: "Show the saved position of a comic",
			Args:  cobra.ExactArgs(1),
			RunE: withService(func(cmd *cobra.Command, service *progress.Service, args []string) error {
				saved, err := service.GetProgress(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), saved)
			}),
		},
		&cobra.Command{
			Use:   "set <comic-id> <page>",
			Short: "Save a zero-based page position for a comic",
			Args:  cobra.ExactArgs(2),
			RunE: withService(func(cmd *cobra.Command, service *progress.Service, args []string) error {
				page, err := strconv.Atoi(args[1])
				if err != nil {
					return validate.RequiredError(progress.FieldCurrentPage, "Must be an integer")
				}

				saved, err := service.SaveProgress(cmd.Context(), progress.Progress{ComicID: args[0], CurrentPage: page})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), saved)
			}),
		},
	)

	return cmd
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect or edit the global reading settings",
	}

	var (
		fitMode          string
		pageLayout       string
		readingDirection string
		backgroundColor  string
		showProgress     bool
	)

	set := &cobra.Command{
		Use:   "set",
		Short: "Change settings; omitted flags keep their value",
		Example: `  # Read manga
  comicctl settings set --direction rtl --layout double`,
		Args: cobra.NoArgs,
		RunE: withService(func(cmd *cobra.Command, service *progress.Service, args []string) error {
			settings, err := service.GetSettings(cmd.Context())
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("fit") {
				settings.FitMode = progress.FitMode(fitMode)
			}
			if flags.Changed("layout") {
				settings.PageLayout = progress.PageLayout(pageLayout)
			}
			if flags.Changed("direction") {
				settings.ReadingDirection = progress.ReadingDirection(readingDirection)
			}
			if flags.Changed("background") {
				settings.BackgroundColor = backgroundColor
			}
			if flags.Changed("show-progress") {
				settings.ShowProgress = showProgress
			}

			updated, err := service.UpdateSettings(cmd.Context(), settings)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), updated)
		}),
	}

	set.Flags().StringVar(&fitMode, "fit", "", "Fit mode: width, height or page")
	set.Flags().StringVar(&pageLayout, "layout", "", "Page layout: single, double or continuous")
	set.Flags().StringVar(&readingDirection, "direction", "", "Reading direction: ltr or rtl")
	set.Flags().StringVar(&backgroundColor, "background", "", "Background colour, for example #000000")
	set.Flags().BoolVar(&showProgress, "show-progress", true, "Show the page progress bar")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Show the current settings",
			Args:  cobra.NoArgs,
			RunE: withService(func(cmd *cobra.Command, service *progress.Service, args []string) error {
				settings, err := service.GetSettings(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), settings)
			}),
		},
		set,
	)

	return cmd
}

// withService opens the store around a command body.
func withService(run func(*cobra.Command, *progress.Service, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		return run(cmd, progress.NewService(store, slog.Default()), args)
	}
}
