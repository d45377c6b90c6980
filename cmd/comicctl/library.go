// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/taibuivan/comicreader/internal/core/library"
	"github.com/taibuivan/comicreader/internal/platform/drive"
)

func newLibraryCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "library",
		Short: "List the series and comics of the configured library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			source, err := library.OpenSource(cmd.Context(), library.SourceOptions{
				Kind:        cfg.LibrarySource,
				Dir:         cfg.LibraryDir,
				DriveRootID: cfg.DriveRootFolderID,
				DriveCredentials: drive.Credentials{
					APIKey:          cfg.DriveAPIKey,
					AccessToken:     cfg.DriveAccessToken,
					CredentialsFile: cfg.DriveCredentialFile,
				},
			}, slog.Default())
			if err != nil {
				return err
			}

			series, err := library.NewCatalog(source, store, slog.Default()).Load(cmd.Context(), true)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), series)
			}

			out := cmd.OutOrStdout()
			for _, s := range series {
				fmt.Fprintf(out, "%s (%d)\n", s.Name, len(s.Comics))
				for _, comic := range s.Comics {
					position := "unread"
					if comic.LastRead != nil {
						position = fmt.Sprintf("page %d", comic.CurrentPage+1)
					}
					fmt.Fprintf(out, "  %-40s %-10s %s\n", comic.Name, position, comic.ID)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the listing as JSON")

	return cmd
}
