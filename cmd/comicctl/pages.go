// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taibuivan/comicreader/internal/core/archive"
)

func newPagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pages <archive>",
		Short: "List the pages of a comic archive in reading order",
		Example: `  # Check how a .cbz will be paginated
  comicctl pages "Saga 01.cbz"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readFile(cmd, args[0])
			if err != nil {
				return err
			}

			names, err := archive.Scan(data)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return archive.ErrNoPages
			}

			for index, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", index, name)
			}
			return nil
		},
	}
}
