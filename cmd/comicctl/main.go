// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command comicctl inspects archives and manages reading progress, settings
// and the postgres schema from the shell, using the same configuration as the
// API server.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/taibuivan/comicreader/internal/platform/constants"
)

func main() {
	root := newRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(constants.AppVersion),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
