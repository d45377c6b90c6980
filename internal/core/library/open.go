// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/taibuivan/comicreader/internal/platform/drive"
)

const (
	SourceDir   = "dir"
	SourceDrive = "drive"
)

// ErrUnknownSource is returned for an unsupported LIBRARY_SOURCE value.
var ErrUnknownSource = errors.New("library: unknown source")

// SourceOptions carries the settings of every source kind; only the fields of
// the selected Kind are read.
type SourceOptions struct {
	Kind string
	Dir  string

	DriveRootID      string
	DriveCredentials drive.Credentials
}

// OpenSource builds the [Source] named by options.Kind.
func OpenSource(context context.Context, options SourceOptions, logger *slog.Logger) (Source, error) {
	switch options.Kind {
	case SourceDir:
		return NewDirSource(options.Dir), nil

	case SourceDrive:
		client, err := drive.NewClient(context, options.DriveRootID, options.DriveCredentials, logger)
		if err != nil {
			return nil, err
		}
		return NewDriveSource(client), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, options.Kind)
}
