// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"errors"
)

// ErrDownload marks a failed archive download. Sources wrap it with the
// transport detail so callers can test with [errors.Is].
var ErrDownload = errors.New("library: download failed")

// Source is the storage the library is read from.
//
// # Contract
//
//   - Root returns the folder ID that series are listed under.
//   - ListFolders returns the direct sub-folders of parentID.
//   - ListArchives returns the archive files directly inside folderID.
//   - DownloadArchive returns the full archive bytes, or an error wrapping
//     [ErrDownload] on any non-success response.
type Source interface {
	Root() string
	ListFolders(context context.Context, parentID string) ([]Folder, error)
	ListArchives(context context.Context, folderID string) ([]ArchiveFile, error)
	DownloadArchive(context context.Context, fileID string) ([]byte, error)
}
