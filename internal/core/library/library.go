// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package library models the user's comic collection as it is found in storage.

A [Series] is one storage folder; its [Comic] entries are the archive files in
that folder, naturally ordered by name. Series themselves are ordered
alphabetically with locale-aware collation.

Comics are listed without pages. Pages are only materialised when a reading
session opens the comic (see package reader).
*/
package library

import (
	"path"
	"strings"
	"time"

	"github.com/taibuivan/comicreader/internal/core/archive"
)

// # Domain Models

// Comic is one archive file in the library.
type Comic struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FileID   string `json:"file_id"`
	SeriesID string `json:"series_id"`

	// Pages is empty in library listings and populated by extraction.
	Pages []archive.Page `json:"pages,omitempty"`

	CurrentPage int        `json:"current_page"`
	TotalPages  int        `json:"total_pages"`
	LastRead    *time.Time `json:"last_read,omitempty"`
	SizeBytes   int64      `json:"size_bytes"`
}

// Series is a named group of comics sharing a storage folder.
type Series struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	FolderID string  `json:"folder_id"`
	Comics   []Comic `json:"comics"`
}

// Folder is a storage folder as reported by a [Source].
type Folder struct {
	ID   string
	Name string
}

// ArchiveFile is an archive as reported by a [Source].
type ArchiveFile struct {
	ID   string
	Name string
	Size int64
}

// archiveExtensions are the file names offered as comics. A .cbr is listed but
// only its ZIP structure is ever parsed.
var archiveExtensions = map[string]bool{
	".cbz": true,
	".zip": true,
	".cbr": true,
}

// IsArchiveName reports whether a file name looks like a comic archive.
func IsArchiveName(name string) bool {
	return archiveExtensions[strings.ToLower(path.Ext(name))]
}

// DisplayName strips the archive extension from a file name.
func DisplayName(name string) string {
	if IsArchiveName(name) {
		return strings.TrimSuffix(name, path.Ext(name))
	}
	return name
}
