// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package archive

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/taibuivan/comicreader/internal/platform/apperr"
	"github.com/taibuivan/comicreader/internal/platform/blob"
)

// ── Aggregate ────────────────────────────────────────────────────────────────

// Entry is a single file inside an archive. It only lives during extraction.
type Entry struct {
	Name string
	Data []byte
}

// Page is one image of a comic in reading order.
//
// # Lifecycle
//
// Pages are created in bulk by [Extractor.Extract]. Each page owns a
// [blob.Handle] that must be released with [Release] when the comic is
// closed or its page list replaced.
type Page struct {
	ID          string      `json:"id"`    // "<comicID>-page-<index>".
	ComicID     string      `json:"comic_id"`
	Index       int         `json:"index"` // Dense, zero-based.
	Name        string      `json:"name"`  // Entry path inside the archive.
	ContentType string      `json:"content_type"`
	Size        int         `json:"size"`
	ETag        string      `json:"etag"`
	Handle      blob.Handle `json:"handle"`
	Data        []byte      `json:"-"`
}

// PageID builds the stable identifier of a page within one extraction.
func PageID(comicID string, index int) string {
	return fmt.Sprintf("%s-page-%d", comicID, index)
}

// ── Errors ───────────────────────────────────────────────────────────────────

var (
	// ErrMalformedArchive is returned when the buffer is not a ZIP container.
	ErrMalformedArchive = &apperr.AppError{
		Code:       "MALFORMED_ARCHIVE",
		Message:    "Failed to open comic: the file is not a readable ZIP archive",
		HTTPStatus: http.StatusUnprocessableEntity,
	}

	// ErrNoPages is returned when a valid container holds no readable images.
	ErrNoPages = &apperr.AppError{
		Code:       "NO_PAGES",
		Message:    "Failed to open comic: the archive contains no readable pages",
		HTTPStatus: http.StatusUnprocessableEntity,
	}
)

// ── Format Rules ─────────────────────────────────────────────────────────────

// contentTypes maps the page allow-list to MIME types.
var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// IsImage reports whether name carries one of the page extensions (case-insensitive).
func IsImage(name string) bool {
	_, ok := contentTypes[strings.ToLower(path.Ext(name))]
	return ok
}

// ContentType returns the MIME type for a page name, or "application/octet-stream".
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// isJunk filters OS metadata that often rides along in comic archives.
func isJunk(name string) bool {
	if strings.HasPrefix(name, "__MACOSX/") {
		return true
	}
	return strings.HasPrefix(path.Base(name), ".")
}
