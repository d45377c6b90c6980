// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package archive turns raw comic archive bytes into ordered, viewable pages.

Only ZIP container structure is parsed. A ".cbr" file that is really a ZIP
opens fine; a true RAR container fails as a malformed archive.

Pipeline:

  - Open: parse the ZIP central directory from the in-memory buffer.
  - Filter: drop directories, OS metadata and non-image entries.
  - Order: sort the survivors with [natsort.Compare] on the entry path.
  - Materialise: read each entry and allocate a [blob.Handle] for it.

An entry that cannot be read is skipped with a warning. Indices are assigned
after the skip, so the resulting page indices are always dense.
*/
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"golang.org/x/crypto/blake2b"

	"github.com/taibuivan/comicreader/internal/platform/blob"
	"github.com/taibuivan/comicreader/pkg/natsort"
)

// DefaultMaxEntryBytes caps the decompressed size of a single page.
const DefaultMaxEntryBytes int64 = 64 << 20

// # Extractor

// Extractor materialises archive entries into pages backed by a [blob.Registry].
type Extractor struct {
	registry      *blob.Registry
	logger        *slog.Logger
	maxEntryBytes int64
}

// NewExtractor constructs an [Extractor]. A non-positive maxEntryBytes selects
// [DefaultMaxEntryBytes].
func NewExtractor(registry *blob.Registry, logger *slog.Logger, maxEntryBytes int64) *Extractor {
	if maxEntryBytes <= 0 {
		maxEntryBytes = DefaultMaxEntryBytes
	}
	return &Extractor{
		registry:      registry,
		logger:        logger,
		maxEntryBytes: maxEntryBytes,
	}
}

/*
Extract converts an archive buffer into the ordered page list of a comic.

Parameters:
  - context: context.Context (checked between entries)
  - data: []byte (raw ZIP bytes)
  - comicID: string (prefix for page identifiers)

Returns:
  - []Page: Pages with dense indices and live handles
  - error: ErrMalformedArchive, ErrNoPages or the context error
*/
func (extractor *Extractor) Extract(context context.Context, data []byte, comicID string) ([]Page, error) {
	files, err := pageFiles(data)
	if err != nil {
		return nil, err
	}

	pages := make([]Page, 0, len(files))
	for _, file := range files {

		// Abandoned extractions must not leak the handles allocated so far
		if err := context.Err(); err != nil {
			Release(extractor.registry, pages)
			return nil, err
		}

		entry, err := extractor.readEntry(file)
		if err != nil {
			extractor.logger.Warn("archive_entry_skipped",
				slog.String("comic_id", comicID),
				slog.String("entry", file.Name),
				slog.Any("error", err),
			)
			continue
		}

		pages = append(pages, extractor.materialise(comicID, len(pages), entry))
	}

	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	extractor.logger.Debug("archive_extracted",
		slog.String("comic_id", comicID),
		slog.Int("entries", len(files)),
		slog.Int("pages", len(pages)),
	)

	return pages, nil
}

// Scan returns the naturally ordered names of the page entries without
// reading their payloads.
func Scan(data []byte) ([]string, error) {
	files, err := pageFiles(data)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(files))
	for i, file := range files {
		names[i] = file.Name
	}
	return names, nil
}

// Release revokes every page handle and reports how many were still live.
func Release(registry *blob.Registry, pages []Page) int {
	released := 0
	for _, page := range pages {
		if registry.Revoke(page.Handle) {
			released++
		}
	}
	return released
}

// # Internal Helpers

// pageFiles opens the container and returns its page entries in natural order.
func pageFiles(data []byte) ([]*zip.File, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("archive: %w: %w", ErrMalformedArchive, err)
	}

	files := make([]*zip.File, 0, len(reader.File))
	for _, file := range reader.File {
		if file.FileInfo().IsDir() || isJunk(file.Name) || !IsImage(file.Name) {
			continue
		}
		files = append(files, file)
	}

	slices.SortStableFunc(files, func(a, b *zip.File) int {
		return natsort.Compare(a.Name, b.Name)
	})

	return files, nil
}

// readEntry decompresses one entry, enforcing the size cap.
func (extractor *Extractor) readEntry(file *zip.File) (Entry, error) {
	if file.UncompressedSize64 > uint64(extractor.maxEntryBytes) {
		return Entry{}, fmt.Errorf("entry exceeds %d bytes", extractor.maxEntryBytes)
	}

	reader, err := file.Open()
	if err != nil {
		return Entry{}, fmt.Errorf("open entry: %w", err)
	}
	defer reader.Close()

	// The declared size can lie; bound the actual read as well.
	data, err := io.ReadAll(io.LimitReader(reader, extractor.maxEntryBytes+1))
	if err != nil {
		return Entry{}, fmt.Errorf("read entry: %w", err)
	}
	if int64(len(data)) > extractor.maxEntryBytes {
		return Entry{}, fmt.Errorf("entry exceeds %d bytes", extractor.maxEntryBytes)
	}

	return Entry{Name: file.Name, Data: data}, nil
}

// materialise allocates the display handle and builds the page record.
func (extractor *Extractor) materialise(comicID string, index int, entry Entry) Page {
	sum := blake2b.Sum256(entry.Data)
	etag := hex.EncodeToString(sum[:16])
	contentType := ContentType(entry.Name)

	handle := extractor.registry.Create(blob.Blob{
		Data:        entry.Data,
		ContentType: contentType,
		ETag:        etag,
	})

	return Page{
		ID:          PageID(comicID, index),
		ComicID:     comicID,
		Index:       index,
		Name:        entry.Name,
		ContentType: contentType,
		Size:        len(entry.Data),
		ETag:        etag,
		Handle:      handle,
		Data:        entry.Data,
	}
}
