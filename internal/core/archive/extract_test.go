// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package archive_test

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicreader/internal/core/archive"
	"github.com/taibuivan/comicreader/internal/platform/apperr"
	"github.com/taibuivan/comicreader/internal/platform/blob"
)

type zipEntry struct {
	name string
	data string
}

// buildZip writes entries into an in-memory ZIP using the Store method so
// tests can locate and corrupt payload bytes.
func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()

	var buffer bytes.Buffer
	writer := zip.NewWriter(&buffer)
	for _, entry := range entries {
		fileWriter, err := writer.CreateHeader(&zip.FileHeader{Name: entry.name, Method: zip.Store})
		require.NoError(t, err)
		_, err = io.WriteString(fileWriter, entry.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return buffer.Bytes()
}

func newExtractor(registry *blob.Registry, maxEntryBytes int64) *archive.Extractor {
	return archive.NewExtractor(registry, slog.New(slog.NewTextHandler(io.Discard, nil)), maxEntryBytes)
}

/*
TestExtract_OrderAndFilter covers natural ordering and the extension allow-list.
*/
func TestExtract_OrderAndFilter(t *testing.T) {
	registry := blob.NewRegistry()
	data := buildZip(t,
		zipEntry{"003.png", "three"},
		zipEntry{"001.jpg", "one"},
		zipEntry{"cover.txt", "not a page"},
		zipEntry{"002.webp", "two"},
	)

	pages, err := newExtractor(registry, 0).Extract(context.Background(), data, "comic-1")
	require.NoError(t, err)
	require.Len(t, pages, 3)

	assert.Equal(t, "001.jpg", pages[0].Name)
	assert.Equal(t, "002.webp", pages[1].Name)
	assert.Equal(t, "003.png", pages[2].Name)

	assert.Equal(t, "comic-1-page-0", pages[0].ID)
	assert.Equal(t, "image/webp", pages[1].ContentType)
	assert.Equal(t, 3, registry.Stats().Handles)

	// Handles resolve to the entry payloads
	payload, ok := registry.Open(pages[2].Handle)
	require.True(t, ok)
	assert.Equal(t, "three", string(payload.Data))
	assert.Equal(t, pages[2].ETag, payload.ETag)
}

/*
TestExtract_SkipsJunkAndDirectories ignores folders, hidden files and macOS forks.
*/
func TestExtract_SkipsJunkAndDirectories(t *testing.T) {
	data := buildZip(t,
		zipEntry{"chapter/", ""},
		zipEntry{"chapter/page10.JPG", "b"},
		zipEntry{"chapter/page9.jpeg", "a"},
		zipEntry{"__MACOSX/chapter/._page9.jpeg", "fork"},
		zipEntry{"chapter/.thumb.png", "hidden"},
	)

	pages, err := newExtractor(blob.NewRegistry(), 0).Extract(context.Background(), data, "c")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "chapter/page9.jpeg", pages[0].Name)
	assert.Equal(t, "chapter/page10.JPG", pages[1].Name)
}

/*
TestExtract_IndexDensity checks indices are 0..n-1 even when entries are skipped.
*/
func TestExtract_IndexDensity(t *testing.T) {
	data := buildZip(t,
		zipEntry{"01.png", "ok"},
		zipEntry{"02.png", "CORRUPT-PAYLOAD"},
		zipEntry{"03.png", "ok"},
	)

	// Flip a payload byte so the CRC check fails when the entry is read.
	offset := bytes.Index(data, []byte("CORRUPT-PAYLOAD"))
	require.Positive(t, offset)
	data[offset] = 'X'

	registry := blob.NewRegistry()
	pages, err := newExtractor(registry, 0).Extract(context.Background(), data, "c")
	require.NoError(t, err)
	require.Len(t, pages, 2)

	for i, page := range pages {
		assert.Equal(t, i, page.Index)
		assert.Equal(t, fmt.Sprintf("c-page-%d", i), page.ID)
	}
	assert.Equal(t, "03.png", pages[1].Name)
	assert.Equal(t, 2, registry.Stats().Handles)
}

/*
TestExtract_OversizeEntry skips entries beyond the configured cap.
*/
func TestExtract_OversizeEntry(t *testing.T) {
	data := buildZip(t,
		zipEntry{"1.png", "small"},
		zipEntry{"2.png", "this payload is far too large"},
	)

	pages, err := newExtractor(blob.NewRegistry(), 8).Extract(context.Background(), data, "c")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "1.png", pages[0].Name)
}

/*
TestExtract_Failures covers whole-operation failures.
*/
func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"not_a_zip", []byte("Rar!\x1a\x07\x00 definitely not zip"), archive.ErrMalformedArchive},
		{"empty_buffer", nil, archive.ErrMalformedArchive},
		{"no_images", buildZip(t, zipEntry{"ComicInfo.xml", "<x/>"}), archive.ErrNoPages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := blob.NewRegistry()
			pages, err := newExtractor(registry, 0).Extract(context.Background(), tt.data, "c")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, pages)
			assert.Equal(t, 0, registry.Stats().Handles)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, 422, ae.HTTPStatus)
		})
	}
}

/*
TestExtract_Cancelled releases everything when the caller gives up.
*/
func TestExtract_Cancelled(t *testing.T) {
	data := buildZip(t, zipEntry{"1.png", "a"}, zipEntry{"2.png", "b"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	registry := blob.NewRegistry()
	pages, err := newExtractor(registry, 0).Extract(ctx, data, "c")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, pages)
	assert.Equal(t, 0, registry.Stats().Handles)
}

/*
TestRelease_ExactlyOnce verifies Release reports only live handles.
*/
func TestRelease_ExactlyOnce(t *testing.T) {
	registry := blob.NewRegistry()
	data := buildZip(t, zipEntry{"1.png", "a"}, zipEntry{"2.png", "b"})

	pages, err := newExtractor(registry, 0).Extract(context.Background(), data, "c")
	require.NoError(t, err)

	assert.Equal(t, 2, archive.Release(registry, pages))
	assert.Equal(t, 0, archive.Release(registry, pages))
	assert.Equal(t, blob.Stats{}, registry.Stats())
}

/*
TestScan lists page names without materialising payloads.
*/
func TestScan(t *testing.T) {
	names, err := archive.Scan(buildZip(t,
		zipEntry{"page10.png", "x"},
		zipEntry{"page2.png", "x"},
		zipEntry{"notes.md", "x"},
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"page2.png", "page10.png"}, names)
}
