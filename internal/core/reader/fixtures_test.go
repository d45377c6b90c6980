// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader_test

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicreader/internal/core/archive"
	"github.com/taibuivan/comicreader/internal/core/library"
	"github.com/taibuivan/comicreader/internal/core/progress"
	"github.com/taibuivan/comicreader/internal/core/reader"
	"github.com/taibuivan/comicreader/internal/platform/blob"
)

// memorySource serves archives from memory under a single "Series" folder.
// A gated file blocks its download until the gate is closed.
type memorySource struct {
	mu       sync.Mutex
	archives map[string][]byte
	failing  map[string]bool
	gates    map[string]chan struct{}
	started  chan string
}

func newMemorySource() *memorySource {
	return &memorySource{
		archives: make(map[string][]byte),
		failing:  make(map[string]bool),
		gates:    make(map[string]chan struct{}),
		started:  make(chan string, 16),
	}
}

func (source *memorySource) add(fileID string, data []byte) {
	source.mu.Lock()
	defer source.mu.Unlock()
	source.archives[fileID] = data
}

func (source *memorySource) Root() string { return "root" }

func (source *memorySource) ListFolders(_ context.Context, parentID string) ([]library.Folder, error) {
	if parentID != "root" {
		return nil, nil
	}
	return []library.Folder{{ID: "series", Name: "Series"}}, nil
}

func (source *memorySource) ListArchives(_ context.Context, folderID string) ([]library.ArchiveFile, error) {
	if folderID != "series" {
		return nil, nil
	}

	source.mu.Lock()
	defer source.mu.Unlock()

	files := make([]library.ArchiveFile, 0, len(source.archives))
	for id, data := range source.archives {
		files = append(files, library.ArchiveFile{ID: id, Name: id + ".cbz", Size: int64(len(data))})
	}
	slices.SortFunc(files, func(a, b library.ArchiveFile) int { return strings.Compare(a.ID, b.ID) })
	return files, nil
}

func (source *memorySource) DownloadArchive(context context.Context, fileID string) ([]byte, error) {
	select {
	case source.started <- fileID:
	default:
	}

	source.mu.Lock()
	gate := source.gates[fileID]
	failing := source.failing[fileID]
	data, found := source.archives[fileID]
	source.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-context.Done():
			return nil, context.Err()
		}
	}
	if failing || !found {
		return nil, fmt.Errorf("%w: status 500", library.ErrDownload)
	}
	return data, nil
}

// comicZip builds an archive of count PNG pages, page i being (10+i)x(20+i).
func comicZip(t *testing.T, count int) []byte {
	t.Helper()

	var buffer bytes.Buffer
	writer := zip.NewWriter(&buffer)
	for i := range count {
		fileWriter, err := writer.Create(fmt.Sprintf("page%d.png", i+1))
		require.NoError(t, err)
		_, err = fileWriter.Write(pngBytes(t, 10+i, 20+i))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buffer.Bytes()
}

// steppingClock returns a clock that advances one second per reading, so
// every progress write carries a distinct, increasing timestamp.
func steppingClock() func() time.Time {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ticks atomic.Int64
	return func() time.Time {
		return base.Add(time.Duration(ticks.Add(1)) * time.Second)
	}
}

type fixture struct {
	source   *memorySource
	store    progress.Store
	registry *blob.Registry
	service  *reader.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	source := newMemorySource()
	store := progress.NewMemoryStore()
	registry := blob.NewRegistry()
	logger := discardLogger()

	catalog := library.NewCatalog(source, store, logger)
	extractor := archive.NewExtractor(registry, logger, 0)
	service := reader.NewService(catalog, extractor, store, registry, reader.Options{
		PrefetchWindow: 2,
		Now:            steppingClock(),
	}, logger)

	t.Cleanup(func() {
		_ = service.CloseAll(context.Background())
	})

	return &fixture{source: source, store: store, registry: registry, service: service}
}
