// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicreader/internal/core/library"
	"github.com/taibuivan/comicreader/internal/core/progress"
	"github.com/taibuivan/comicreader/internal/platform/apperr"
)

// fakeSource is an in-memory storage tree keyed by folder ID.
type fakeSource struct {
	folders  map[string][]library.Folder
	archives map[string][]library.ArchiveFile
	listErr  error
	listings atomic.Int32
}

func (source *fakeSource) Root() string { return "root" }

func (source *fakeSource) ListFolders(_ context.Context, parentID string) ([]library.Folder, error) {
	source.listings.Add(1)
	return source.folders[parentID], nil
}

func (source *fakeSource) ListArchives(_ context.Context, folderID string) ([]library.ArchiveFile, error) {
	if source.listErr != nil {
		return nil, source.listErr
	}
	return source.archives[folderID], nil
}

func (source *fakeSource) DownloadArchive(context.Context, string) ([]byte, error) {
	return nil, library.ErrDownload
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		folders: map[string][]library.Folder{
			"root": {
				{ID: "f-zeta", Name: "zeta"},
				{ID: "f-alpha", Name: "Alpha Saga"},
				{ID: "f-empty", Name: "Empty"},
			},
		},
		archives: map[string][]library.ArchiveFile{
			"f-alpha": {
				{ID: "a10", Name: "Vol 10.cbz", Size: 10},
				{ID: "a2", Name: "Vol 2.cbz", Size: 2},
				{ID: "a1", Name: "Vol 1.zip", Size: 1},
			},
			"f-zeta": {
				{ID: "z1", Name: "one-shot.cbr", Size: 5},
			},
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestCatalog_Load verifies series and comic ordering plus empty-folder pruning.
*/
func TestCatalog_Load(t *testing.T) {
	catalog := library.NewCatalog(newFakeSource(), nil, discardLogger())

	series, err := catalog.Load(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, series, 2)

	// Series are alphabetical regardless of case; empty folders are dropped
	assert.Equal(t, "Alpha Saga", series[0].Name)
	assert.Equal(t, "alpha-saga", series[0].Slug)
	assert.Equal(t, "zeta", series[1].Name)

	// Comics are in natural order with extensions stripped
	var names []string
	for _, comic := range series[0].Comics {
		names = append(names, comic.Name)
		assert.Equal(t, "f-alpha", comic.SeriesID)
	}
	assert.Equal(t, []string{"Vol 1", "Vol 2", "Vol 10"}, names)
}

/*
TestCatalog_Cache checks that listings are cached until refreshed.
*/
func TestCatalog_Cache(t *testing.T) {
	source := newFakeSource()
	catalog := library.NewCatalog(source, nil, discardLogger())
	ctx := context.Background()

	_, err := catalog.Load(ctx, false)
	require.NoError(t, err)
	_, err = catalog.Load(ctx, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, source.listings.Load())

	_, err = catalog.Load(ctx, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, source.listings.Load())
}

/*
TestCatalog_ProgressOverlay merges saved reading positions into the listing.
*/
func TestCatalog_ProgressOverlay(t *testing.T) {
	store := progress.NewMemoryStore()
	lastRead := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SetProgress(context.Background(), progress.Progress{ComicID: "a2", CurrentPage: 7, LastRead: lastRead}))

	catalog := library.NewCatalog(newFakeSource(), store, discardLogger())

	comic, err := catalog.Comic(context.Background(), "a2")
	require.NoError(t, err)
	assert.Equal(t, 0, comic.CurrentPage, "resolved comics carry the listing only")

	series, err := catalog.Load(context.Background(), false)
	require.NoError(t, err)

	overlaid := series[0].Comics[1]
	assert.Equal(t, "a2", overlaid.ID)
	assert.Equal(t, 7, overlaid.CurrentPage)
	require.NotNil(t, overlaid.LastRead)
	assert.True(t, lastRead.Equal(*overlaid.LastRead))
	assert.Nil(t, series[0].Comics[0].LastRead)
}

// countingLister counts progress listings.
type countingLister struct {
	progress.Store
	calls atomic.Int32
}

func (lister *countingLister) ListProgress(context context.Context) ([]progress.Progress, error) {
	lister.calls.Add(1)
	return lister.Store.ListProgress(context)
}

/*
TestCatalog_ComicSkipsOverlay resolves comics from the cache without reading progress.
*/
func TestCatalog_ComicSkipsOverlay(t *testing.T) {
	lister := &countingLister{Store: progress.NewMemoryStore()}
	catalog := library.NewCatalog(newFakeSource(), lister, discardLogger())
	ctx := context.Background()

	for range 3 {
		comic, err := catalog.Comic(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "Vol 1", comic.Name)
	}
	assert.Zero(t, lister.calls.Load())

	_, err := catalog.Load(ctx, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, lister.calls.Load())
}

/*
TestCatalog_RecordPageCount keeps learnt page counts across refreshes.
*/
func TestCatalog_RecordPageCount(t *testing.T) {
	catalog := library.NewCatalog(newFakeSource(), nil, discardLogger())
	ctx := context.Background()

	_, err := catalog.Load(ctx, false)
	require.NoError(t, err)

	catalog.RecordPageCount("z1", 24)

	series, err := catalog.Load(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 24, series[1].Comics[0].TotalPages)

	comic, err := catalog.Comic(ctx, "z1")
	require.NoError(t, err)
	assert.Equal(t, 24, comic.TotalPages)
}

/*
TestCatalog_Errors covers unknown comics and storage failures.
*/
func TestCatalog_Errors(t *testing.T) {
	catalog := library.NewCatalog(newFakeSource(), nil, discardLogger())
	_, err := catalog.Comic(context.Background(), "missing")
	assert.Equal(t, http.StatusNotFound, apperr.As(err).HTTPStatus)

	failing := newFakeSource()
	failing.listErr = errors.New("quota exceeded")
	catalog = library.NewCatalog(failing, nil, discardLogger())

	_, err = catalog.Load(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, apperr.As(err).HTTPStatus)
}

func TestIsArchiveName(t *testing.T) {
	assert.True(t, library.IsArchiveName("Vol 1.CBZ"))
	assert.True(t, library.IsArchiveName("x.zip"))
	assert.True(t, library.IsArchiveName("x.cbr"))
	assert.False(t, library.IsArchiveName("x.rar"))
	assert.False(t, library.IsArchiveName("cbz"))
	assert.Equal(t, "Vol 1", library.DisplayName("Vol 1.cbz"))
	assert.Equal(t, "notes.txt", library.DisplayName("notes.txt"))
}

/*
TestCatalog_UniqueSlugs suffixes series whose names collapse to the same slug.
*/
func TestCatalog_UniqueSlugs(t *testing.T) {
	source := &fakeSource{
		folders: map[string][]library.Folder{
			"root": {
				{ID: "f-b", Name: "one-piece"},
				{ID: "f-a", Name: "One Piece"},
			},
		},
		archives: map[string][]library.ArchiveFile{
			"f-a": {{ID: "a1", Name: "Vol 1.cbz"}},
			"f-b": {{ID: "b1", Name: "Vol 1.cbz"}},
		},
	}

	series, err := library.NewCatalog(source, nil, discardLogger()).Load(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, series, 2)

	slugs := []string{series[0].Slug, series[1].Slug}
	assert.ElementsMatch(t, []string{"one-piece", "one-piece-2"}, slugs)
}
