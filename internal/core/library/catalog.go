// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/taibuivan/comicreader/internal/core/progress"
	"github.com/taibuivan/comicreader/internal/platform/apperr"
	"github.com/taibuivan/comicreader/pkg/natsort"
	"github.com/taibuivan/comicreader/pkg/pointer"
	"github.com/taibuivan/comicreader/pkg/slice"
	"github.com/taibuivan/comicreader/pkg/slug"
)

// listConcurrency bounds parallel folder listings against the storage API.
const listConcurrency = 4

// rootSeriesName names the series formed by archives placed directly in the root.
const rootSeriesName = "Unsorted"

// ProgressLister is the slice of the progress store the catalog reads.
type ProgressLister interface {
	ListProgress(context context.Context) ([]progress.Progress, error)
}

// # Catalog

// Catalog builds and caches the series listing of a [Source].
//
// # Concurrency
//
// Catalog is safe for concurrent use. The listing is loaded lazily, kept until
// [Catalog.Load] is called with refresh, and shared by all viewers.
type Catalog struct {
	source   Source
	progress ProgressLister
	logger   *slog.Logger

	mu     sync.RWMutex
	series []Series
	comics map[string]Comic
	loaded bool
}

// NewCatalog constructs a [Catalog] over source. progress may be nil, in which
// case listings carry no reading positions.
func NewCatalog(source Source, progress ProgressLister, logger *slog.Logger) *Catalog {
	return &Catalog{
		source:   source,
		progress: progress,
		logger:   logger,
		comics:   make(map[string]Comic),
	}
}

/*
Load returns the library's series with saved progress overlaid.

Description: The folder tree is listed once and cached; refresh forces a new
listing. Progress is read on every call so positions are never stale.

Parameters:
  - context: context.Context
  - refresh: bool (Re-list the storage even when cached)

Returns:
  - []Series: Alphabetically ordered series, comics in natural order
  - error: A 502 when the storage listing fails
*/
func (catalog *Catalog) Load(context context.Context, refresh bool) ([]Series, error) {
	if err := catalog.ensureLoaded(context, refresh); err != nil {
		return nil, err
	}

	catalog.mu.RLock()
	series := cloneSeries(catalog.series)
	catalog.mu.RUnlock()

	catalog.overlayProgress(context, series)
	return series, nil
}

// Comic resolves a comic by ID from the cached listing, listing the library
// first if needed. Saved progress is not overlaid.
func (catalog *Catalog) Comic(context context.Context, comicID string) (Comic, error) {
	if err := catalog.ensureLoaded(context, false); err != nil {
		return Comic{}, err
	}

	catalog.mu.RLock()
	comic, found := catalog.comics[comicID]
	catalog.mu.RUnlock()

	if !found {
		return Comic{}, apperr.NotFound("Comic")
	}
	return comic, nil
}

// RecordPageCount stores the page count learnt when a comic was extracted, so
// later listings report it without re-downloading.
func (catalog *Catalog) RecordPageCount(comicID string, total int) {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	comic, found := catalog.comics[comicID]
	if !found {
		return
	}
	comic.TotalPages = total
	catalog.comics[comicID] = comic

	for s := range catalog.series {
		for c := range catalog.series[s].Comics {
			if catalog.series[s].Comics[c].ID == comicID {
				catalog.series[s].Comics[c].TotalPages = total
			}
		}
	}
}

// Source exposes the underlying storage for downloads.
func (catalog *Catalog) Source() Source {
	return catalog.source
}

// # Listing

func (catalog *Catalog) ensureLoaded(context context.Context, refresh bool) error {
	catalog.mu.RLock()
	loaded := catalog.loaded
	catalog.mu.RUnlock()

	if loaded && !refresh {
		return nil
	}
	return catalog.rebuild(context)
}

func (catalog *Catalog) rebuild(context context.Context) error {
	root := catalog.source.Root()

	folders, err := catalog.source.ListFolders(context, root)
	if err != nil {
		return apperr.BadGateway("Failed to list library", err)
	}
	folders = append([]Folder{{ID: root, Name: rootSeriesName}}, folders...)

	results := make([]Series, len(folders))
	group, groupCtx := errgroup.WithContext(context)
	group.SetLimit(listConcurrency)

	for i, folder := range folders {
		group.Go(func() error {
			files, err := catalog.source.ListArchives(groupCtx, folder.ID)
			if err != nil {
				return fmt.Errorf("list %q: %w", folder.Name, err)
			}
			results[i] = buildSeries(folder, files)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return apperr.BadGateway("Failed to list library", err)
	}

	series := slice.Filter(results, func(s Series) bool { return len(s.Comics) > 0 })
	sortSeries(series)

	slugs := slug.Set{}
	for i := range series {
		series[i].Slug = slugs.Claim(series[i].Slug)
	}

	comics := make(map[string]Comic)
	for _, s := range series {
		for _, comic := range s.Comics {
			comics[comic.ID] = comic
		}
	}

	catalog.mu.Lock()
	// Keep page counts learnt from earlier extractions.
	for id, comic := range comics {
		if previous, ok := catalog.comics[id]; ok && previous.TotalPages > 0 {
			comic.TotalPages = previous.TotalPages
			comics[id] = comic
		}
	}
	for s := range series {
		for c := range series[s].Comics {
			series[s].Comics[c].TotalPages = comics[series[s].Comics[c].ID].TotalPages
		}
	}
	catalog.series = series
	catalog.comics = comics
	catalog.loaded = true
	catalog.mu.Unlock()

	catalog.logger.Info("library_loaded",
		slog.Int("series", len(series)),
		slog.Int("comics", len(comics)),
	)
	return nil
}

func buildSeries(folder Folder, files []ArchiveFile) Series {
	series := Series{
		ID:       folder.ID,
		Name:     folder.Name,
		Slug:     slug.From(folder.Name),
		FolderID: folder.ID,
	}

	for _, file := range files {
		series.Comics = append(series.Comics, Comic{
			ID:        file.ID,
			Name:      DisplayName(file.Name),
			FileID:    file.ID,
			SeriesID:  folder.ID,
			SizeBytes: file.Size,
		})
	}

	slices.SortStableFunc(series.Comics, func(a, b Comic) int {
		return natsort.Compare(a.Name, b.Name)
	})
	return series
}

// sortSeries orders series by name with English collation.
func sortSeries(series []Series) {
	collator := collate.New(language.English)
	slices.SortStableFunc(series, func(a, b Series) int {
		return collator.CompareString(a.Name, b.Name)
	})
}

// overlayProgress fills CurrentPage and LastRead from the progress store.
// A failing store only costs the overlay.
func (catalog *Catalog) overlayProgress(context context.Context, series []Series) {
	if catalog.progress == nil {
		return
	}

	saved, err := catalog.progress.ListProgress(context)
	if err != nil {
		catalog.logger.WarnContext(context, "library_progress_overlay_failed", slog.Any("error", err))
		return
	}

	byComic := make(map[string]progress.Progress, len(saved))
	for _, record := range saved {
		byComic[record.ComicID] = record
	}

	for s := range series {
		for c := range series[s].Comics {
			comic := &series[s].Comics[c]
			record, found := byComic[comic.ID]
			if !found {
				continue
			}
			comic.CurrentPage = record.CurrentPage
			comic.LastRead = pointer.To(record.LastRead)
		}
	}
}

func cloneSeries(series []Series) []Series {
	cloned := make([]Series, len(series))
	for i, s := range series {
		cloned[i] = s
		cloned[i].Comics = slices.Clone(s.Comics)
	}
	return cloned
}
