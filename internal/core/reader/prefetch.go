// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/comicreader/internal/core/archive"
	"github.com/taibuivan/comicreader/internal/platform/constants"
)

// DecodeCache holds the natural size of decoded pages, keyed by page ID.
type DecodeCache struct {
	mu    sync.RWMutex
	sizes map[string]Size
}

// NewDecodeCache returns an empty cache.
func NewDecodeCache() *DecodeCache {
	return &DecodeCache{sizes: make(map[string]Size)}
}

// Get returns the cached size of a page.
func (cache *DecodeCache) Get(pageID string) (Size, bool) {
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	size, ok := cache.sizes[pageID]
	return size, ok
}

func (cache *DecodeCache) put(pageID string, size Size) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.sizes[pageID] = size
}

// Len returns the number of cached pages.
func (cache *DecodeCache) Len() int {
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	return len(cache.sizes)
}

// Prefetcher warms the pages just ahead of the cursor so they display without
// a decode delay. Warming is best effort and never reports failure.
type Prefetcher struct {
	cache  *DecodeCache
	window int
	logger *slog.Logger

	mu       sync.Mutex
	inflight map[string]bool
	pending  sync.WaitGroup
}

// NewPrefetcher returns a prefetcher warming window pages from the cursor.
// A window below 1 uses the default of 3.
func NewPrefetcher(cache *DecodeCache, window int, logger *slog.Logger) *Prefetcher {
	if window < 1 {
		window = constants.DefaultPrefetchWindow
	}
	return &Prefetcher{
		cache:    cache,
		window:   window,
		logger:   logger,
		inflight: make(map[string]bool),
	}
}

// Window returns the pages [cursor, cursor+window) clipped to bounds.
func (prefetcher *Prefetcher) Window(pages []archive.Page, cursor int) []archive.Page {
	if cursor < 0 || cursor >= len(pages) {
		return nil
	}
	return pages[cursor:min(cursor+prefetcher.window, len(pages))]
}

// Warm starts decoding the window around cursor and returns immediately.
// Pages already cached or being decoded are skipped.
func (prefetcher *Prefetcher) Warm(pages []archive.Page, cursor int) {
	var todo []archive.Page

	prefetcher.mu.Lock()
	for _, page := range prefetcher.Window(pages, cursor) {
		if _, cached := prefetcher.cache.Get(page.ID); cached || prefetcher.inflight[page.ID] {
			continue
		}
		prefetcher.inflight[page.ID] = true
		todo = append(todo, page)
	}
	prefetcher.mu.Unlock()

	if len(todo) == 0 {
		return
	}

	prefetcher.pending.Add(1)
	go func() {
		defer prefetcher.pending.Done()

		// Each page decodes on its own goroutine; no failure escapes.
		var group errgroup.Group
		for _, page := range todo {
			group.Go(func() error {
				prefetcher.decode(page)
				return nil
			})
		}
		_ = group.Wait()
	}()
}

// Wait blocks until every warm started so far has finished.
func (prefetcher *Prefetcher) Wait() {
	prefetcher.pending.Wait()
}

func (prefetcher *Prefetcher) decode(page archive.Page) {
	defer func() {
		prefetcher.mu.Lock()
		delete(prefetcher.inflight, page.ID)
		prefetcher.mu.Unlock()
	}()

	config, _, err := image.DecodeConfig(bytes.NewReader(page.Data))
	if err != nil {
		prefetcher.logger.LogAttrs(context.Background(), slog.LevelDebug, "page_prefetch_failed",
			slog.String("page_id", page.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	prefetcher.cache.put(page.ID, Size{Width: config.Width, Height: config.Height})
}
