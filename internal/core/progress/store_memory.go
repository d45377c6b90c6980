// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	"context"
	"slices"
	"sync"
)

// memoryStore keeps everything in process memory. Nothing survives a restart.
type memoryStore struct {
	mu       sync.RWMutex
	progress map[string]Progress
	settings *Settings
}

// NewMemoryStore constructs an ephemeral [Store].
func NewMemoryStore() Store {
	return &memoryStore{progress: make(map[string]Progress)}
}

func (store *memoryStore) GetProgress(_ context.Context, comicID string) (Progress, bool, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	saved, ok := store.progress[comicID]
	return saved, ok, nil
}

func (store *memoryStore) SetProgress(_ context.Context, progress Progress) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if saved, ok := store.progress[progress.ComicID]; ok && saved.LastRead.After(progress.LastRead) {
		return nil
	}
	store.progress[progress.ComicID] = progress
	return nil
}

func (store *memoryStore) ListProgress(_ context.Context) ([]Progress, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	list := make([]Progress, 0, len(store.progress))
	for _, saved := range store.progress {
		list = append(list, saved)
	}
	sortByRecency(list)
	return list, nil
}

func (store *memoryStore) GetSettings(_ context.Context) (Settings, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	if store.settings == nil {
		return DefaultSettings(), nil
	}
	return *store.settings, nil
}

func (store *memoryStore) SetSettings(_ context.Context, settings Settings) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.settings = &settings
	return nil
}

func (store *memoryStore) Ping(context.Context) error { return nil }

func (store *memoryStore) Close() error { return nil }

// sortByRecency orders records by LastRead descending, then by comic ID.
func sortByRecency(list []Progress) {
	slices.SortFunc(list, func(a, b Progress) int {
		if c := b.LastRead.Compare(a.LastRead); c != 0 {
			return c
		}
		if a.ComicID < b.ComicID {
			return -1
		}
		if a.ComicID > b.ComicID {
			return 1
		}
		return 0
	})
}
