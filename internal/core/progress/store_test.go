// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicreader/internal/core/progress"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// storeFactories opens every backend that can run without external services.
// Postgres joins when TEST_DATABASE_URL points at a scratch database.
func storeFactories(t *testing.T) map[string]func(t *testing.T) progress.Store {
	factories := map[string]func(t *testing.T) progress.Store{
		progress.DriverMemory: func(t *testing.T) progress.Store {
			return progress.NewMemoryStore()
		},
		progress.DriverSQLite: func(t *testing.T) progress.Store {
			store, err := progress.Open(context.Background(), progress.Options{
				Driver:     progress.DriverSQLite,
				SQLitePath: filepath.Join(t.TempDir(), "reader.db"),
			}, discardLogger())
			require.NoError(t, err)
			return store
		},
		progress.DriverRedis: func(t *testing.T) progress.Store {
			server := miniredis.RunT(t)
			store, err := progress.Open(context.Background(), progress.Options{
				Driver:   progress.DriverRedis,
				RedisURL: "redis://" + server.Addr() + "/0",
			}, discardLogger())
			require.NoError(t, err)
			return store
		},
	}

	if dsn := os.Getenv("TEST_DATABASE_URL"); dsn != "" {
		factories[progress.DriverPostgres] = func(t *testing.T) progress.Store {
			store, err := progress.Open(context.Background(), progress.Options{
				Driver:        progress.DriverPostgres,
				DatabaseURL:   dsn,
				MigrationPath: "../../../data/migrations",
			}, discardLogger())
			require.NoError(t, err)
			return store
		}
	}

	return factories
}

// forEachStore runs test against a fresh instance of every backend.
func forEachStore(t *testing.T, test func(t *testing.T, store progress.Store)) {
	for driver, open := range storeFactories(t) {
		t.Run(driver, func(t *testing.T) {
			store := open(t)
			t.Cleanup(func() { _ = store.Close() })
			test(t, store)
		})
	}
}

// at returns a UTC instant in whole milliseconds. Every backend keeps microseconds.
func at(minute int) time.Time {
	return time.Date(2026, 5, 4, 10, minute, 0, int(123*time.Millisecond), time.UTC)
}

/*
TestStore_ProgressRoundTrip persists a position and reads it back.
*/
func TestStore_ProgressRoundTrip(t *testing.T) {
	forEachStore(t, func(t *testing.T, store progress.Store) {
		ctx := context.Background()

		_, found, err := store.GetProgress(ctx, "comic-1")
		require.NoError(t, err)
		assert.False(t, found)

		require.NoError(t, store.SetProgress(ctx, progress.Progress{ComicID: "comic-1", CurrentPage: 5, LastRead: at(1)}))

		saved, found, err := store.GetProgress(ctx, "comic-1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "comic-1", saved.ComicID)
		assert.Equal(t, 5, saved.CurrentPage)
		assert.True(t, at(1).Equal(saved.LastRead), "got %v", saved.LastRead)
	})
}

/*
TestStore_StaleWriteIgnored checks the last-write-wins guard on LastRead.
*/
func TestStore_StaleWriteIgnored(t *testing.T) {
	forEachStore(t, func(t *testing.T, store progress.Store) {
		ctx := context.Background()

		require.NoError(t, store.SetProgress(ctx, progress.Progress{ComicID: "c", CurrentPage: 8, LastRead: at(5)}))

		// 1. An older write lands late and must not win
		require.NoError(t, store.SetProgress(ctx, progress.Progress{ComicID: "c", CurrentPage: 7, LastRead: at(4)}))
		saved, _, err := store.GetProgress(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, 8, saved.CurrentPage)

		// 2. Equal timestamps overwrite
		require.NoError(t, store.SetProgress(ctx, progress.Progress{ComicID: "c", CurrentPage: 9, LastRead: at(5)}))
		saved, _, err = store.GetProgress(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, 9, saved.CurrentPage)

		// 3. Newer writes overwrite, including moving backwards in the comic
		require.NoError(t, store.SetProgress(ctx, progress.Progress{ComicID: "c", CurrentPage: 2, LastRead: at(6)}))
		saved, _, err = store.GetProgress(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, 2, saved.CurrentPage)

		// 4. Writes within the same millisecond keep their order
		require.NoError(t, store.SetProgress(ctx, progress.Progress{ComicID: "c", CurrentPage: 4, LastRead: at(7).Add(700 * time.Microsecond)}))
		require.NoError(t, store.SetProgress(ctx, progress.Progress{ComicID: "c", CurrentPage: 3, LastRead: at(7).Add(300 * time.Microsecond)}))
		saved, _, err = store.GetProgress(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, 4, saved.CurrentPage)
		assert.True(t, at(7).Add(700*time.Microsecond).Equal(saved.LastRead), "got %v", saved.LastRead)
	})
}

/*
TestStore_ConcurrentWrites issues racing writes; the freshest must survive.
*/
func TestStore_ConcurrentWrites(t *testing.T) {
	forEachStore(t, func(t *testing.T, store progress.Store) {
		ctx := context.Background()

		var wg sync.WaitGroup
		for page := range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.SetProgress(ctx, progress.Progress{ComicID: "race", CurrentPage: page, LastRead: at(page)}))
			}()
		}
		wg.Wait()

		saved, found, err := store.GetProgress(ctx, "race")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 9, saved.CurrentPage)
	})
}

/*
TestStore_ListProgress orders records by recency.
*/
func TestStore_ListProgress(t *testing.T) {
	forEachStore(t, func(t *testing.T, store progress.Store) {
		ctx := context.Background()

		require.NoError(t, store.SetProgress(ctx, progress.Progress{ComicID: "old", CurrentPage: 1, LastRead: at(1)}))
		require.NoError(t, store.SetProgress(ctx, progress.Progress{ComicID: "new", CurrentPage: 2, LastRead: at(3)}))
		require.NoError(t, store.SetProgress(ctx, progress.Progress{ComicID: "mid", CurrentPage: 3, LastRead: at(2)}))

		list, err := store.ListProgress(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "new", list[0].ComicID)
		assert.Equal(t, "mid", list[1].ComicID)
		assert.Equal(t, "old", list[2].ComicID)
	})
}

/*
TestStore_Settings returns defaults until settings are saved.
*/
func TestStore_Settings(t *testing.T) {
	forEachStore(t, func(t *testing.T, store progress.Store) {
		ctx := context.Background()

		settings, err := store.GetSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, progress.DefaultSettings(), settings)

		custom := progress.Settings{
			FitMode:          progress.FitHeight,
			PageLayout:       progress.LayoutContinuous,
			ReadingDirection: progress.DirectionRTL,
			BackgroundColor:  "#1a1a1a",
			ShowProgress:     false,
		}
		require.NoError(t, store.SetSettings(ctx, custom))

		settings, err = store.GetSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, custom, settings)

		assert.NoError(t, store.Ping(ctx))
	})
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := progress.Open(context.Background(), progress.Options{Driver: "mongo"}, discardLogger())
	assert.ErrorIs(t, err, progress.ErrUnknownDriver)
}
