// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/comicreader/internal/core/archive"
	"github.com/taibuivan/comicreader/internal/core/library"
	"github.com/taibuivan/comicreader/internal/core/progress"
	"github.com/taibuivan/comicreader/internal/platform/apperr"
	"github.com/taibuivan/comicreader/internal/platform/blob"
	"github.com/taibuivan/comicreader/internal/platform/constants"
)

// ErrSessionClosed is returned by operations on a session that was closed.
var ErrSessionClosed = apperr.NotFound("Session")

// Dependencies are the collaborators a [Session] performs effects through.
type Dependencies struct {
	Store      progress.Store
	Registry   *blob.Registry
	Prefetcher *Prefetcher
	Logger     *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Session is one open comic of one viewer.
//
// # Concurrency
//
// All state changes are serialised by a mutex. Progress and settings writes
// run on their own goroutines so navigation never waits on storage; each
// progress write carries the value of its own cursor move, and the store keeps
// the newest. Settings writes are serialised among themselves and skip any
// layout change older than one already written.
type Session struct {
	id       string
	viewerID string
	openedAt time.Time

	deps   Dependencies
	logger *slog.Logger

	mu        sync.Mutex
	comic     library.Comic
	state     State
	observer  *ScrollObserver
	closed    bool
	layoutSeq uint64

	// settingsMu guards the read-modify-write of the global settings.
	settingsMu    sync.Mutex
	layoutWritten uint64

	writes      sync.WaitGroup
	releaseOnce sync.Once
	released    int
}

// NewSession builds a session over an extracted comic. comic.Pages must be
// populated; comic.CurrentPage is the restored position.
func NewSession(id, viewerID string, comic library.Comic, settings progress.Settings, deps Dependencies) *Session {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	comic.TotalPages = len(comic.Pages)
	state := NewState(comic.TotalPages, comic.CurrentPage, settings)
	comic.CurrentPage = state.Cursor

	session := &Session{
		id:       id,
		viewerID: viewerID,
		openedAt: deps.Now(),
		deps:     deps,
		logger:   deps.Logger.With(slog.String("session_id", id), slog.String("comic_id", comic.ID)),
		comic:    comic,
		state:    state,
	}

	session.deps.Prefetcher.Warm(comic.Pages, state.Cursor)
	return session
}

// ID returns the session identifier.
func (session *Session) ID() string { return session.id }

// ViewerID returns the viewer owning the session.
func (session *Session) ViewerID() string { return session.viewerID }

// ComicID returns the open comic's identifier.
func (session *Session) ComicID() string { return session.comic.ID }

// # Operations

// Apply runs a transition and performs its effects, returning the new view.
func (session *Session) Apply(transition func(State) State) (View, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.closed {
		return View{}, ErrSessionClosed
	}

	previous := session.state
	next := transition(previous)

	// A page whose size was learnt by prefetching can be panned right away.
	if next.Cursor != previous.Cursor && next.ImageSize == (Size{}) {
		if size, ok := session.deps.Prefetcher.cache.Get(archive.PageID(session.comic.ID, next.Cursor)); ok {
			next = SetImageSize(next, size)
		}
	}

	session.state = next

	if next.Cursor != previous.Cursor {
		session.onCursorChange()
	}
	if next.Layout != previous.Layout || next.Direction != previous.Direction || next.Fit != previous.Fit {
		session.onLayoutChange()
	}

	return session.viewLocked(), nil
}

// Dispatch applies a named intent.
func (session *Session) Dispatch(intent Intent) (View, error) {
	transition, err := intent.Transition()
	if err != nil {
		return View{}, err
	}
	return session.Apply(transition)
}

// Observe updates the scroll geometry, when heights are given, and derives
// the cursor from the viewport. gap is the vertical space between pages.
func (session *Session) Observe(scrollTop, viewportHeight float64, heights []float64, gap float64) (View, error) {
	session.mu.Lock()
	if len(heights) > 0 {
		session.observer = NewScrollObserver(heights, gap)
	}
	observer := session.observer
	session.mu.Unlock()

	return session.Apply(func(state State) State {
		return ObserveScroll(state, observer, scrollTop, viewportHeight)
	})
}

// View returns a snapshot of the session.
func (session *Session) View() (View, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if session.closed {
		return View{}, ErrSessionClosed
	}
	return session.viewLocked(), nil
}

// # Effects

// onCursorChange records the new position and saves it in the background.
// Called with the mutex held.
func (session *Session) onCursorChange() {
	now := session.deps.Now().UTC()
	session.comic.CurrentPage = session.state.Cursor
	session.comic.LastRead = &now

	record := progress.Progress{
		ComicID:     session.comic.ID,
		CurrentPage: session.state.Cursor,
		LastRead:    now,
	}

	session.background("progress_write_failed", func(ctx context.Context) error {
		return session.deps.Store.SetProgress(ctx, record)
	}, slog.Int("current_page", record.CurrentPage))

	session.deps.Prefetcher.Warm(session.comic.Pages, session.state.Cursor)
}

// onLayoutChange saves the layout choices into the global settings. Only the
// layout, direction and fit fields are replaced; the rest is re-read from the
// store so preferences saved elsewhere survive. Called with the mutex held.
func (session *Session) onLayoutChange() {
	session.layoutSeq++
	seq := session.layoutSeq
	layout, direction, fit := session.state.Layout, session.state.Direction, session.state.Fit

	session.background("settings_write_failed", func(ctx context.Context) error {
		session.settingsMu.Lock()
		defer session.settingsMu.Unlock()

		if seq <= session.layoutWritten {
			return nil
		}

		settings, err := session.deps.Store.GetSettings(ctx)
		if err != nil {
			return err
		}
		settings.PageLayout = layout
		settings.ReadingDirection = direction
		settings.FitMode = fit

		if err := session.deps.Store.SetSettings(ctx, settings); err != nil {
			return err
		}
		session.layoutWritten = seq
		return nil
	}, slog.String("page_layout", string(layout)))
}

// background runs a fire-and-forget write bounded by the write timeout.
// Failures are logged and tolerated.
func (session *Session) background(event string, write func(context.Context) error, attrs ...any) {
	session.writes.Add(1)
	go func() {
		defer session.writes.Done()

		ctx, cancel := context.WithTimeout(context.Background(), constants.ProgressWriteTimeout)
		defer cancel()

		if err := write(ctx); err != nil {
			session.logger.Warn(event, append(attrs, slog.Any("error", err))...)
		}
	}()
}

// # Lifecycle

// Flush waits for in-flight background writes, or until ctx is done.
func (session *Session) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		session.writes.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes pending writes and releases every page handle exactly once.
// It is safe to call more than once.
func (session *Session) Close(ctx context.Context) error {
	session.mu.Lock()
	session.closed = true
	session.mu.Unlock()

	flushErr := session.Flush(ctx)

	session.releaseOnce.Do(func() {
		session.released = archive.Release(session.deps.Registry, session.comic.Pages)
		session.logger.Info("session_closed",
			slog.Int("handles_released", session.released),
			slog.Duration("duration", session.deps.Now().Sub(session.openedAt)),
		)
	})

	return flushErr
}
