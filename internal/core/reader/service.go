// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/comicreader/internal/core/archive"
	"github.com/taibuivan/comicreader/internal/core/library"
	"github.com/taibuivan/comicreader/internal/core/progress"
	"github.com/taibuivan/comicreader/internal/platform/apperr"
	"github.com/taibuivan/comicreader/internal/platform/blob"
	"github.com/taibuivan/comicreader/pkg/uuid"
)

// ErrSuperseded is returned to an open that lost the race against a newer
// open by the same viewer. Its pages were released.
var ErrSuperseded = apperr.Conflict("A newer comic was opened by this viewer")

// Catalog resolves comics and downloads their archives.
type Catalog interface {
	Comic(context context.Context, comicID string) (library.Comic, error)
	Source() library.Source
	RecordPageCount(comicID string, total int)
}

// Options tune the service.
type Options struct {
	PrefetchWindow int
	Now            func() time.Time
}

// # Service Layer

// Service opens, tracks and closes reading sessions. Each viewer has at most
// one session; opening a comic replaces the viewer's previous session.
type Service struct {
	catalog   Catalog
	extractor *archive.Extractor
	store     progress.Store
	registry  *blob.Registry
	cache     *DecodeCache
	options   Options
	logger    *slog.Logger

	mu          sync.Mutex
	sessions    map[string]*Session
	byViewer    map[string]*Session
	generations map[string]uint64
}

// NewService constructs a new [Service].
func NewService(catalog Catalog, extractor *archive.Extractor, store progress.Store, registry *blob.Registry, options Options, logger *slog.Logger) *Service {
	if options.Now == nil {
		options.Now = time.Now
	}
	return &Service{
		catalog:     catalog,
		extractor:   extractor,
		store:       store,
		registry:    registry,
		cache:       NewDecodeCache(),
		options:     options,
		logger:      logger,
		sessions:    make(map[string]*Session),
		byViewer:    make(map[string]*Session),
		generations: make(map[string]uint64),
	}
}

/*
Open downloads, extracts and opens a comic for a viewer.

Description: The viewer's previous session is closed once the new one is
ready. If the same viewer starts another open before this one finishes, this
result is discarded, its page handles are released and [ErrSuperseded] is
returned. An open that fails hands its turn back, so an older open still in
flight can complete.

Parameters:
  - context: context.Context
  - viewerID: string
  - comicID: string

Returns:
  - View: The new session's snapshot, positioned at the saved page
  - error: NOT_FOUND, BAD_GATEWAY (download), 422 (malformed or empty archive), CONFLICT (superseded)
*/
func (service *Service) Open(context context.Context, viewerID, comicID string) (View, error) {
	generation := service.nextGeneration(viewerID)

	view, err := service.open(context, viewerID, comicID, generation)
	if err != nil && !errors.Is(err, ErrSuperseded) {
		service.yieldGeneration(viewerID, generation)
	}
	return view, err
}

func (service *Service) open(context context.Context, viewerID, comicID string, generation uint64) (View, error) {
	comic, err := service.catalog.Comic(context, comicID)
	if err != nil {
		return View{}, err
	}

	data, err := service.catalog.Source().DownloadArchive(context, comic.FileID)
	if err != nil {
		if context.Err() != nil {
			return View{}, context.Err()
		}
		return View{}, apperr.BadGateway("Failed to download comic", err)
	}

	pages, err := service.extractor.Extract(context, data, comic.ID)
	if err != nil {
		return View{}, err
	}

	saved, found, err := service.store.GetProgress(context, comic.ID)
	if err != nil {
		service.logger.WarnContext(context, "progress_read_failed", slog.String("comic_id", comic.ID), slog.Any("error", err))
	}
	if found {
		comic.CurrentPage = saved.CurrentPage
		comic.LastRead = &saved.LastRead
	}

	settings, err := service.store.GetSettings(context)
	if err != nil {
		service.logger.WarnContext(context, "settings_read_failed", slog.Any("error", err))
		settings = progress.DefaultSettings()
	}

	comic.Pages = pages
	session := NewSession(uuid.New(), viewerID, comic, settings, Dependencies{
		Store:      service.store,
		Registry:   service.registry,
		Prefetcher: NewPrefetcher(service.cache, service.options.PrefetchWindow, service.logger),
		Logger:     service.logger,
		Now:        service.options.Now,
	})

	previous, current := service.register(viewerID, generation, session)
	if !current {
		_ = session.Close(context)
		return View{}, ErrSuperseded
	}
	if previous != nil {
		_ = previous.Close(context)
	}

	service.catalog.RecordPageCount(comic.ID, len(pages))

	view, err := session.View()
	if err != nil {
		return View{}, err
	}

	service.logger.InfoContext(context, "comic_opened",
		slog.String("session_id", session.ID()),
		slog.String("viewer_id", viewerID),
		slog.String("comic_id", comic.ID),
		slog.Int("pages", len(pages)),
		slog.Int("current_page", view.State.Cursor),
	)

	return view, nil
}

// Get returns an open session.
func (service *Service) Get(sessionID string) (*Session, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	session, found := service.sessions[sessionID]
	if !found {
		return nil, apperr.NotFound("Session")
	}
	return session, nil
}

// Close closes and forgets a session.
func (service *Service) Close(context context.Context, sessionID string) error {
	service.mu.Lock()
	session, found := service.sessions[sessionID]
	if found {
		delete(service.sessions, sessionID)
		if service.byViewer[session.ViewerID()] == session {
			delete(service.byViewer, session.ViewerID())
		}
	}
	service.mu.Unlock()

	if !found {
		return apperr.NotFound("Session")
	}
	return session.Close(context)
}

// CloseAll closes every session, flushing their pending writes. Used at shutdown.
func (service *Service) CloseAll(context context.Context) error {
	service.mu.Lock()
	sessions := make([]*Session, 0, len(service.sessions))
	for _, session := range service.sessions {
		sessions = append(sessions, session)
	}
	service.sessions = make(map[string]*Session)
	service.byViewer = make(map[string]*Session)
	service.mu.Unlock()

	var errs []error
	for _, session := range sessions {
		errs = append(errs, session.Close(context))
	}
	return errors.Join(errs...)
}

// Stats reports the live page handles and their bytes.
func (service *Service) Stats() blob.Stats {
	return service.registry.Stats()
}

// Page resolves a display handle to its bytes.
func (service *Service) Page(handle blob.Handle) (blob.Blob, error) {
	if !uuid.Valid(handle.String()) {
		return blob.Blob{}, apperr.NotFound("Page")
	}

	payload, found := service.registry.Open(handle)
	if !found {
		return blob.Blob{}, apperr.NotFound("Page")
	}
	return payload, nil
}

// # Internal Helpers

func (service *Service) nextGeneration(viewerID string) uint64 {
	service.mu.Lock()
	defer service.mu.Unlock()

	service.generations[viewerID]++
	return service.generations[viewerID]
}

// yieldGeneration steps the viewer's generation back after a failed open, if no
// newer open has started since.
func (service *Service) yieldGeneration(viewerID string, generation uint64) {
	service.mu.Lock()
	defer service.mu.Unlock()

	if service.generations[viewerID] == generation {
		service.generations[viewerID] = generation - 1
	}
}

// register installs session if generation is still the viewer's latest and
// returns the session it replaces.
func (service *Service) register(viewerID string, generation uint64, session *Session) (*Session, bool) {
	service.mu.Lock()
	defer service.mu.Unlock()

	if service.generations[viewerID] != generation {
		return nil, false
	}

	previous := service.byViewer[viewerID]
	if previous != nil {
		delete(service.sessions, previous.ID())
	}
	service.sessions[session.ID()] = session
	service.byViewer[viewerID] = session
	return previous, true
}
