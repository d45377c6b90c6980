// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/comicreader/internal/platform/apperr"
	"github.com/taibuivan/comicreader/internal/platform/dberr"
)

// # Service Layer

// Service validates and forwards progress and settings operations to a [Store].
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a new [Service].
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// Store returns the underlying store, shared with reading sessions.
func (service *Service) Store() Store {
	return service.store
}

// GetProgress returns the saved position of a comic, or NOT_FOUND.
func (service *Service) GetProgress(context context.Context, comicID string) (Progress, error) {
	saved, found, err := service.store.GetProgress(context, comicID)
	if err != nil {
		return Progress{}, dberr.Wrap(err, "Progress")
	}
	if !found {
		return Progress{}, apperr.NotFound("Progress")
	}
	return saved, nil
}

// ListProgress returns every saved position, most recent first.
func (service *Service) ListProgress(context context.Context) ([]Progress, error) {
	list, err := service.store.ListProgress(context)
	if err != nil {
		return nil, dberr.Wrap(err, "Progress")
	}
	return list, nil
}

/*
SaveProgress validates and stores a position.

Description: A zero LastRead is stamped with the current time. The store keeps
whichever record is newer, so the value returned is what was asked to be
written, not necessarily what is now stored.

Parameters:
  - context: context.Context
  - progress: Progress

Returns:
  - Progress: The record submitted to the store
  - error: VALIDATION_ERROR or storage failures
*/
func (service *Service) SaveProgress(context context.Context, progress Progress) (Progress, error) {
	if progress.LastRead.IsZero() {
		progress.LastRead = service.now().UTC()
	}

	if err := progress.Validate(); err != nil {
		return Progress{}, err
	}

	if err := service.store.SetProgress(context, progress); err != nil {
		return Progress{}, dberr.Wrap(err, "Progress")
	}

	service.logger.DebugContext(context, "progress_saved",
		slog.String("comic_id", progress.ComicID),
		slog.Int("current_page", progress.CurrentPage),
	)
	return progress, nil
}

// GetSettings returns the global reading settings.
func (service *Service) GetSettings(context context.Context) (Settings, error) {
	settings, err := service.store.GetSettings(context)
	if err != nil {
		return Settings{}, dberr.Wrap(err, "Settings")
	}
	return settings, nil
}

// UpdateSettings validates and replaces the global reading settings.
func (service *Service) UpdateSettings(context context.Context, settings Settings) (Settings, error) {
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}

	if err := service.store.SetSettings(context, settings); err != nil {
		return Settings{}, dberr.Wrap(err, "Settings")
	}

	service.logger.InfoContext(context, "settings_updated",
		slog.String("page_layout", string(settings.PageLayout)),
		slog.String("reading_direction", string(settings.ReadingDirection)),
	)
	return settings, nil
}
