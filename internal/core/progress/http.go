// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/comicreader/internal/platform/request"
	"github.com/taibuivan/comicreader/internal/platform/respond"
)

// Handler exposes progress and settings over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a progress [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ProgressRoutes returns the /progress endpoints.
func (handler *Handler) ProgressRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.listProgress)
	router.Get("/{comicID}", handler.getProgress)
	router.Put("/{comicID}", handler.putProgress)
	return router
}

// SettingsRoutes returns the /settings endpoints.
func (handler *Handler) SettingsRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.getSettings)
	router.Put("/", handler.putSettings)
	return router
}

// # Progress Endpoints

/*
GET /api/v1/progress.

Response:
  - 200: []Progress: Every saved position, most recently read first
*/
func (handler *Handler) listProgress(writer http.ResponseWriter, request *http.Request) {
	list, err := handler.service.ListProgress(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, list)
}

/*
GET /api/v1/progress/{comicID}.

Response:
  - 200: Progress
  - 404: ErrNotFound: Nothing saved for this comic yet
*/
func (handler *Handler) getProgress(writer http.ResponseWriter, request *http.Request) {
	saved, err := handler.service.GetProgress(request.Context(), requestutil.Param(request, "comicID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, saved)
}

type putProgressRequest struct {
	CurrentPage int       `json:"current_page"`
	LastRead    time.Time `json:"last_read"`
}

/*
PUT /api/v1/progress/{comicID}.

Request:
  - current_page: int (Zero-based page index)
  - last_read: RFC 3339 timestamp (Optional, defaults to now)

Response:
  - 200: Progress
  - 400: ErrValidation
*/
func (handler *Handler) putProgress(writer http.ResponseWriter, request *http.Request) {
	var body putProgressRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	saved, err := handler.service.SaveProgress(request.Context(), Progress{
		ComicID:     requestutil.Param(request, "comicID"),
		CurrentPage: body.CurrentPage,
		LastRead:    body.LastRead,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, saved)
}

// # Settings Endpoints

func (handler *Handler) getSettings(writer http.ResponseWriter, request *http.Request) {
	settings, err := handler.service.GetSettings(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, settings)
}

/*
PUT /api/v1/settings.

Description: Replaces the global settings. Omitted fields keep their current value.

Response:
  - 200: Settings
  - 400: ErrValidation
*/
func (handler *Handler) putSettings(writer http.ResponseWriter, request *http.Request) {
	current, err := handler.service.GetSettings(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := requestutil.DecodeJSON(request, &current); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.UpdateSettings(request.Context(), current)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, updated)
}
