// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicreader/internal/core/progress"
	"github.com/taibuivan/comicreader/internal/platform/blob"
	requestutil "github.com/taibuivan/comicreader/internal/platform/request"
	"github.com/taibuivan/comicreader/internal/platform/respond"
	"github.com/taibuivan/comicreader/internal/platform/validate"
)

// Handler exposes reading sessions and page bytes over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs a reader [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SessionRoutes returns the /sessions endpoints.
func (handler *Handler) SessionRoutes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.openSession)

	router.Route("/{sessionID}", func(router chi.Router) {
		router.Get("/", handler.getSession)
		router.Delete("/", handler.closeSession)

		router.Post("/intents", handler.dispatchIntent)
		router.Post("/goto", handler.goTo)
		router.Post("/zoom", handler.zoom)
		router.Post("/pan", handler.pan)
		router.Post("/reset", handler.reset)
		router.Post("/scroll", handler.scroll)
		router.Post("/layout", handler.layout)

		router.Post("/pages/{index}/loaded", handler.pageLoaded)
		router.Post("/pages/{index}/failed", handler.pageFailed)
		router.Post("/pages/{index}/retry", handler.pageRetry)
	})

	return router
}

// PageRoutes returns the /pages endpoints serving page bytes by handle.
func (handler *Handler) PageRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/{handle}", handler.getPage)
	return router
}

// # Session Lifecycle

type openSessionRequest struct {
	ComicID string `json:"comic_id"`
}

/*
POST /api/v1/sessions.

Description: Opens a comic for the calling viewer (X-Viewer-ID), replacing
the viewer's previous session.

Request:
  - comic_id: string

Response:
  - 201: View
  - 400: ErrValidation
  - 404: ErrNotFound
  - 409: Superseded by a newer open of the same viewer
  - 422: Malformed archive or no pages
  - 502: Download failed
*/
func (handler *Handler) openSession(writer http.ResponseWriter, request *http.Request) {
	var body openSessionRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(progress.FieldComicID, body.ComicID)
	validator.MaxLen(progress.FieldComicID, body.ComicID, progress.MaxComicIDLength)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.Open(request.Context(), requestutil.ViewerID(request), body.ComicID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, view)
}

func (handler *Handler) getSession(writer http.ResponseWriter, request *http.Request) {
	handler.withSession(writer, request, func(session *Session) (View, error) {
		return session.View()
	})
}

/*
DELETE /api/v1/sessions/{sessionID}.

Description: Flushes pending progress writes and releases the page handles.

Response:
  - 204: No Content
  - 404: ErrNotFound
*/
func (handler *Handler) closeSession(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Close(request.Context(), requestutil.Param(request, "sessionID")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Navigation & View

type intentRequest struct {
	Intent Intent `json:"intent"`
	Key    string `json:"key"`
}

/*
POST /api/v1/sessions/{sessionID}/intents.

Request:
  - intent: string (next, prev, first, last, zoom_in, zoom_out, reset_view, toggle_fullscreen, toggle_controls)
  - key: string (Alternative to intent, a keyboard key such as "ArrowRight")

Response:
  - 200: View
  - 400: Unknown intent or unbound key
*/
func (handler *Handler) dispatchIntent(writer http.ResponseWriter, request *http.Request) {
	var body intentRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	intent := body.Intent
	if intent == "" && body.Key != "" {
		bound, ok := KeyIntent(body.Key)
		if !ok {
			respond.Error(writer, request, validate.RequiredError("key", "No action is bound to this key"))
			return
		}
		intent = bound
	}

	handler.withSession(writer, request, func(session *Session) (View, error) {
		return session.Dispatch(intent)
	})
}

type goToRequest struct {
	Page int `json:"page"`
}

func (handler *Handler) goTo(writer http.ResponseWriter, request *http.Request) {
	var body goToRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.withSession(writer, request, func(session *Session) (View, error) {
		return session.Apply(func(state State) State {
			return GoTo(state, body.Page)
		})
	})
}

type zoomRequest struct {
	Factor float64 `json:"factor"`
}

/*
POST /api/v1/sessions/{sessionID}/zoom.

Description: Sets the zoom factor. Out-of-range factors are clamped to
[0.5, 5.0]; zoom is ignored in continuous layout.
*/
func (handler *Handler) zoom(writer http.ResponseWriter, request *http.Request) {
	var body zoomRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.withSession(writer, request, func(session *Session) (View, error) {
		return session.Apply(func(state State) State {
			return SetZoom(state, body.Factor)
		})
	})
}

type panRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

func (handler *Handler) pan(writer http.ResponseWriter, request *http.Request) {
	var body panRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.withSession(writer, request, func(session *Session) (View, error) {
		return session.Apply(func(state State) State {
			return Pan(state, body.DX, body.DY)
		})
	})
}

func (handler *Handler) reset(writer http.ResponseWriter, request *http.Request) {
	handler.withSession(writer, request, func(session *Session) (View, error) {
		return session.Apply(ResetView)
	})
}

// maxPageGap bounds the spacing between stacked pages in continuous layout.
const maxPageGap = 1000

type scrollRequest struct {
	ScrollTop      float64   `json:"scroll_top"`
	ViewportHeight float64   `json:"viewport_height"`
	PageHeights    []float64 `json:"page_heights"`
	PageGap        float64   `json:"page_gap"`
}

/*
POST /api/v1/sessions/{sessionID}/scroll.

Description: Reports the viewport in continuous layout. The page under the
viewport centre becomes current. page_heights is required once and again
whenever the rendered geometry changes.

Response:
  - 200: View
  - 400: ErrValidation
*/
func (handler *Handler) scroll(writer http.ResponseWriter, request *http.Request) {
	var body scrollRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Custom("scroll_top", body.ScrollTop < 0, "Cannot be negative")
	validator.Custom("viewport_height", body.ViewportHeight < 0, "Cannot be negative")
	validator.FloatRange("page_gap", body.PageGap, 0, maxPageGap)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.withSession(writer, request, func(session *Session) (View, error) {
		return session.Observe(body.ScrollTop, body.ViewportHeight, body.PageHeights, body.PageGap)
	})
}

type layoutRequest struct {
	PageLayout       *progress.PageLayout       `json:"page_layout"`
	ReadingDirection *progress.ReadingDirection `json:"reading_direction"`
	FitMode          *progress.FitMode          `json:"fit_mode"`
}

/*
POST /api/v1/sessions/{sessionID}/layout.

Description: Changes any of layout, direction and fit. The choice is saved as
the global settings.

Response:
  - 200: View
  - 400: ErrValidation
*/
func (handler *Handler) layout(writer http.ResponseWriter, request *http.Request) {
	var body layoutRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if body.PageLayout != nil {
		validator.OneOf(progress.FieldPageLayout, string(*body.PageLayout),
			string(progress.LayoutSingle), string(progress.LayoutDouble), string(progress.LayoutContinuous))
	}
	if body.ReadingDirection != nil {
		validator.OneOf(progress.FieldReadingDirection, string(*body.ReadingDirection),
			string(progress.DirectionLTR), string(progress.DirectionRTL))
	}
	if body.FitMode != nil {
		validator.OneOf(progress.FieldFitMode, string(*body.FitMode),
			string(progress.FitWidth), string(progress.FitHeight), string(progress.FitPage))
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.withSession(writer, request, func(session *Session) (View, error) {
		return session.Apply(func(state State) State {
			if body.PageLayout != nil {
				state = SetLayout(state, *body.PageLayout)
			}
			if body.ReadingDirection != nil {
				state = SetDirection(state, *body.ReadingDirection)
			}
			if body.FitMode != nil {
				state = SetFit(state, *body.FitMode)
			}
			return state
		})
	})
}

// # Per-Page Display State

func (handler *Handler) pageLoaded(writer http.ResponseWriter, request *http.Request) {
	index, err := requestutil.IntParam(request, "index")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body Size
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Positive("width", body.Width)
	validator.Positive("height", body.Height)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.withSession(writer, request, func(session *Session) (View, error) {
		return session.Apply(func(state State) State {
			return MarkLoaded(state, index, body)
		})
	})
}

func (handler *Handler) pageFailed(writer http.ResponseWriter, request *http.Request) {
	handler.withPage(writer, request, MarkFailed)
}

func (handler *Handler) pageRetry(writer http.ResponseWriter, request *http.Request) {
	handler.withPage(writer, request, RetryPage)
}

// # Page Bytes

/*
GET /api/v1/pages/{handle}.

Description: Serves the image behind a live page handle. Handles die with
their session.

Response:
  - 200: Image bytes with ETag
  - 304: Not Modified (If-None-Match)
  - 404: Unknown or released handle
*/
func (handler *Handler) getPage(writer http.ResponseWriter, request *http.Request) {
	payload, err := handler.service.Page(blob.Handle(requestutil.Param(request, "handle")))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Bytes(writer, request, payload.ContentType, payload.ETag, payload.Data)
}

/*
GET /api/v1/cache.

Response:
  - 200: blob.Stats: Live page handles and the bytes they hold
*/
func (handler *Handler) CacheStats(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, handler.service.Stats())
}

// # Internal Helpers

// withSession resolves {sessionID}, runs action and writes the resulting view.
func (handler *Handler) withSession(writer http.ResponseWriter, request *http.Request, action func(*Session) (View, error)) {
	session, err := handler.service.Get(requestutil.Param(request, "sessionID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := action(session)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

// withPage applies a per-page transition addressed by {index}.
func (handler *Handler) withPage(writer http.ResponseWriter, request *http.Request, transition func(State, int) State) {
	index, err := requestutil.IntParam(request, "index")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.withSession(writer, request, func(session *Session) (View, error) {
		return session.Apply(func(state State) State {
			return transition(state, index)
		})
	})
}
