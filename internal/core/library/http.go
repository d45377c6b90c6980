// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/comicreader/internal/platform/request"
	"github.com/taibuivan/comicreader/internal/platform/respond"
	"github.com/taibuivan/comicreader/pkg/pagination"
)

// Handler exposes the library listing over HTTP.
type Handler struct {
	catalog *Catalog
}

// NewHandler constructs a library [Handler].
func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// Routes returns the library endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.listSeries)
	router.Get("/comics/{comicID}", handler.getComic)
	return router
}

/*
GET /api/v1/library.

Description: Lists series with their comics and saved progress.

Request:
  - refresh: bool (Re-list the storage instead of using the cached listing)
  - page: int
  - limit: int

Response:
  - 200: []Series: Paginated list of series
  - 502: ErrBadGateway: The storage listing failed
*/
func (handler *Handler) listSeries(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	series, err := handler.catalog.Load(request.Context(), requestutil.BoolQuery(request, "refresh"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	start, end := params.Window(len(series))
	respond.Paginated(writer, series[start:end], pagination.NewMeta(params, len(series)))
}

/*
GET /api/v1/library/comics/{comicID}.

Response:
  - 200: Comic
  - 404: ErrNotFound
*/
func (handler *Handler) getComic(writer http.ResponseWriter, request *http.Request) {
	comic, err := handler.catalog.Comic(request.Context(), requestutil.Param(request, "comicID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, comic)
}
