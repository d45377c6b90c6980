// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination pages through listings that are already held in memory,
// such as the cached series of the library.
//
// # Overview
//
// Clients ask for a 1-indexed "page" of "limit" items. [Params.Window] turns
// that request into slice bounds over the full listing, and [Meta] reports
// where the page sits in the response envelope.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the number of series per page if not specified.
	DefaultLimit = 20
	// MaxLimit caps a page; a whole library fits in a few pages.
	MaxLimit = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// Params holds the parsed page and limit from a request's query string.
type Params struct {
	Page  int
	Limit int
}

// Window returns the [start, end) bounds of the requested page within a
// listing of total items. A page past the end yields an empty window.
func (p Params) Window(total int) (start, end int) {
	if p.Page > 1 {
		start = (p.Page - 1) * p.Limit
	}
	start = min(max(start, 0), total)
	end = min(start+p.Limit, total)
	return start, end
}

// Meta is the pagination metadata included in list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta describes page p of a listing of total items.
func NewMeta(p Params, total int) Meta {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}

	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// FromRequest parses "page" and "limit" query parameters. Missing, invalid
// or out-of-range values fall back to [DefaultPage] and [DefaultLimit].
func FromRequest(request *http.Request) Params {
	page := queryInt(request, "page", DefaultPage)
	limit := queryInt(request, "limit", DefaultLimit)

	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	return Params{Page: page, Limit: limit}
}

func queryInt(request *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(request.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return n
}
