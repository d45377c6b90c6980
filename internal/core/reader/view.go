// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import (
	"time"

	"github.com/taibuivan/comicreader/internal/core/archive"
	"github.com/taibuivan/comicreader/pkg/slice"
)

// PagesPath is the URL prefix page images are served under.
const PagesPath = "/api/v1/pages/"

// View is the client-facing snapshot of a session.
type View struct {
	SessionID string    `json:"session_id"`
	ViewerID  string    `json:"viewer_id"`
	Comic     ComicView `json:"comic"`
	State     State     `json:"state"`
	Pages     []PageRef `json:"pages"`

	// Prefetch lists the page indices being warmed around the cursor.
	Prefetch []int `json:"prefetch"`

	// ScrollOffset is where to scroll to honour State.PendingScroll, when the
	// page geometry is known.
	ScrollOffset *float64 `json:"scroll_offset,omitempty"`
}

// ComicView is the comic part of a [View].
type ComicView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	SeriesID    string     `json:"series_id"`
	CurrentPage int        `json:"current_page"`
	TotalPages  int        `json:"total_pages"`
	LastRead    *time.Time `json:"last_read,omitempty"`
}

// PageRef points a client at one page image.
type PageRef struct {
	ID          string `json:"id"`
	Index       int    `json:"index"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	URL         string `json:"url"`
}

// viewLocked builds the snapshot. Called with the mutex held.
func (session *Session) viewLocked() View {
	view := View{
		SessionID: session.id,
		ViewerID:  session.viewerID,
		Comic: ComicView{
			ID:          session.comic.ID,
			Name:        session.comic.Name,
			SeriesID:    session.comic.SeriesID,
			CurrentPage: session.comic.CurrentPage,
			TotalPages:  session.comic.TotalPages,
			LastRead:    session.comic.LastRead,
		},
		State: session.state.clone(),
		Pages: slice.Map(session.comic.Pages, func(page archive.Page) PageRef {
			return PageRef{
				ID:          page.ID,
				Index:       page.Index,
				Name:        page.Name,
				ContentType: page.ContentType,
				Size:        page.Size,
				URL:         PagesPath + page.Handle.String(),
			}
		}),
		Prefetch: slice.Map(session.deps.Prefetcher.Window(session.comic.Pages, session.state.Cursor), func(page archive.Page) int {
			return page.Index
		}),
	}

	if target := session.state.PendingScroll; target != nil && session.observer != nil {
		offset := session.observer.OffsetOf(*target)
		view.ScrollOffset = &offset
	}

	return view
}
