// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package reader drives an open comic: the page cursor, zoom and pan, layout and
per-page display state.

# Layers

  - [State] and its transition functions are pure. Each takes a State and
    returns the next one, so every rule can be tested without goroutines.
  - [Session] applies transitions under a mutex and performs their effects:
    progress writes, settings writes, page prefetching and handle release.
  - [Service] owns the sessions of all viewers and the open/close lifecycle.

# Continuous layout

In continuous layout the cursor is derived from the scroll position (see
[ScrollObserver]). Advance and Retreat do not move the cursor there; they set
[State.PendingScroll] and the client scrolls that page into view, which then
moves the cursor through [ObserveScroll].
*/
package reader

import (
	"maps"

	"github.com/taibuivan/comicreader/internal/core/progress"
	"github.com/taibuivan/comicreader/internal/platform/constants"
)

// Point is a pan offset in image pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the natural size of a page image.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// State is the runtime reading state of one open comic. It is never persisted.
type State struct {
	Cursor int `json:"cursor"`
	Total  int `json:"total"`

	Zoom float64 `json:"zoom"`
	Pan  Point   `json:"pan"`

	Layout    progress.PageLayout       `json:"page_layout"`
	Direction progress.ReadingDirection `json:"reading_direction"`
	Fit       progress.FitMode          `json:"fit_mode"`

	// ImageSize is the natural size of the current page, zero until known.
	ImageSize Size `json:"image_size"`

	Fullscreen      bool `json:"fullscreen"`
	ControlsVisible bool `json:"controls_visible"`

	// Loaded and Failed hold page indices; a page is in at most one of them.
	Loaded map[int]Size `json:"loaded"`
	Failed map[int]bool `json:"failed"`

	// PendingScroll is the page the client should scroll into view in
	// continuous layout, or nil.
	PendingScroll *int `json:"pending_scroll,omitempty"`
}

// NewState builds the initial state of a comic with total pages, restoring
// cursor (clamped) and the layout choices of settings.
func NewState(total, cursor int, settings progress.Settings) State {
	return State{
		Cursor:          clampIndex(cursor, total),
		Total:           total,
		Zoom:            1,
		Layout:          settings.PageLayout,
		Direction:       settings.ReadingDirection,
		Fit:             settings.FitMode,
		ControlsVisible: true,
		Loaded:          map[int]Size{},
		Failed:          map[int]bool{},
	}
}

// clone copies the maps so transitions never alias their input.
func (state State) clone() State {
	state.Loaded = maps.Clone(state.Loaded)
	state.Failed = maps.Clone(state.Failed)
	if state.PendingScroll != nil {
		target := *state.PendingScroll
		state.PendingScroll = &target
	}
	return state
}

// # Page-Order Movement

// step is how far one movement goes in the current layout.
func (state State) step() int {
	if state.Layout == progress.LayoutDouble {
		return 2
	}
	return 1
}

// Advance moves toward the last page. At the last page it is a no-op.
func Advance(state State) State {
	return move(state, state.step())
}

// Retreat moves toward the first page. At the first page it is a no-op.
func Retreat(state State) State {
	return move(state, -state.step())
}

func move(state State, delta int) State {
	if state.Total == 0 {
		return state
	}

	target := clampIndex(state.Cursor+delta, state.Total)

	if state.Layout == progress.LayoutContinuous {
		next := state.clone()
		if target == state.Cursor {
			next.PendingScroll = nil
		} else {
			next.PendingScroll = &target
		}
		return next
	}

	return setCursor(state, target)
}

// # User Intents

// Next is the "forward" user action. It follows the reading direction:
// in right-to-left comics forward means a lower page index.
func Next(state State) State {
	if state.Direction == progress.DirectionRTL {
		return Retreat(state)
	}
	return Advance(state)
}

// Prev is the "backward" user action, mirroring [Next].
func Prev(state State) State {
	if state.Direction == progress.DirectionRTL {
		return Advance(state)
	}
	return Retreat(state)
}

// First jumps to the first page.
func First(state State) State {
	return GoTo(state, 0)
}

// Last jumps to the last page.
func Last(state State) State {
	return GoTo(state, state.Total-1)
}

// GoTo jumps to page index, clamped to the comic. In continuous layout the
// jump becomes a scroll request.
func GoTo(state State, index int) State {
	if state.Total == 0 {
		return state
	}
	target := clampIndex(index, state.Total)

	if state.Layout == progress.LayoutContinuous {
		next := state.clone()
		next.PendingScroll = &target
		return next
	}
	return setCursor(state, target)
}

// setCursor moves the cursor. A new page starts unzoomed.
func setCursor(state State, index int) State {
	if index == state.Cursor {
		return state
	}
	next := state.clone()
	next.Cursor = index
	next.ImageSize = next.Loaded[index]
	next.Zoom = 1
	next.Pan = Point{}
	next.PendingScroll = nil
	return next
}

// # Zoom & Pan

// SetZoom clamps factor to the zoom bounds. It is a no-op in continuous
// layout, where pages are always fit to width. A zoom of 1 or less recentres.
func SetZoom(state State, factor float64) State {
	if state.Layout == progress.LayoutContinuous {
		return state
	}

	next := state.clone()
	next.Zoom = min(max(factor, constants.MinZoom), constants.MaxZoom)
	if next.Zoom <= 1 {
		next.Pan = Point{}
	} else {
		next.Pan = clampPan(next, next.Pan)
	}
	return next
}

// ZoomIn increases zoom by one step.
func ZoomIn(state State) State {
	return SetZoom(state, state.Zoom+constants.ZoomStep)
}

// ZoomOut decreases zoom by one step.
func ZoomOut(state State) State {
	return SetZoom(state, state.Zoom-constants.ZoomStep)
}

// Pan moves the zoomed image by (dx, dy). The offset is bounded per axis by
// (zoom-1)*dimension/2 so the image centre always stays in view. It is a no-op
// unless zoomed in outside continuous layout.
func Pan(state State, dx, dy float64) State {
	if state.Layout == progress.LayoutContinuous || state.Zoom <= 1 {
		return state
	}

	next := state.clone()
	next.Pan = clampPan(next, Point{X: state.Pan.X + dx, Y: state.Pan.Y + dy})
	return next
}

func clampPan(state State, offset Point) Point {
	size := state.ImageSize
	limitX := (state.Zoom - 1) * float64(size.Width) / 2
	limitY := (state.Zoom - 1) * float64(size.Height) / 2

	return Point{
		X: min(max(offset.X, -limitX), limitX),
		Y: min(max(offset.Y, -limitY), limitY),
	}
}

// ResetView restores zoom 1 and no pan.
func ResetView(state State) State {
	next := state.clone()
	next.Zoom = 1
	next.Pan = Point{}
	return next
}

// # Layout & Chrome

// SetLayout switches layout. Entering continuous layout resets the view.
func SetLayout(state State, layout progress.PageLayout) State {
	next := state.clone()
	next.Layout = layout
	next.PendingScroll = nil
	if layout == progress.LayoutContinuous {
		next.Zoom = 1
		next.Pan = Point{}
	}
	return next
}

// SetDirection sets the reading direction.
func SetDirection(state State, direction progress.ReadingDirection) State {
	next := state.clone()
	next.Direction = direction
	return next
}

// SetFit sets the fit mode.
func SetFit(state State, fit progress.FitMode) State {
	next := state.clone()
	next.Fit = fit
	return next
}

// ToggleFullscreen flips fullscreen.
func ToggleFullscreen(state State) State {
	next := state.clone()
	next.Fullscreen = !next.Fullscreen
	return next
}

// ToggleControls flips control visibility.
func ToggleControls(state State) State {
	next := state.clone()
	next.ControlsVisible = !next.ControlsVisible
	return next
}

// # Per-Page Display State

// MarkLoaded records that page index displayed with the given natural size.
func MarkLoaded(state State, index int, size Size) State {
	if !validIndex(index, state.Total) {
		return state
	}
	next := state.clone()
	next.Loaded[index] = size
	delete(next.Failed, index)
	if index == next.Cursor {
		next.ImageSize = size
		next.Pan = clampPan(next, next.Pan)
	}
	return next
}

// SetImageSize records the current page's natural size when it is learnt
// outside the display path, for example from the prefetch cache.
func SetImageSize(state State, size Size) State {
	next := state.clone()
	next.ImageSize = size
	next.Pan = clampPan(next, next.Pan)
	return next
}

// MarkFailed records that page index could not be displayed.
func MarkFailed(state State, index int) State {
	if !validIndex(index, state.Total) {
		return state
	}
	next := state.clone()
	next.Failed[index] = true
	delete(next.Loaded, index)
	return next
}

// RetryPage clears page index from both sets so the client loads it again.
func RetryPage(state State, index int) State {
	if !validIndex(index, state.Total) {
		return state
	}
	next := state.clone()
	delete(next.Loaded, index)
	delete(next.Failed, index)
	return next
}

// # Scrolling

// ObserveScroll derives the cursor from the viewport in continuous layout:
// the page containing the viewport's vertical centre becomes current. Outside
// continuous layout, or without page geometry, it is a no-op.
func ObserveScroll(state State, observer *ScrollObserver, scrollTop, viewportHeight float64) State {
	if state.Layout != progress.LayoutContinuous || observer == nil || observer.Len() == 0 {
		return state
	}

	index := clampIndex(observer.PageAt(scrollTop+viewportHeight/2), state.Total)
	next := state.clone()

	if next.PendingScroll != nil && *next.PendingScroll == index {
		next.PendingScroll = nil
	}
	if index != next.Cursor {
		next.Cursor = index
		next.ImageSize = next.Loaded[index]
		next.Zoom = 1
		next.Pan = Point{}
	}
	return next
}

// # Helpers

func clampIndex(index, total int) int {
	if total <= 0 {
		return 0
	}
	return min(max(index, 0), total-1)
}

func validIndex(index, total int) bool {
	return index >= 0 && index < total
}
