// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	"regexp"
	"time"

	"github.com/taibuivan/comicreader/internal/platform/validate"
)

// FitMode controls how a page image is scaled to the viewport.
type FitMode string

const (
	// FitWidth scales the page to the viewport width.
	FitWidth FitMode = "width"
	// FitHeight scales the page to the viewport height.
	FitHeight FitMode = "height"
	// FitPage contains the whole page inside the viewport.
	FitPage FitMode = "page"
)

// PageLayout selects how many pages are shown and how navigation works.
type PageLayout string

const (
	// LayoutSingle shows one page at a time.
	LayoutSingle PageLayout = "single"
	// LayoutDouble shows a two-page spread.
	LayoutDouble PageLayout = "double"
	// LayoutContinuous stacks pages vertically; navigation follows scrolling.
	LayoutContinuous PageLayout = "continuous"
)

// ReadingDirection is the order in which the "next" action walks pages.
type ReadingDirection string

const (
	// DirectionLTR is left-to-right (western comics).
	DirectionLTR ReadingDirection = "ltr"
	// DirectionRTL is right-to-left (manga).
	DirectionRTL ReadingDirection = "rtl"
)

// ── Aggregate ────────────────────────────────────────────────────────────────

// Settings are the global reading preferences of the user.
//
// There is no per-comic override: one set applies to every comic.
type Settings struct {
	FitMode          FitMode          `json:"fit_mode"`
	PageLayout       PageLayout       `json:"page_layout"`
	ReadingDirection ReadingDirection `json:"reading_direction"`
	BackgroundColor  string           `json:"background_color"` // "#rrggbb".
	ShowProgress     bool             `json:"show_progress"`
}

// DefaultSettings returns the settings used when none were saved.
func DefaultSettings() Settings {
	return Settings{
		FitMode:          FitWidth,
		PageLayout:       LayoutSingle,
		ReadingDirection: DirectionLTR,
		BackgroundColor:  "#000000",
		ShowProgress:     true,
	}
}

// Progress is the saved reading position of one comic.
type Progress struct {
	ComicID     string    `json:"comic_id"`
	CurrentPage int       `json:"current_page"`
	LastRead    time.Time `json:"last_read"`
}

// # Validation

const (
	FieldFitMode          = "fit_mode"
	FieldPageLayout       = "page_layout"
	FieldReadingDirection = "reading_direction"
	FieldBackgroundColor  = "background_color"
	FieldComicID          = "comic_id"
	FieldCurrentPage      = "current_page"
)

// MaxComicIDLength bounds comic identifiers accepted from clients. Directory
// source IDs encode a relative path, so the bound is generous.
const MaxComicIDLength = 4096

// hexColorRegex matches "#rgb" and "#rrggbb".
var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate reports every invalid field as a single VALIDATION_ERROR.
func (settings Settings) Validate() error {
	validator := &validate.Validator{}
	validator.OneOf(FieldFitMode, string(settings.FitMode), string(FitWidth), string(FitHeight), string(FitPage))
	validator.OneOf(FieldPageLayout, string(settings.PageLayout), string(LayoutSingle), string(LayoutDouble), string(LayoutContinuous))
	validator.OneOf(FieldReadingDirection, string(settings.ReadingDirection), string(DirectionLTR), string(DirectionRTL))
	validator.Custom(FieldBackgroundColor, !hexColorRegex.MatchString(settings.BackgroundColor), "Must be a hex colour such as #000000")
	return validator.Err()
}

// Validate checks the identity and page bounds of a progress record.
func (progress Progress) Validate() error {
	validator := &validate.Validator{}
	validator.Required(FieldComicID, progress.ComicID)
	validator.MaxLen(FieldComicID, progress.ComicID, MaxComicIDLength)
	validator.Custom(FieldCurrentPage, progress.CurrentPage < 0, "Page cannot be negative")
	return validator.Err()
}
