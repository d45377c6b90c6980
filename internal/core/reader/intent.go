// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reader

import "github.com/taibuivan/comicreader/internal/platform/apperr"

// Intent is a named user action.
type Intent string

const (
	IntentNext             Intent = "next"
	IntentPrev             Intent = "prev"
	IntentFirst            Intent = "first"
	IntentLast             Intent = "last"
	IntentZoomIn           Intent = "zoom_in"
	IntentZoomOut          Intent = "zoom_out"
	IntentResetView        Intent = "reset_view"
	IntentToggleFullscreen Intent = "toggle_fullscreen"
	IntentToggleControls   Intent = "toggle_controls"
)

// transitions maps each intent to its pure transition.
var transitions = map[Intent]func(State) State{
	IntentNext:             Next,
	IntentPrev:             Prev,
	IntentFirst:            First,
	IntentLast:             Last,
	IntentZoomIn:           ZoomIn,
	IntentZoomOut:          ZoomOut,
	IntentResetView:        ResetView,
	IntentToggleFullscreen: ToggleFullscreen,
	IntentToggleControls:   ToggleControls,
}

// keyBindings are the reader's keyboard shortcuts, by DOM KeyboardEvent.key.
var keyBindings = map[string]Intent{
	"ArrowRight": IntentNext,
	" ":          IntentNext,
	"Space":      IntentNext,
	"ArrowLeft":  IntentPrev,
	"Home":       IntentFirst,
	"End":        IntentLast,
	"+":          IntentZoomIn,
	"=":          IntentZoomIn,
	"-":          IntentZoomOut,
	"0":          IntentResetView,
	"f":          IntentToggleFullscreen,
	"F":          IntentToggleFullscreen,
	"c":          IntentToggleControls,
	"C":          IntentToggleControls,
}

// KeyIntent returns the intent bound to a keyboard key.
func KeyIntent(key string) (Intent, bool) {
	intent, ok := keyBindings[key]
	return intent, ok
}

// Transition returns the transition of intent, or a VALIDATION_ERROR.
func (intent Intent) Transition() (func(State) State, error) {
	transition, ok := transitions[intent]
	if !ok {
		return nil, apperr.ValidationError("Unknown intent", apperr.FieldError{Field: "intent", Message: "Unknown intent " + string(intent)})
	}
	return transition, nil
}
