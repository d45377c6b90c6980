// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/comicreader/internal/platform/ctxutil"
	"github.com/taibuivan/comicreader/internal/platform/validate"
)

// maxBodyBytes bounds JSON command bodies; reader commands are tiny.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.
An empty body leaves target untouched so commands without payload still work.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	decoder := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
IntParam retrieves a named URL parameter as a non-negative integer.

Returns:
  - int: The parsed value
  - error: A VALIDATION_ERROR naming the parameter when it is not a number
*/
func IntParam(request *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(chi.URLParam(request, name))
	if err != nil || value < 0 {
		return 0, validate.RequiredError(name, "Must be a non-negative integer")
	}
	return value, nil
}

/*
BoolQuery reports whether a query flag is set to a truthy value ("1", "true").
*/
func BoolQuery(request *http.Request, name string) bool {
	value, err := strconv.ParseBool(request.URL.Query().Get(name))
	return err == nil && value
}

/*
ViewerID returns the viewer that issued the request, see [ctxutil.GetViewer].
*/
func ViewerID(request *http.Request) string {
	return ctxutil.GetViewer(request.Context())
}
