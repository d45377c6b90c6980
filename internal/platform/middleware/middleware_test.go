// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicreader/internal/platform/constants"
	"github.com/taibuivan/comicreader/internal/platform/ctxutil"
	"github.com/taibuivan/comicreader/internal/platform/middleware"
)

type devConfig bool

func (c devConfig) IsDevelopment() bool { return bool(c) }

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

/*
TestRequestID keeps a client-supplied ID and generates one otherwise.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	t.Run("client_supplied", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRequestID, "req-42")

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, "req-42", seen)
		assert.Equal(t, "req-42", recorder.Header().Get(constants.HeaderXRequestID))
	})

	t.Run("generated", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, seen, 36)
		assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))
	})
}

/*
TestViewer checks the default viewer and the header length bound.
*/
func TestViewer(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing", "", constants.DefaultViewerID},
		{"blank", "   ", constants.DefaultViewerID},
		{"trimmed", " tablet ", "tablet"},
		{"truncated", strings.Repeat("v", 100), strings.Repeat("v", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := middleware.Viewer()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
				seen = ctxutil.GetViewer(request.Context())
			}))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set(constants.HeaderXViewerID, tt.header)
			}
			handler.ServeHTTP(httptest.NewRecorder(), request)

			assert.Equal(t, tt.want, seen)
		})
	}
}

/*
TestRateLimiter_Middleware lets the burst through and then answers 429.
*/
func TestRateLimiter_Middleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewRateLimiter(ctx, 0.001, 2)
	handler := limiter.Middleware()(okHandler)

	call := func(ip string) *httptest.ResponseRecorder {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRealIP, ip)
		handler.ServeHTTP(recorder, request)
		return recorder
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, call("10.0.0.1").Code)

	limited := call("10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(limited.Body.Bytes(), &body))
	assert.Equal(t, "RATE_LIMITED", body[constants.FieldCode])

	// Buckets are per address.
	assert.Equal(t, http.StatusOK, call("10.0.0.2").Code)
}

/*
TestPanicRecovery turns a panic into a 500 JSON response.
*/
func TestPanicRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := middleware.PanicRecovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("page decoder exploded")
	}))

	recorder := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body[constants.FieldCode])
}

/*
TestCORS covers development mode, the allow-list and pre-flight requests.
*/
func TestCORS(t *testing.T) {
	allowed := []string{"https://reader.example"}

	tests := []struct {
		name        string
		development bool
		method      string
		origin      string
		wantAllow   string
		wantStatus  int
	}{
		{"no_origin", false, http.MethodGet, "", "", http.StatusOK},
		{"development_any_origin", true, http.MethodGet, "http://localhost:5173", "http://localhost:5173", http.StatusOK},
		{"allowed_origin", false, http.MethodGet, "https://reader.example", "https://reader.example", http.StatusOK},
		{"unknown_origin", false, http.MethodGet, "https://evil.example", "", http.StatusOK},
		{"preflight", false, http.MethodOptions, "https://reader.example", "https://reader.example", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.CORS(devConfig(tt.development), allowed)(okHandler)

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				request.Header.Set(constants.HeaderOrigin, tt.origin)
			}
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantAllow, recorder.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

/*
TestParseOrigins drops blank entries and surrounding spaces.
*/
func TestParseOrigins(t *testing.T) {
	assert.Equal(t,
		[]string{"https://a.example", "https://b.example"},
		middleware.ParseOrigins(" https://a.example, ,https://b.example "),
	)
	assert.Nil(t, middleware.ParseOrigins(""))
}

/*
TestRealIP prefers proxy headers over the connection address.
*/
func TestRealIP(t *testing.T) {
	tests := []struct {
		name      string
		realIP    string
		forwarded string
		want      string
	}{
		{"x_real_ip", "203.0.113.7", "198.51.100.1", "203.0.113.7"},
		{"forwarded_first_hop", "", "198.51.100.1, 10.0.0.1", "198.51.100.1"},
		{"remote_addr", "", "", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.realIP != "" {
				request.Header.Set(constants.HeaderXRealIP, tt.realIP)
			}
			if tt.forwarded != "" {
				request.Header.Set(constants.HeaderXForwardedFor, tt.forwarded)
			}
			assert.Equal(t, tt.want, middleware.RealIP(request))
		})
	}
}
