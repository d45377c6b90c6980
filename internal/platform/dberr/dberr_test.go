// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicreader/internal/platform/apperr"
	"github.com/taibuivan/comicreader/internal/platform/dberr"
)

/*
TestWrap_Classification maps raw backend errors onto HTTP statuses.
*/
func TestWrap_Classification(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"pgx_no_rows", fmt.Errorf("postgres: get: %w", pgx.ErrNoRows), http.StatusNotFound},
		{"sql_no_rows", fmt.Errorf("sqlite: get: %w", sql.ErrNoRows), http.StatusNotFound},
		{"redis_nil", redis.Nil, http.StatusNotFound},
		{"deadline", fmt.Errorf("redis: %w", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"unknown", errors.New("syntax error"), http.StatusInternalServerError},
		{"already_classified", apperr.Conflict("stale"), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae := apperr.As(dberr.Wrap(tt.err, "Progress"))
			require.NotNil(t, ae)
			assert.Equal(t, tt.wantStatus, ae.HTTPStatus)
		})
	}

	assert.NoError(t, dberr.Wrap(nil, "Progress"))
}
