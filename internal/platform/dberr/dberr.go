// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level storage errors and
// higher-level application errors.
package dberr

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/comicreader/internal/platform/apperr"
)

// Wrap inspects a storage error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// The resource name is used for the NOT_FOUND message.
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// 1. Already classified
	if apperr.IsAppError(err) {
		return err
	}

	// 2. Not Found mapping, for every backend we speak to
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) || errors.Is(err, redis.Nil) {
		return apperr.NotFound(resource)
	}

	// 3. A store that timed out is unavailable rather than broken
	if errors.Is(err, context.DeadlineExceeded) {
		unavailable := apperr.ServiceUnavailable("The progress store did not respond in time")
		unavailable.Cause = err
		return unavailable
	}

	// 4. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}
