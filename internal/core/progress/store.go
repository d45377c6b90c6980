// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	"context"
	"errors"
)

// # Progress & Settings Data Access

/*
Store is the durable key-value contract behind reading progress and settings.

# Ordering

Progress is a last-write-wins register keyed by comic. Writes carry their own
LastRead timestamp and a backend never replaces a record with an older one, so
a slow in-flight write cannot clobber fresher progress. Two writes racing with
the same timestamp may land in either order. No transactions span keys.
*/
type Store interface {

	/*
		GetProgress returns the saved position of a comic.

		Returns:
		  - Progress: The saved record
		  - bool: False when nothing was saved yet
		  - error: Storage failures
	*/
	GetProgress(context context.Context, comicID string) (Progress, bool, error)

	/*
		SetProgress stores a position unless a newer one is already saved.

		Returns:
		  - error: Storage failures
	*/
	SetProgress(context context.Context, progress Progress) error

	// ListProgress returns every saved record, most recently read first.
	ListProgress(context context.Context) ([]Progress, error)

	// GetSettings returns saved settings, or [DefaultSettings] if none exist.
	GetSettings(context context.Context) (Settings, error)

	// SetSettings replaces the global settings.
	SetSettings(context context.Context, settings Settings) error

	// Ping verifies the backend is reachable.
	Ping(context context.Context) error

	// Close releases backend resources.
	Close() error
}

// # Backend Selection

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// ErrUnknownDriver is returned for an unsupported STORE_DRIVER value.
var ErrUnknownDriver = errors.New("progress: unknown store driver")
