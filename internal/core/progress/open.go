// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taibuivan/comicreader/internal/platform/migration"
	"github.com/taibuivan/comicreader/internal/platform/postgres"
	"github.com/taibuivan/comicreader/internal/platform/redis"
	"github.com/taibuivan/comicreader/internal/platform/sqlite"
)

// Options carries the connection settings of every backend; only the fields of
// the selected Driver are read.
type Options struct {
	Driver        string
	SQLitePath    string
	DatabaseURL   string
	MigrationPath string
	RedisURL      string
}

// ownedStore closes the connection it was opened with.
type ownedStore struct {
	Store
	release func() error
}

func (store ownedStore) Close() error {
	return store.release()
}

/*
Open connects the backend named by options.Driver and returns a [Store] that
owns its connection: closing the store closes the pool or client.

Returns:
  - Store: Ready to use, schema applied
  - error: Connection or migration failures, or [ErrUnknownDriver]
*/
func Open(context context.Context, options Options, logger *slog.Logger) (Store, error) {
	switch options.Driver {
	case DriverMemory:
		return NewMemoryStore(), nil

	case DriverSQLite:
		db, err := sqlite.Open(context, options.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		store, err := NewSQLiteStore(context, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return store, nil

	case DriverPostgres:
		if err := migration.RunUp(options.DatabaseURL, options.MigrationPath, logger); err != nil {
			return nil, err
		}
		pool, err := postgres.NewPool(context, options.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		return ownedStore{
			Store:   NewPostgresStore(pool),
			release: func() error { pool.Close(); return nil },
		}, nil

	case DriverRedis:
		client, err := redis.NewClient(context, options.RedisURL, logger)
		if err != nil {
			return nil, err
		}
		return ownedStore{Store: NewRedisStore(client), release: client.Close}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, options.Driver)
}
