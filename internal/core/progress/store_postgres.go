// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/comicreader/internal/platform/database/schema"
)

// settingsKey is the single row holding the global settings document.
const settingsKey = "reading"

// # PostgreSQL Repository

// postgresStore implements [Store] on a pgx pool. Schema is owned by the
// migrations in data/migrations.
type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgreSQL backed [Store].
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (store *postgresStore) GetProgress(context context.Context, comicID string) (Progress, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.ReaderProgress.Columns(), ", "),
		schema.ReaderProgress.Table,
		schema.ReaderProgress.ComicID,
	)

	var saved Progress
	err := store.pool.QueryRow(context, query, comicID).Scan(&saved.ComicID, &saved.CurrentPage, &saved.LastRead)
	if errors.Is(err, pgx.ErrNoRows) {
		return Progress{}, false, nil
	}
	if err != nil {
		return Progress{}, false, fmt.Errorf("postgres: failed to get progress: %w", err)
	}

	return saved, true, nil
}

/*
SetProgress upserts a position.

Description: The conflict branch only fires when the incoming LastRead is not
older than the stored one, which turns the table into a last-write-wins
register that ignores stale writes.
*/
func (store *postgresStore) SetProgress(context context.Context, progress Progress) error {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s)
		VALUES ($1, $2, $3)
		ON CONFLICT (%[2]s) DO UPDATE
		SET %[3]s = EXCLUDED.%[3]s, %[4]s = EXCLUDED.%[4]s
		WHERE EXCLUDED.%[4]s >= %[1]s.%[4]s
	`,
		schema.ReaderProgress.Table,
		schema.ReaderProgress.ComicID,
		schema.ReaderProgress.CurrentPage,
		schema.ReaderProgress.LastRead,
	)

	if _, err := store.pool.Exec(context, query, progress.ComicID, progress.CurrentPage, progress.LastRead.UTC()); err != nil {
		return fmt.Errorf("postgres: failed to set progress: %w", err)
	}
	return nil
}

func (store *postgresStore) ListProgress(context context.Context) ([]Progress, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s DESC, %s`,
		strings.Join(schema.ReaderProgress.Columns(), ", "),
		schema.ReaderProgress.Table,
		schema.ReaderProgress.LastRead, schema.ReaderProgress.ComicID,
	)

	rows, err := store.pool.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to list progress: %w", err)
	}
	defer rows.Close()

	list := []Progress{}
	for rows.Next() {
		var saved Progress
		if err := rows.Scan(&saved.ComicID, &saved.CurrentPage, &saved.LastRead); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan progress: %w", err)
		}
		list = append(list, saved)
	}

	return list, rows.Err()
}

func (store *postgresStore) GetSettings(context context.Context) (Settings, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.ReaderSettings.Value, schema.ReaderSettings.Table, schema.ReaderSettings.Key,
	)

	var raw []byte
	err := store.pool.QueryRow(context, query, settingsKey).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("postgres: failed to get settings: %w", err)
	}

	return decodeSettings(raw)
}

func (store *postgresStore) SetSettings(context context.Context, settings Settings) error {
	raw, err := encodeSettings(settings)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s)
		VALUES ($1, $2, now())
		ON CONFLICT (%[2]s) DO UPDATE
		SET %[3]s = EXCLUDED.%[3]s, %[4]s = EXCLUDED.%[4]s
	`,
		schema.ReaderSettings.Table,
		schema.ReaderSettings.Key,
		schema.ReaderSettings.Value,
		schema.ReaderSettings.UpdatedAt,
	)

	if _, err := store.pool.Exec(context, query, settingsKey, raw); err != nil {
		return fmt.Errorf("postgres: failed to set settings: %w", err)
	}
	return nil
}

func (store *postgresStore) Ping(context context.Context) error {
	return store.pool.Ping(context)
}

// Close is a no-op; the pool is owned by the composition root.
func (store *postgresStore) Close() error { return nil }

func encodeSettings(settings Settings) ([]byte, error) {
	raw, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("progress: failed to encode settings: %w", err)
	}
	return raw, nil
}

// decodeSettings overlays a stored document on the defaults so fields added
// later get their default value.
func decodeSettings(raw []byte) (Settings, error) {
	settings := DefaultSettings()
	if err := json.Unmarshal(raw, &settings); err != nil {
		return Settings{}, fmt.Errorf("progress: corrupt settings document: %w", err)
	}
	return settings, nil
}
