// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// sqliteSchema is applied on construction. SQLite has no schemas, so table
// names are prefixed instead. Timestamps are Unix microseconds.
const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS reader_progress (
		comic_id     TEXT    PRIMARY KEY,
		current_page INTEGER NOT NULL,
		last_read    INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reader_progress_last_read ON reader_progress (last_read DESC);
	CREATE TABLE IF NOT EXISTS reader_settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
`

// sqliteStore implements [Store] on an embedded SQLite file.
type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the tables if needed and returns a SQLite backed [Store].
func NewSQLiteStore(context context.Context, db *sql.DB) (Store, error) {
	if _, err := db.ExecContext(context, sqliteSchema); err != nil {
		return nil, fmt.Errorf("sqlite: failed to migrate: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (store *sqliteStore) GetProgress(context context.Context, comicID string) (Progress, bool, error) {
	var saved Progress
	var lastRead int64

	err := store.db.QueryRowContext(context,
		`SELECT comic_id, current_page, last_read FROM reader_progress WHERE comic_id = ?`, comicID,
	).Scan(&saved.ComicID, &saved.CurrentPage, &lastRead)
	if errors.Is(err, sql.ErrNoRows) {
		return Progress{}, false, nil
	}
	if err != nil {
		return Progress{}, false, fmt.Errorf("sqlite: failed to get progress: %w", err)
	}

	saved.LastRead = time.UnixMicro(lastRead).UTC()
	return saved, true, nil
}

func (store *sqliteStore) SetProgress(context context.Context, progress Progress) error {
	_, err := store.db.ExecContext(context, `
		INSERT INTO reader_progress (comic_id, current_page, last_read)
		VALUES (?, ?, ?)
		ON CONFLICT (comic_id) DO UPDATE
		SET current_page = excluded.current_page, last_read = excluded.last_read
		WHERE excluded.last_read >= reader_progress.last_read
	`, progress.ComicID, progress.CurrentPage, progress.LastRead.UnixMicro())
	if err != nil {
		return fmt.Errorf("sqlite: failed to set progress: %w", err)
	}
	return nil
}

func (store *sqliteStore) ListProgress(context context.Context) ([]Progress, error) {
	rows, err := store.db.QueryContext(context,
		`SELECT comic_id, current_page, last_read FROM reader_progress ORDER BY last_read DESC, comic_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to list progress: %w", err)
	}
	defer rows.Close()

	list := []Progress{}
	for rows.Next() {
		var saved Progress
		var lastRead int64
		if err := rows.Scan(&saved.ComicID, &saved.CurrentPage, &lastRead); err != nil {
			return nil, fmt.Errorf("sqlite: failed to scan progress: %w", err)
		}
		saved.LastRead = time.UnixMicro(lastRead).UTC()
		list = append(list, saved)
	}

	return list, rows.Err()
}

func (store *sqliteStore) GetSettings(context context.Context) (Settings, error) {
	var raw string
	err := store.db.QueryRowContext(context, `SELECT value FROM reader_settings WHERE key = ?`, settingsKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("sqlite: failed to get settings: %w", err)
	}

	return decodeSettings([]byte(raw))
}

func (store *sqliteStore) SetSettings(context context.Context, settings Settings) error {
	raw, err := encodeSettings(settings)
	if err != nil {
		return err
	}

	_, err = store.db.ExecContext(context, `
		INSERT INTO reader_settings (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, settingsKey, string(raw))
	if err != nil {
		return fmt.Errorf("sqlite: failed to set settings: %w", err)
	}
	return nil
}

func (store *sqliteStore) Ping(context context.Context) error {
	return store.db.PingContext(context)
}

func (store *sqliteStore) Close() error {
	return store.db.Close()
}
