// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package progress

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/comicreader/internal/platform/constants"
)

// setProgressScript writes a progress hash unless the stored one is newer.
//
// KEYS[1] = progress key; ARGV[1] = current page; ARGV[2] = last read (Unix microseconds).
var setProgressScript = redis.NewScript(`
local stored = redis.call('HGET', KEYS[1], 'last_read')
if stored and tonumber(stored) > tonumber(ARGV[2]) then
	return 0
end
redis.call('HSET', KEYS[1], 'current_page', ARGV[1], 'last_read', ARGV[2])
return 1
`)

// RedisStore implements [Store] on Redis hashes.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed [Store].
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

/*
GetProgress reads the progress hash of a comic.

Parameters:
  - context: context.Context
  - comicID: string

Returns:
  - Progress: Saved record
  - bool: False if the key is absent
  - error: Connectivity or decoding errors
*/
func (repository *RedisStore) GetProgress(context context.Context, comicID string) (Progress, bool, error) {
	fields, err := repository.client.HGetAll(context, progressKey(comicID)).Result()
	if err != nil {
		return Progress{}, false, fmt.Errorf("redis_progress_get_failed: %w", err)
	}

	// HGETALL on a missing key yields an empty map, not redis.Nil
	if len(fields) == 0 {
		return Progress{}, false, nil
	}

	saved, err := decodeProgressHash(comicID, fields)
	if err != nil {
		return Progress{}, false, err
	}
	return saved, true, nil
}

/*
SetProgress runs the compare-and-set script so stale writes are dropped.

Parameters:
  - context: context.Context
  - progress: Progress

Returns:
  - error: Execution errors
*/
func (repository *RedisStore) SetProgress(context context.Context, progress Progress) error {
	keys := []string{progressKey(progress.ComicID)}
	err := setProgressScript.Run(context, repository.client, keys, progress.CurrentPage, progress.LastRead.UnixMicro()).Err()
	if err != nil {
		return fmt.Errorf("redis_progress_set_failed: %w", err)
	}
	return nil
}

// ListProgress scans every progress key.
func (repository *RedisStore) ListProgress(context context.Context) ([]Progress, error) {
	list := []Progress{}

	iterator := repository.client.Scan(context, 0, constants.RedisPrefixProgress+"*", 100).Iterator()
	for iterator.Next(context) {
		key := iterator.Val()
		comicID := strings.TrimPrefix(key, constants.RedisPrefixProgress)

		saved, ok, err := repository.GetProgress(context, comicID)
		if err != nil {
			return nil, err
		}
		if ok {
			list = append(list, saved)
		}
	}
	if err := iterator.Err(); err != nil {
		return nil, fmt.Errorf("redis_progress_scan_failed: %w", err)
	}

	sortByRecency(list)
	return list, nil
}

// GetSettings returns the stored settings document or the defaults.
func (repository *RedisStore) GetSettings(context context.Context) (Settings, error) {
	raw, err := repository.client.Get(context, constants.RedisKeySettings).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("redis_settings_get_failed: %w", err)
	}

	return decodeSettings(raw)
}

// SetSettings stores the settings document without expiry.
func (repository *RedisStore) SetSettings(context context.Context, settings Settings) error {
	raw, err := encodeSettings(settings)
	if err != nil {
		return err
	}

	if err := repository.client.Set(context, constants.RedisKeySettings, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis_settings_set_failed: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection.
func (repository *RedisStore) Ping(context context.Context) error {
	return repository.client.Ping(context).Err()
}

// Close is a no-op; the client is owned by the composition root.
func (repository *RedisStore) Close() error { return nil }

// # Internal Helpers

func progressKey(comicID string) string {
	return constants.RedisPrefixProgress + comicID
}

func decodeProgressHash(comicID string, fields map[string]string) (Progress, error) {
	page, err := strconv.Atoi(fields["current_page"])
	if err != nil {
		return Progress{}, fmt.Errorf("redis_progress_decode_failed: %w", err)
	}

	micros, err := strconv.ParseInt(fields["last_read"], 10, 64)
	if err != nil {
		return Progress{}, fmt.Errorf("redis_progress_decode_failed: %w", err)
	}

	return Progress{
		ComicID:     comicID,
		CurrentPage: page,
		LastRead:    time.UnixMicro(micros).UTC(),
	}, nil
}
