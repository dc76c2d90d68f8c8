// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// TypedCache stores JSON-encoded values of type T.
type TypedCache[T any] struct {
	cache Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewTypedCache wraps cache for values of type T.
func NewTypedCache[T any](cache Cache, ttl time.Duration) *TypedCache[T] {
	return &TypedCache[T]{cache: cache, ttl: ttl}
}

// Get returns the cached value, reporting false on a miss or decode failure.
func (c *TypedCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var value T
	data, err := c.cache.Get(ctx, key)
	if err != nil {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, false
	}
	return value, true
}

// Set stores value under key.
func (c *TypedCache[T]) Set(ctx context.Context, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.Set(ctx, key, data, c.ttl)
}

// GetOrLoad returns the cached value or calls load once per key across
// concurrent callers and caches its result. Cache write failures are logged
// and otherwise ignored.
func (c *TypedCache[T]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(ctx, key); ok {
		return v, nil
	}
	res, err, _ := c.group.Do(key, func() (any, error) {
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		if err := c.Set(ctx, key, v); err != nil {
			slog.WarnContext(ctx, "cache write failed", "key", key, "error", err)
		}
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return res.(T), nil
}
