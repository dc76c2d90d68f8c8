// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
	"time"
)

// Config holds configuration for cache creation.
type Config struct {
	// RedisURL selects the Redis backend when set.
	RedisURL   string
	Prefix     string
	DefaultTTL time.Duration
	MaxEntries int
}

// New returns a Redis cache when configured and reachable, otherwise a memory
// cache. A Redis failure is logged, not fatal.
func New(ctx context.Context, cfg Config) Cache {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = time.Minute
	}
	if cfg.RedisURL != "" {
		rc, err := NewRedisCache(ctx, RedisOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.Prefix,
			DefaultTTL: cfg.DefaultTTL,
		})
		if err == nil {
			slog.Info("using redis cache", "prefix", cfg.Prefix)
			return rc
		}
		slog.Warn("redis unavailable, falling back to memory cache", "error", err)
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10000
	}
	return NewMemoryCache(MemoryOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxEntries:      cfg.MaxEntries,
		CleanupInterval: time.Minute,
	})
}
