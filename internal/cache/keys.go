// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
)

// Key prefixes for cached API responses.
const (
	PrefixStats      = "stats:"
	PrefixCategories = "categories:"

	KeyCategoriesAll = PrefixCategories + "all"
)

// StatsKey identifies a stats snapshot for a viewer scope. An empty author
// means the unrestricted view.
func StatsKey(authorID, entityType string) string {
	if authorID == "" {
		authorID = "*"
	}
	if entityType == "" {
		entityType = "*"
	}
	return PrefixStats + authorID + ":" + entityType
}

// Invalidate drops every key under the given prefixes. Errors are logged;
// stale entries expire with their TTL.
func Invalidate(ctx context.Context, c Cache, prefixes ...string) {
	for _, p := range prefixes {
		if err := c.DeleteByPrefix(ctx, p); err != nil {
			slog.WarnContext(ctx, "cache invalidation failed", "prefix", p, "error", err)
		}
	}
}
