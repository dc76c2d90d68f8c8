// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(MemoryOptions{DefaultTTL: time.Minute})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get(missing) error = %v, want ErrCacheMiss", err)
	}

	src := []byte("value")
	if err := c.Set(ctx, "k", src, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	src[0] = 'X'

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "value" {
		t.Errorf("Get = %q, want value (stored copy must be isolated)", got)
	}

	got[0] = 'Y'
	again, _ := c.Get(ctx, "k")
	if string(again) != "value" {
		t.Errorf("returned slice aliases the cache: %q", again)
	}

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Sets != 1 || s.Items != 1 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(MemoryOptions{DefaultTTL: time.Minute})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "short", []byte("1"), time.Second)
	_ = c.Set(ctx, "long", []byte("2"), time.Hour)

	now = now.Add(2 * time.Second)
	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired entry returned, err = %v", err)
	}
	if _, err := c.Get(ctx, "long"); err != nil {
		t.Errorf("live entry missing: %v", err)
	}

	c.removeExpired()
	if s := c.Stats(); s.Items != 1 {
		t.Errorf("Items after sweep = %d, want 1", s.Items)
	}
}

func TestMemoryCache_DeleteByPrefix(t *testing.T) {
	c := NewMemoryCache(MemoryOptions{DefaultTTL: time.Minute})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	for _, k := range []string{"stats:a", "stats:b", "categories:all"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	if err := c.DeleteByPrefix(ctx, PrefixStats); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, "stats:a"); !errors.Is(err, ErrCacheMiss) {
		t.Error("stats:a should be gone")
	}
	if _, err := c.Get(ctx, KeyCategoriesAll); err != nil {
		t.Error("categories:all should survive")
	}

	_ = c.Delete(ctx, KeyCategoriesAll)
	if _, err := c.Get(ctx, KeyCategoriesAll); !errors.Is(err, ErrCacheMiss) {
		t.Error("Delete did not remove the key")
	}
}

func TestMemoryCache_MaxEntries(t *testing.T) {
	c := NewMemoryCache(MemoryOptions{DefaultTTL: time.Minute, MaxEntries: 2})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("a"), time.Second)
	_ = c.Set(ctx, "b", []byte("b"), time.Hour)
	_ = c.Set(ctx, "c", []byte("c"), time.Hour)

	if s := c.Stats(); s.Items != 2 {
		t.Errorf("Items = %d, want 2", s.Items)
	}
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Error("entry closest to expiry should have been evicted")
	}

	// Overwriting an existing key never evicts.
	_ = c.Set(ctx, "b", []byte("b2"), time.Hour)
	if _, err := c.Get(ctx, "c"); err != nil {
		t.Error("overwrite evicted another key")
	}
}

func TestMemoryCache_Closed(t *testing.T) {
	c := NewMemoryCache(MemoryOptions{DefaultTTL: time.Minute, CleanupInterval: time.Millisecond})
	_ = c.Close()
	_ = c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after Close = %v", err)
	}
	if err := c.Set(ctx, "k", nil, 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set after Close = %v", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := NewMemoryCache(MemoryOptions{DefaultTTL: time.Minute, MaxEntries: 50})
	defer func() { _ = c.Close() }()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := range 100 {
				key := StatsKey(string(rune('a'+i)), string(rune('a'+j%5)))
				_ = c.Set(ctx, key, []byte("x"), 0)
				_, _ = c.Get(ctx, key)
				if j%10 == 0 {
					_ = c.DeleteByPrefix(ctx, PrefixStats)
				}
			}
		}(i)
	}
	wg.Wait()

	if s := c.Stats(); s.Items > 50 {
		t.Errorf("Items = %d exceeds MaxEntries", s.Items)
	}
}
