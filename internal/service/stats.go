// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/ocms-api/internal/cache"
	"github.com/olegiv/ocms-api/internal/store"
)

// recentLimit is the number of newest posts and pages in a dashboard.
const recentLimit = 5

// StatusCounts counts content by status.
type StatusCounts struct {
	Total     int64 `json:"total"`
	Published int64 `json:"published"`
	Draft     int64 `json:"draft"`
}

// Overview holds the headline numbers of a dashboard.
type Overview struct {
	Posts      StatusCounts `json:"posts"`
	Pages      StatusCounts `json:"pages"`
	Categories int64        `json:"categories"`
	Media      int64        `json:"media"`
}

// CategoryCount is the number of posts in one category.
type CategoryCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// RecentItem is a post or page in the recent-content lists.
type RecentItem struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
}

// RecentContent lists the newest posts and pages.
type RecentContent struct {
	Posts []RecentItem `json:"posts"`
	Pages []RecentItem `json:"pages"`
}

// Stats is the dashboard summary.
type Stats struct {
	Overview        Overview        `json:"overview"`
	PostsByCategory []CategoryCount `json:"postsByCategory"`
	RecentContent   RecentContent   `json:"recentContent"`
}

// StatsService computes dashboard summaries and caches them per scope.
type StatsService struct {
	store *store.Store
	cache *cache.TypedCache[Stats]
}

// NewStatsService creates a stats service caching results in c for ttl.
func NewStatsService(s *store.Store, c cache.Cache, ttl time.Duration) *StatsService {
	return &StatsService{store: s, cache: cache.NewTypedCache[Stats](c, ttl)}
}

// Get returns the summary for scope. An empty AuthorID covers everyone.
func (s *StatsService) Get(ctx context.Context, scope store.StatsScope) (Stats, error) {
	return s.cache.GetOrLoad(ctx, cache.StatsKey(scope.AuthorID, scope.EntityType), func(ctx context.Context) (Stats, error) {
		return s.compute(ctx, scope)
	})
}

func (s *StatsService) compute(ctx context.Context, scope store.StatsScope) (Stats, error) {
	var (
		st       Stats
		posts    store.StatusCounts
		pages    store.StatusCounts
		byCat    []store.CategoryCount
		recentPo []store.RecentItem
		recentPa []store.RecentItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		posts, err = s.store.PostCounts(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		pages, err = s.store.PageCounts(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		st.Overview.Categories, err = s.store.CountCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		st.Overview.Media, err = s.store.CountMedia(gctx, scope.AuthorID)
		return err
	})
	g.Go(func() (err error) {
		byCat, err = s.store.PostsByCategory(gctx, scope)
		return err
	})
	g.Go(func() (err error) {
		recentPo, err = s.store.RecentPosts(gctx, scope, recentLimit)
		return err
	})
	g.Go(func() (err error) {
		recentPa, err = s.store.RecentPages(gctx, scope, recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	st.Overview.Posts = StatusCounts(posts)
	st.Overview.Pages = StatusCounts(pages)
	st.PostsByCategory = make([]CategoryCount, 0, len(byCat))
	for _, c := range byCat {
		st.PostsByCategory = append(st.PostsByCategory, CategoryCount(c))
	}
	st.RecentContent.Posts = recentItems(recentPo)
	st.RecentContent.Pages = recentItems(recentPa)
	return st, nil
}

func recentItems(in []store.RecentItem) []RecentItem {
	out := make([]RecentItem, 0, len(in))
	for _, it := range in {
		out = append(out, RecentItem(it))
	}
	return out
}
