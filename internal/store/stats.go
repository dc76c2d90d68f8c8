// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/olegiv/ocms-api/internal/model"
)

// StatsScope restricts dashboard statistics. An empty AuthorID covers everyone.
type StatsScope struct {
	AuthorID   string
	EntityType string
}

// StatusCounts breaks a content table down by status.
type StatusCounts struct {
	Total     int64
	Published int64
	Draft     int64
}

// CategoryCount is the number of posts in one category.
type CategoryCount struct {
	ID    string
	Name  string
	Count int64
}

// RecentItem is a compact post or page for the dashboard.
type RecentItem struct {
	ID         string
	Title      string
	Status     string
	CreatedAt  time.Time
	AuthorID   string
	AuthorName string
}

func scopeWhere(s StatsScope, alias string) (string, []any) {
	where := " WHERE 1 = 1"
	var args []any
	if s.AuthorID != "" {
		where += " AND " + alias + ".author_id = ?"
		args = append(args, s.AuthorID)
	}
	if s.EntityType != "" {
		where += " AND " + alias + ".entity_type = ?"
		args = append(args, s.EntityType)
	}
	return where, args
}

// contentCounts counts rows of a posts-like table by status. table is trusted.
func (q *Queries) contentCounts(ctx context.Context, table string, s StatsScope) (StatusCounts, error) {
	where, args := scopeWhere(s, "x")
	var c StatusCounts
	query := "SELECT COUNT(*)," +
		" COUNT(CASE WHEN x.status = ? THEN 1 END)," +
		" COUNT(CASE WHEN x.status = ? THEN 1 END)" +
		" FROM " + table + " x" + where
	args = append([]any{model.StatusPublished, model.StatusDraft}, args...)
	err := q.queryRow(ctx, query, args...).Scan(&c.Total, &c.Published, &c.Draft)
	return c, translateError(err)
}

// PostCounts counts posts by status within the scope.
func (q *Queries) PostCounts(ctx context.Context, s StatsScope) (StatusCounts, error) {
	return q.contentCounts(ctx, "posts", s)
}

// PageCounts counts pages by status within the scope.
func (q *Queries) PageCounts(ctx context.Context, s StatsScope) (StatusCounts, error) {
	return q.contentCounts(ctx, "pages", s)
}

// CountCategories returns the number of categories.
func (q *Queries) CountCategories(ctx context.Context) (int64, error) {
	return q.count(ctx, "SELECT COUNT(*) FROM categories")
}

// CountMedia returns the number of media items, optionally for one uploader.
func (q *Queries) CountMedia(ctx context.Context, uploadedBy string) (int64, error) {
	if uploadedBy == "" {
		return q.count(ctx, "SELECT COUNT(*) FROM media")
	}
	return q.count(ctx, "SELECT COUNT(*) FROM media WHERE uploaded_by = ?", uploadedBy)
}

// PostsByCategory counts scoped posts per category, busiest first.
func (q *Queries) PostsByCategory(ctx context.Context, s StatsScope) ([]CategoryCount, error) {
	cond := ""
	var args []any
	if s.AuthorID != "" {
		cond += " AND x.author_id = ?"
		args = append(args, s.AuthorID)
	}
	if s.EntityType != "" {
		cond += " AND x.entity_type = ?"
		args = append(args, s.EntityType)
	}
	rows, err := q.query(ctx, "SELECT c.id, c.name, COUNT(x.id) FROM categories c"+
		" LEFT JOIN posts x ON x.category_id = c.id"+cond+
		" GROUP BY c.id, c.name ORDER BY COUNT(x.id) DESC, c.name ASC", args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r rowScanner) (CategoryCount, error) {
		var c CategoryCount
		err := r.Scan(&c.ID, &c.Name, &c.Count)
		return c, err
	})
}

// recentContent returns the newest rows of a posts-like table. table is trusted.
func (q *Queries) recentContent(ctx context.Context, table string, s StatsScope, limit int) ([]RecentItem, error) {
	where, args := scopeWhere(s, "x")
	rows, err := q.query(ctx, "SELECT x.id, x.title, x.status, x.created_at, x.author_id, COALESCE(u.name, '')"+
		" FROM "+table+" x LEFT JOIN users u ON u.id = x.author_id"+where+
		" ORDER BY x.created_at DESC, x.id DESC LIMIT ?", append(args, limit)...)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r rowScanner) (RecentItem, error) {
		var it RecentItem
		err := r.Scan(&it.ID, &it.Title, &it.Status, &it.CreatedAt, &it.AuthorID, &it.AuthorName)
		return it, err
	})
}

// RecentPosts returns the newest scoped posts.
func (q *Queries) RecentPosts(ctx context.Context, s StatsScope, limit int) ([]RecentItem, error) {
	return q.recentContent(ctx, "posts", s, limit)
}

// RecentPages returns the newest scoped pages.
func (q *Queries) RecentPages(ctx context.Context, s StatsScope, limit int) ([]RecentItem, error) {
	return q.recentContent(ctx, "pages", s, limit)
}
