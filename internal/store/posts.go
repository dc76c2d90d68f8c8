// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-api/internal/model"
)

const postColumns = `p.id, p.title, p.slug, p.content, p.excerpt, p.status, p.category_id,
	p.featured_image_id, p.author_id, p.entity_type, p.published_at, p.created_at, p.updated_at`

const postRowColumns = postColumns + ", u.name, u.email, c.name"

const postJoins = ` LEFT JOIN users u ON u.id = p.author_id LEFT JOIN categories c ON c.id = p.category_id`

func postFields(p *Post) []any {
	return []any{&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.Status, &p.CategoryID,
		&p.FeaturedImageID, &p.AuthorID, &p.EntityType, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt}
}

func scanPost(r rowScanner) (Post, error) {
	var p Post
	err := r.Scan(postFields(&p)...)
	return p, translateError(err)
}

func scanPostRow(r rowScanner) (PostRow, error) {
	var p PostRow
	dest := append(postFields(&p.Post), &p.AuthorName, &p.AuthorEmail, &p.CategoryName)
	err := r.Scan(dest...)
	return p, translateError(err)
}

// PostFilter narrows a post listing.
type PostFilter struct {
	Viewer     Viewer
	Status     string
	EntityType string
	CategoryID string
	Search     string
}

// ListPosts returns one page of posts visible to the viewer and the total match count.
func (q *Queries) ListPosts(ctx context.Context, f PostFilter, p Pagination) ([]PostRow, int64, error) {
	l := NewListQuery(q.dialect, postRowColumns, "posts p", "p.id").
		Join("LEFT JOIN users u ON u.id = p.author_id").
		Join("LEFT JOIN categories c ON c.id = p.category_id").
		Visible(f.Viewer, "p.status", "p.author_id").
		Eq("p.status", f.Status).
		Eq("p.entity_type", f.EntityType).
		Eq("p.category_id", f.CategoryID).
		Search(f.Search, "p.title", "p.excerpt")
	return runList(ctx, q, l, p, scanPostRow)
}

// GetPost returns a post with its author and category.
func (q *Queries) GetPost(ctx context.Context, id string) (PostRow, error) {
	return scanPostRow(q.queryRow(ctx, "SELECT "+postRowColumns+" FROM posts p"+postJoins+" WHERE p.id = ?", id))
}

// GetPostBySlug returns a post by its slug.
func (q *Queries) GetPostBySlug(ctx context.Context, slug string) (PostRow, error) {
	return scanPostRow(q.queryRow(ctx, "SELECT "+postRowColumns+" FROM posts p"+postJoins+" WHERE p.slug = ?", slug))
}

// PostParams holds the writable columns of a post.
type PostParams struct {
	Title           string
	Slug            string
	Content         string
	Excerpt         sql.NullString
	Status          string
	CategoryID      sql.NullString
	FeaturedImageID sql.NullString
	EntityType      string
	PublishedAt     sql.NullTime
}

// CreatePost inserts a post authored by authorID.
func (q *Queries) CreatePost(ctx context.Context, authorID string, arg PostParams) (Post, error) {
	now := q.now()
	p := Post{
		ID:              uuid.NewString(),
		Title:           arg.Title,
		Slug:            arg.Slug,
		Content:         arg.Content,
		Excerpt:         arg.Excerpt,
		Status:          arg.Status,
		CategoryID:      arg.CategoryID,
		FeaturedImageID: arg.FeaturedImageID,
		AuthorID:        authorID,
		EntityType:      arg.EntityType,
		PublishedAt:     arg.PublishedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	_, err := q.exec(ctx, `INSERT INTO posts (id, title, slug, content, excerpt, status, category_id,
		featured_image_id, author_id, entity_type, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Slug, p.Content, p.Excerpt, p.Status, p.CategoryID,
		p.FeaturedImageID, p.AuthorID, p.EntityType, p.PublishedAt, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return Post{}, err
	}
	return p, nil
}

// UpdatePost overwrites the writable columns of a post.
func (q *Queries) UpdatePost(ctx context.Context, id string, arg PostParams) (Post, error) {
	res, err := q.exec(ctx, `UPDATE posts SET title = ?, slug = ?, content = ?, excerpt = ?, status = ?,
		category_id = ?, featured_image_id = ?, entity_type = ?, published_at = ?, updated_at = ?
		WHERE id = ?`,
		arg.Title, arg.Slug, arg.Content, arg.Excerpt, arg.Status,
		arg.CategoryID, arg.FeaturedImageID, arg.EntityType, arg.PublishedAt, q.now(), id)
	if err := requireAffected(res, err); err != nil {
		return Post{}, err
	}
	return q.getPostRaw(ctx, id)
}

// SetPostStatus changes a post's status and publish timestamp.
func (q *Queries) SetPostStatus(ctx context.Context, id, status string, publishedAt sql.NullTime) (Post, error) {
	res, err := q.exec(ctx, "UPDATE posts SET status = ?, published_at = ?, updated_at = ? WHERE id = ?",
		status, publishedAt, q.now(), id)
	if err := requireAffected(res, err); err != nil {
		return Post{}, err
	}
	return q.getPostRaw(ctx, id)
}

// DeletePost removes a post and its tag links.
func (q *Queries) DeletePost(ctx context.Context, id string) error {
	if _, err := q.exec(ctx, "DELETE FROM post_tags WHERE post_id = ?", id); err != nil {
		return err
	}
	res, err := q.exec(ctx, "DELETE FROM posts WHERE id = ?", id)
	return requireAffected(res, err)
}

// CountPostsInCategory returns how many posts reference the category.
func (q *Queries) CountPostsInCategory(ctx context.Context, categoryID string) (int64, error) {
	return q.count(ctx, "SELECT COUNT(*) FROM posts WHERE category_id = ?", categoryID)
}

func (q *Queries) getPostRaw(ctx context.Context, id string) (Post, error) {
	return scanPost(q.queryRow(ctx, "SELECT "+postColumns+" FROM posts p WHERE p.id = ?", id))
}

// requireAffected turns a zero-row write into ErrNotFound.
func requireAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// PublishedAtFor returns the publish timestamp a post or page should carry
// after moving from oldStatus to newStatus.
func PublishedAtFor(oldStatus, newStatus string, current sql.NullTime, now time.Time) sql.NullTime {
	switch {
	case newStatus != model.StatusPublished:
		return sql.NullTime{}
	case oldStatus != model.StatusPublished || !current.Valid:
		return sql.NullTime{Time: now, Valid: true}
	default:
		return current
	}
}
