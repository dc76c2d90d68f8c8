// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/olegiv/ocms-api/internal/model"
)

const pageColumns = `g.id, g.title, g.slug, g.content, g.status, g.parent_id, g.author_id,
	g.entity_type, g.published_at, g.created_at, g.updated_at`

const pageRowColumns = pageColumns + ", u.name, u.email"

// maxPageDepth bounds the parent walk when checking for cycles.
const maxPageDepth = 64

func pageFields(p *Page) []any {
	return []any{&p.ID, &p.Title, &p.Slug, &p.Content, &p.Status, &p.ParentID, &p.AuthorID,
		&p.EntityType, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt}
}

func scanPage(r rowScanner) (Page, error) {
	var p Page
	err := r.Scan(pageFields(&p)...)
	return p, translateError(err)
}

func scanPageRow(r rowScanner) (PageRow, error) {
	var p PageRow
	dest := append(pageFields(&p.Page), &p.AuthorName, &p.AuthorEmail)
	err := r.Scan(dest...)
	return p, translateError(err)
}

// PageFilter narrows a page listing. ParentID "null" selects root pages.
type PageFilter struct {
	Viewer     Viewer
	Status     string
	EntityType string
	ParentID   string
	Search     string
}

// ListPages returns one page of pages visible to the viewer.
func (q *Queries) ListPages(ctx context.Context, f PageFilter, p Pagination) ([]PageRow, int64, error) {
	l := NewListQuery(q.dialect, pageRowColumns, "pages g", "g.id").
		Join("LEFT JOIN users u ON u.id = g.author_id").
		Visible(f.Viewer, "g.status", "g.author_id").
		Eq("g.status", f.Status).
		Eq("g.entity_type", f.EntityType).
		EqOrNull("g.parent_id", f.ParentID).
		Search(f.Search, "g.title")
	return runList(ctx, q, l, p, scanPageRow)
}

// ListPagesForTree returns every page visible to the viewer, ordered by title.
func (q *Queries) ListPagesForTree(ctx context.Context, v Viewer, entityType string) ([]Page, error) {
	query := "SELECT " + pageColumns + " FROM pages g WHERE 1 = 1"
	var args []any
	if !v.ReadAll {
		query += " AND (g.status = ? OR g.author_id = ?)"
		args = append(args, model.StatusPublished, v.UserID)
	}
	if entityType != "" {
		query += " AND g.entity_type = ?"
		args = append(args, entityType)
	}
	rows, err := q.query(ctx, query+" ORDER BY g.title ASC, g.id ASC", args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPage)
}

// GetPage returns a page with its author.
func (q *Queries) GetPage(ctx context.Context, id string) (PageRow, error) {
	return scanPageRow(q.queryRow(ctx, "SELECT "+pageRowColumns+
		" FROM pages g LEFT JOIN users u ON u.id = g.author_id WHERE g.id = ?", id))
}

// GetPageBySlug returns a page by its slug.
func (q *Queries) GetPageBySlug(ctx context.Context, slug string) (PageRow, error) {
	return scanPageRow(q.queryRow(ctx, "SELECT "+pageRowColumns+
		" FROM pages g LEFT JOIN users u ON u.id = g.author_id WHERE g.slug = ?", slug))
}

// PageParams holds the writable columns of a page.
type PageParams struct {
	Title       string
	Slug        string
	Content     string
	Status      string
	ParentID    sql.NullString
	EntityType  string
	PublishedAt sql.NullTime
}

// CreatePage inserts a page authored by authorID.
func (q *Queries) CreatePage(ctx context.Context, authorID string, arg PageParams) (Page, error) {
	now := q.now()
	p := Page{
		ID:          uuid.NewString(),
		Title:       arg.Title,
		Slug:        arg.Slug,
		Content:     arg.Content,
		Status:      arg.Status,
		ParentID:    arg.ParentID,
		AuthorID:    authorID,
		EntityType:  arg.EntityType,
		PublishedAt: arg.PublishedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := q.exec(ctx, `INSERT INTO pages (id, title, slug, content, status, parent_id, author_id,
		entity_type, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Slug, p.Content, p.Status, p.ParentID, p.AuthorID,
		p.EntityType, p.PublishedAt, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return Page{}, err
	}
	return p, nil
}

// UpdatePage overwrites the writable columns of a page.
func (q *Queries) UpdatePage(ctx context.Context, id string, arg PageParams) (Page, error) {
	res, err := q.exec(ctx, `UPDATE pages SET title = ?, slug = ?, content = ?, status = ?, parent_id = ?,
		entity_type = ?, published_at = ?, updated_at = ? WHERE id = ?`,
		arg.Title, arg.Slug, arg.Content, arg.Status, arg.ParentID,
		arg.EntityType, arg.PublishedAt, q.now(), id)
	if err := requireAffected(res, err); err != nil {
		return Page{}, err
	}
	return q.getPageRaw(ctx, id)
}

// SetPageStatus changes a page's status and publish timestamp.
func (q *Queries) SetPageStatus(ctx context.Context, id, status string, publishedAt sql.NullTime) (Page, error) {
	res, err := q.exec(ctx, "UPDATE pages SET status = ?, published_at = ?, updated_at = ? WHERE id = ?",
		status, publishedAt, q.now(), id)
	if err := requireAffected(res, err); err != nil {
		return Page{}, err
	}
	return q.getPageRaw(ctx, id)
}

// DeletePage removes a page. Children become root pages.
func (q *Queries) DeletePage(ctx context.Context, id string) error {
	if _, err := q.exec(ctx, "UPDATE pages SET parent_id = NULL WHERE parent_id = ?", id); err != nil {
		return err
	}
	res, err := q.exec(ctx, "DELETE FROM pages WHERE id = ?", id)
	return requireAffected(res, err)
}

// IsPageAncestor reports whether ancestorID appears on the parent chain of pageID,
// including pageID itself.
func (q *Queries) IsPageAncestor(ctx context.Context, ancestorID, pageID string) (bool, error) {
	cur := pageID
	for i := 0; i < maxPageDepth && cur != ""; i++ {
		if cur == ancestorID {
			return true, nil
		}
		var parent sql.NullString
		err := q.queryRow(ctx, "SELECT parent_id FROM pages WHERE id = ?", cur).Scan(&parent)
		if err != nil {
			if err = translateError(err); errors.Is(err, ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		cur = parent.String
	}
	return false, nil
}

func (q *Queries) getPageRaw(ctx context.Context, id string) (Page, error) {
	return scanPage(q.queryRow(ctx, "SELECT "+pageColumns+" FROM pages g WHERE g.id = ?", id))
}
