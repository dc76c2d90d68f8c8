// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const galleryColumns = "gl.id, gl.title, gl.slug, gl.description, gl.entity_type, gl.created_at, gl.updated_at"

const galleryRowColumns = galleryColumns + ", COUNT(gm.media_id)"

func galleryFields(g *Gallery) []any {
	return []any{&g.ID, &g.Title, &g.Slug, &g.Description, &g.EntityType, &g.CreatedAt, &g.UpdatedAt}
}

func scanGallery(r rowScanner) (Gallery, error) {
	var g Gallery
	err := r.Scan(galleryFields(&g)...)
	return g, translateError(err)
}

func scanGalleryRow(r rowScanner) (GalleryRow, error) {
	var g GalleryRow
	dest := append(galleryFields(&g.Gallery), &g.MediaCount)
	err := r.Scan(dest...)
	return g, translateError(err)
}

// GalleryFilter narrows a gallery listing.
type GalleryFilter struct {
	EntityType string
	Search     string
}

// ListGalleries returns one page of galleries with media counts.
func (q *Queries) ListGalleries(ctx context.Context, f GalleryFilter, p Pagination) ([]GalleryRow, int64, error) {
	l := NewListQuery(q.dialect, galleryRowColumns, "galleries gl", "gl.id").
		Join("LEFT JOIN gallery_media gm ON gm.gallery_id = gl.id").
		Eq("gl.entity_type", f.EntityType).
		Search(f.Search, "gl.title").
		GroupBy("gl.id")
	return runList(ctx, q, l, p, scanGalleryRow)
}

// GetGallery returns a gallery by id.
func (q *Queries) GetGallery(ctx context.Context, id string) (Gallery, error) {
	return scanGallery(q.queryRow(ctx, "SELECT "+galleryColumns+" FROM galleries gl WHERE gl.id = ?", id))
}

// GetGalleryBySlug returns a gallery by slug.
func (q *Queries) GetGalleryBySlug(ctx context.Context, slug string) (Gallery, error) {
	return scanGallery(q.queryRow(ctx, "SELECT "+galleryColumns+" FROM galleries gl WHERE gl.slug = ?", slug))
}

// GalleryParams holds the writable columns of a gallery.
type GalleryParams struct {
	Title       string
	Slug        string
	Description sql.NullString
	EntityType  string
}

// CreateGallery inserts a gallery.
func (q *Queries) CreateGallery(ctx context.Context, arg GalleryParams) (Gallery, error) {
	now := q.now()
	g := Gallery{
		ID:          uuid.NewString(),
		Title:       arg.Title,
		Slug:        arg.Slug,
		Description: arg.Description,
		EntityType:  arg.EntityType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := q.exec(ctx, `INSERT INTO galleries (id, title, slug, description, entity_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Title, g.Slug, g.Description, g.EntityType, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return Gallery{}, err
	}
	return g, nil
}

// UpdateGallery overwrites a gallery's writable columns.
func (q *Queries) UpdateGallery(ctx context.Context, id string, arg GalleryParams) (Gallery, error) {
	res, err := q.exec(ctx, `UPDATE galleries SET title = ?, slug = ?, description = ?, entity_type = ?, updated_at = ?
		WHERE id = ?`, arg.Title, arg.Slug, arg.Description, arg.EntityType, q.now(), id)
	if err := requireAffected(res, err); err != nil {
		return Gallery{}, err
	}
	return q.GetGallery(ctx, id)
}

// DeleteGallery removes a gallery and its media links.
func (q *Queries) DeleteGallery(ctx context.Context, id string) error {
	if _, err := q.exec(ctx, "DELETE FROM gallery_media WHERE gallery_id = ?", id); err != nil {
		return err
	}
	res, err := q.exec(ctx, "DELETE FROM galleries WHERE id = ?", id)
	return requireAffected(res, err)
}

// ListGalleryMedia returns a gallery's media in display order.
func (q *Queries) ListGalleryMedia(ctx context.Context, galleryID string) ([]Media, error) {
	rows, err := q.query(ctx, "SELECT "+mediaColumns+
		" FROM media m JOIN gallery_media gm ON gm.media_id = m.id WHERE gm.gallery_id = ?"+
		" ORDER BY gm.position ASC, m.created_at ASC", galleryID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMedia)
}

// AddGalleryMedia appends media to the end of a gallery. Items already present keep their place.
func (q *Queries) AddGalleryMedia(ctx context.Context, galleryID string, mediaIDs []string) error {
	var next int64
	if err := q.queryRow(ctx, "SELECT COALESCE(MAX(position), -1) + 1 FROM gallery_media WHERE gallery_id = ?",
		galleryID).Scan(&next); err != nil {
		return translateError(err)
	}
	for _, id := range mediaIDs {
		res, err := q.exec(ctx, `INSERT INTO gallery_media (gallery_id, media_id, position) VALUES (?, ?, ?)
			ON CONFLICT DO NOTHING`, galleryID, id, next)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			next++
		}
	}
	return nil
}

// RemoveGalleryMedia detaches media from a gallery.
func (q *Queries) RemoveGalleryMedia(ctx context.Context, galleryID string, mediaIDs []string) error {
	for _, id := range mediaIDs {
		if _, err := q.exec(ctx, "DELETE FROM gallery_media WHERE gallery_id = ? AND media_id = ?",
			galleryID, id); err != nil {
			return err
		}
	}
	return nil
}

// ReorderGalleryMedia assigns positions following the order of mediaIDs.
func (q *Queries) ReorderGalleryMedia(ctx context.Context, galleryID string, mediaIDs []string) error {
	for i, id := range mediaIDs {
		if _, err := q.exec(ctx, "UPDATE gallery_media SET position = ? WHERE gallery_id = ? AND media_id = ?",
			i, galleryID, id); err != nil {
			return err
		}
	}
	return nil
}
