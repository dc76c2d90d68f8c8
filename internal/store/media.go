// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

const mediaColumns = `m.id, m.filename, m.original_name, m.mime_type, m.size, m.url, m.bucket, m.path,
	m.thumbnail_url, m.width, m.height, m.alt_text, m.caption, m.uploaded_by, m.created_at, m.updated_at`

func scanMedia(r rowScanner) (Media, error) {
	var m Media
	err := r.Scan(&m.ID, &m.Filename, &m.OriginalName, &m.MimeType, &m.Size, &m.URL, &m.Bucket, &m.Path,
		&m.ThumbnailURL, &m.Width, &m.Height, &m.AltText, &m.Caption, &m.UploadedBy, &m.CreatedAt, &m.UpdatedAt)
	return m, translateError(err)
}

// MediaFilter narrows a media listing.
type MediaFilter struct {
	MimeType   string
	UploadedBy string
	Search     string
}

// ListMedia returns one page of media items.
func (q *Queries) ListMedia(ctx context.Context, f MediaFilter, p Pagination) ([]Media, int64, error) {
	l := NewListQuery(q.dialect, mediaColumns, "media m", "m.id").
		TypePrefix("m.mime_type", f.MimeType).
		Eq("m.uploaded_by", f.UploadedBy).
		Search(f.Search, "m.original_name", "m.alt_text")
	return runList(ctx, q, l, p, scanMedia)
}

// GetMedia returns a media item by id.
func (q *Queries) GetMedia(ctx context.Context, id string) (Media, error) {
	return scanMedia(q.queryRow(ctx, "SELECT "+mediaColumns+" FROM media m WHERE m.id = ?", id))
}

// CreateMediaParams describes a stored object.
type CreateMediaParams struct {
	Filename     string
	OriginalName string
	MimeType     string
	Size         int64
	URL          string
	Bucket       string
	Path         string
	ThumbnailURL sql.NullString
	Width        sql.NullInt64
	Height       sql.NullInt64
	AltText      sql.NullString
	Caption      sql.NullString
	UploadedBy   string
}

// CreateMedia inserts a media record.
func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (Media, error) {
	now := q.now()
	m := Media{
		ID:           uuid.NewString(),
		Filename:     arg.Filename,
		OriginalName: arg.OriginalName,
		MimeType:     arg.MimeType,
		Size:         arg.Size,
		URL:          arg.URL,
		Bucket:       arg.Bucket,
		Path:         arg.Path,
		ThumbnailURL: arg.ThumbnailURL,
		Width:        arg.Width,
		Height:       arg.Height,
		AltText:      arg.AltText,
		Caption:      arg.Caption,
		UploadedBy:   arg.UploadedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := q.exec(ctx, `INSERT INTO media (id, filename, original_name, mime_type, size, url, bucket, path,
		thumbnail_url, width, height, alt_text, caption, uploaded_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Filename, m.OriginalName, m.MimeType, m.Size, m.URL, m.Bucket, m.Path,
		m.ThumbnailURL, m.Width, m.Height, m.AltText, m.Caption, m.UploadedBy, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return Media{}, err
	}
	return m, nil
}

// UpdateMediaMeta sets the alt text and caption of a media item.
func (q *Queries) UpdateMediaMeta(ctx context.Context, id string, altText, caption sql.NullString) (Media, error) {
	res, err := q.exec(ctx, "UPDATE media SET alt_text = ?, caption = ?, updated_at = ? WHERE id = ?",
		altText, caption, q.now(), id)
	if err := requireAffected(res, err); err != nil {
		return Media{}, err
	}
	return q.GetMedia(ctx, id)
}

// DeleteMedia removes a media record. Posts featuring it lose their image.
func (q *Queries) DeleteMedia(ctx context.Context, id string) error {
	if _, err := q.exec(ctx, "UPDATE posts SET featured_image_id = NULL WHERE featured_image_id = ?", id); err != nil {
		return err
	}
	if _, err := q.exec(ctx, "DELETE FROM gallery_media WHERE media_id = ?", id); err != nil {
		return err
	}
	res, err := q.exec(ctx, "DELETE FROM media WHERE id = ?", id)
	return requireAffected(res, err)
}
