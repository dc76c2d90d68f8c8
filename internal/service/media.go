// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/olegiv/ocms-api/internal/imaging"
	"github.com/olegiv/ocms-api/internal/model"
	"github.com/olegiv/ocms-api/internal/storage"
	"github.com/olegiv/ocms-api/internal/store"
)

// PresignExpiry is how long a presigned upload URL stays valid.
const PresignExpiry = 15 * time.Minute

// ErrUploadFailed wraps object store failures during an upload.
var ErrUploadFailed = errors.New("upload failed")

// ValidationError rejects an upload before anything is stored.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// UploadInput describes a received file. Body is nil when no file was sent.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// PresignedUpload lets a client upload directly to the object store.
type PresignedUpload struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	PublicURL string `json:"publicUrl"`
}

// MediaService stores uploaded files and keeps the media table in sync.
type MediaService struct {
	store   *store.Store
	storage storage.Storage
	thumb   model.ThumbnailConfig
	now     func() time.Time
}

// NewMediaService creates a new media service.
func NewMediaService(s *store.Store, st storage.Storage) *MediaService {
	return &MediaService{
		store:   s,
		storage: st,
		thumb:   model.Thumbnail,
		now:     time.Now,
	}
}

// Upload validates, stores and records a file. Nothing is written to the
// object store unless the file passes validation, and stored objects are
// removed again if the database insert fails.
func (s *MediaService) Upload(ctx context.Context, in UploadInput, actor Actor) (store.Media, error) {
	if in.Body == nil {
		return store.Media{}, invalid("No file provided")
	}
	if in.Size > model.MaxUploadSize {
		return store.Media{}, invalid("File too large (max 5MB)")
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, model.MaxUploadSize+1))
	if err != nil {
		return store.Media{}, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > model.MaxUploadSize {
		return store.Media{}, invalid("File too large (max 5MB)")
	}
	if len(data) == 0 {
		return store.Media{}, invalid("No file provided")
	}

	mimeType := normalizeMimeType(in.ContentType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = imaging.DetectMimeType(data)
	}
	if !model.AllowedMimeTypes[mimeType] {
		return store.Media{}, invalid("File type %s is not allowed", mimeType)
	}

	var (
		width, height sql.NullInt64
		thumb         *imaging.Rendition
	)
	if model.IsImageMime(mimeType) {
		info, err := imaging.Inspect(data)
		if err != nil || info.MimeType != mimeType {
			return store.Media{}, invalid("File content does not match type %s", mimeType)
		}
		width = sql.NullInt64{Int64: int64(info.Width), Valid: true}
		height = sql.NullInt64{Int64: int64(info.Height), Valid: true}

		thumb, err = imaging.Thumbnail(data, s.thumb)
		if err != nil {
			slog.WarnContext(ctx, "thumbnail generation failed", "file", in.Filename, "error", err)
			thumb = nil
		}
	}

	originalName := originalName(in.Filename)
	key := storage.ObjectKey(s.now(), mimeType, originalName)
	if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), mimeType); err != nil {
		return store.Media{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	stored := []string{key}

	var thumbURL sql.NullString
	if thumb != nil {
		thumbKey := storage.ThumbnailKey(key, thumb.MimeType)
		if err := s.storage.Put(ctx, thumbKey, bytes.NewReader(thumb.Data), int64(len(thumb.Data)), thumb.MimeType); err != nil {
			s.removeObjects(ctx, stored)
			return store.Media{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
		}
		stored = append(stored, thumbKey)
		thumbURL = sql.NullString{String: s.storage.URL(thumbKey), Valid: true}
	}

	var media store.Media
	err = s.store.InTx(ctx, func(q *store.Queries) error {
		var err error
		media, err = q.CreateMedia(ctx, store.CreateMediaParams{
			Filename:     path.Base(key),
			OriginalName: originalName,
			MimeType:     mimeType,
			Size:         int64(len(data)),
			URL:          s.storage.URL(key),
			Bucket:       s.storage.Bucket(),
			Path:         key,
			ThumbnailURL: thumbURL,
			Width:        width,
			Height:       height,
			UploadedBy:   actor.UserID,
		})
		if err != nil {
			return err
		}
		return LogActivity(ctx, q, actor, model.ActionCreate, model.EntityMedia, media.ID,
			map[string]any{"name": originalName})
	})
	if err != nil {
		s.removeObjects(ctx, stored)
		return store.Media{}, fmt.Errorf("recording media: %w", err)
	}
	return media, nil
}

// UpdateMeta sets the alt text and caption of a media item.
func (s *MediaService) UpdateMeta(ctx context.Context, id string, altText, caption sql.NullString, actor Actor) (store.Media, error) {
	var media store.Media
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		var err error
		media, err = q.UpdateMediaMeta(ctx, id, altText, caption)
		if err != nil {
			return err
		}
		return LogActivity(ctx, q, actor, model.ActionUpdate, model.EntityMedia, id,
			map[string]any{"name": media.OriginalName})
	})
	return media, err
}

// Delete removes the media row and then its stored objects.
// A missing id yields store.ErrNotFound.
func (s *MediaService) Delete(ctx context.Context, id string, actor Actor) error {
	_, err := s.deleteAll(ctx, []string{id}, actor, false)
	return err
}

// BulkDelete removes every listed media item in one transaction and returns
// how many were deleted. Missing ids are skipped.
func (s *MediaService) BulkDelete(ctx context.Context, ids []string, actor Actor) (int, error) {
	return s.deleteAll(ctx, ids, actor, true)
}

func (s *MediaService) deleteAll(ctx context.Context, ids []string, actor Actor, skipMissing bool) (int, error) {
	var removed []store.Media
	err := s.store.InTx(ctx, func(q *store.Queries) error {
		for _, id := range ids {
			m, err := q.GetMedia(ctx, id)
			if skipMissing && errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err := q.DeleteMedia(ctx, id); err != nil {
				return err
			}
			if err := LogActivity(ctx, q, actor, model.ActionDelete, model.EntityMedia, id,
				map[string]any{"name": m.OriginalName}); err != nil {
				return err
			}
			removed = append(removed, m)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, m := range removed {
		keys := []string{m.Path}
		if m.ThumbnailURL.Valid {
			keys = append(keys, storage.ThumbnailKey(m.Path, thumbnailMimeType(m.MimeType)))
		}
		s.removeObjects(ctx, keys)
	}
	return len(removed), nil
}

// PresignUpload hands out a direct upload URL when the backend supports it.
func (s *MediaService) PresignUpload(ctx context.Context, filename, contentType string) (PresignedUpload, error) {
	mimeType := normalizeMimeType(contentType)
	if !model.AllowedMimeTypes[mimeType] {
		return PresignedUpload{}, invalid("File type %s is not allowed", mimeType)
	}
	p, ok := s.storage.(storage.Presigner)
	if !ok {
		return PresignedUpload{}, storage.ErrPresignUnsupported
	}

	key := storage.ObjectKey(s.now(), mimeType, originalName(filename))
	u, err := p.PresignPut(ctx, key, PresignExpiry)
	if err != nil {
		return PresignedUpload{}, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	return PresignedUpload{UploadURL: u, Key: key, PublicURL: s.storage.URL(key)}, nil
}

// removeObjects deletes stored objects, logging failures. It runs detached
// from ctx so cleanup survives a cancelled request.
func (s *MediaService) removeObjects(ctx context.Context, keys []string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	for _, k := range keys {
		if err := s.storage.Delete(cleanupCtx, k); err != nil {
			slog.WarnContext(ctx, "failed to remove stored object", "key", k, "error", err)
		}
	}
}

// thumbnailMimeType mirrors the encoding imaging.Thumbnail picks for a source type.
func thumbnailMimeType(mimeType string) string {
	if mimeType == model.MimeTypeWebP {
		return model.MimeTypeJPEG
	}
	return mimeType
}

func normalizeMimeType(ct string) string {
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = ct[:idx]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func originalName(filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
