// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage persists uploaded media objects.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/olegiv/ocms-api/internal/model"
	"github.com/olegiv/ocms-api/internal/util"
)

// ErrPresignUnsupported is returned by backends that cannot hand out upload URLs.
var ErrPresignUnsupported = errors.New("storage: presigned uploads not supported")

// Storage stores and removes objects addressed by slash-separated keys.
type Storage interface {
	// Put writes size bytes from r under key.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Delete removes key. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
	// URL returns the public URL of key.
	URL(key string) string
	// Bucket names the container objects are written to.
	Bucket() string
}

// Presigner is implemented by backends that can issue direct upload URLs.
type Presigner interface {
	PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// Config selects and configures a backend.
type Config struct {
	Driver        string
	UploadsDir    string
	PublicBaseURL string
	S3Endpoint    string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3UseSSL      bool
	S3Region      string
}

// New builds the backend named by cfg.Driver.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.UploadsDir, cfg.PublicBaseURL)
	case "s3":
		return NewS3(ctx, S3Options{
			Endpoint:      cfg.S3Endpoint,
			Bucket:        cfg.S3Bucket,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			UseSSL:        cfg.S3UseSSL,
			Region:        cfg.S3Region,
			PublicBaseURL: cfg.PublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}

// ObjectKey builds the key for an upload received at now:
// uploads/<images|files>/YYYY/MM/<unix-ms>-<sanitized name>.
func ObjectKey(now time.Time, mimeType, filename string) string {
	kind := "files"
	if model.IsImageMime(mimeType) {
		kind = "images"
	}
	now = now.UTC()
	return fmt.Sprintf("uploads/%s/%04d/%02d/%d-%s",
		kind, now.Year(), int(now.Month()), now.UnixMilli(), util.SafeObjectName(filename))
}

// ThumbnailKey returns the key of the thumbnail stored next to key.
// Thumbnails of WebP originals are JPEG encoded and get a .jpg extension.
func ThumbnailKey(key, mimeType string) string {
	dir, name := path.Split(key)
	if mimeType == model.MimeTypeJPEG && !strings.HasSuffix(name, ".jpg") && !strings.HasSuffix(name, ".jpeg") {
		name = strings.TrimSuffix(name, path.Ext(name)) + ".jpg"
	}
	return dir + "thumbs/" + name
}

// joinURL appends key to base with exactly one separating slash.
func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
