// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-api/internal/model"
)

func TestObjectKey(t *testing.T) {
	now := time.Date(2025, time.March, 7, 10, 0, 0, 0, time.UTC)
	ms := now.UnixMilli()

	tests := []struct {
		name     string
		mimeType string
		filename string
		want     string
	}{
		{"image", model.MimeTypePNG, "My Photo.PNG", "uploads/images/2025/03/%d-my-photo.png"},
		{"document", model.MimeTypePDF, "Annual Report 2024.pdf", "uploads/files/2025/03/%d-annual-report-2024.pdf"},
		{"traversal stripped", model.MimeTypeJPEG, "../../etc/passwd.jpg", "uploads/images/2025/03/%d-passwd.jpg"},
		{"windows path", model.MimeTypeGIF, `C:\Users\me\anim.gif`, "uploads/images/2025/03/%d-anim.gif"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := strings.Replace(tt.want, "%d", strconv.FormatInt(ms, 10), 1)
			assert.Equal(t, want, ObjectKey(now, tt.mimeType, tt.filename))
		})
	}
}

func TestThumbnailKey(t *testing.T) {
	assert.Equal(t, "uploads/images/2025/03/thumbs/1-a.png",
		ThumbnailKey("uploads/images/2025/03/1-a.png", model.MimeTypePNG))
	assert.Equal(t, "uploads/images/2025/03/thumbs/1-a.jpg",
		ThumbnailKey("uploads/images/2025/03/1-a.webp", model.MimeTypeJPEG))
	assert.Equal(t, "uploads/images/2025/03/thumbs/1-a.jpeg",
		ThumbnailKey("uploads/images/2025/03/1-a.jpeg", model.MimeTypeJPEG))
}

func TestLocalPutDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	l, err := NewLocal(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	key := "uploads/images/2025/03/1-a.txt"
	require.NoError(t, l.Put(ctx, key, strings.NewReader("hello"), 5, "text/plain"))

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "http://localhost:8080/uploads/uploads/images/2025/03/1-a.txt", l.URL(key))
	assert.Equal(t, "local", l.Bucket())

	require.NoError(t, l.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	// Deleting again is a no-op.
	assert.NoError(t, l.Delete(ctx, key))
}

func TestLocalRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	l, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	for _, key := range []string{"../escape.txt", "/abs.txt", `a\b.txt`, ""} {
		assert.Error(t, l.Put(ctx, key, strings.NewReader("x"), 1, ""), "key %q", key)
		assert.Error(t, l.Delete(ctx, key), "key %q", key)
	}
}

func TestLocalShortWrite(t *testing.T) {
	l, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)

	err = l.Put(context.Background(), "a/b.txt", strings.NewReader("abc"), 10, "")
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(l.Dir(), "a", "b.txt"))
	assert.True(t, os.IsNotExist(statErr), "partial object must not be left behind")
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), Config{Driver: "ftp"})
	assert.Error(t, err)

	s, err := New(context.Background(), Config{Driver: "local", UploadsDir: t.TempDir()})
	require.NoError(t, err)
	_, ok := s.(Presigner)
	assert.False(t, ok, "local storage cannot presign")
}
