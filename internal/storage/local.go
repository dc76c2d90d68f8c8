// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/olegiv/ocms-api/internal/util"
)

// DefaultUploadsDir is used when no uploads directory is configured.
const DefaultUploadsDir = "./uploads"

// Local stores objects on the filesystem below a base directory.
type Local struct {
	baseDir string
	baseURL string
}

// NewLocal creates the base directory if needed.
func NewLocal(baseDir, publicBaseURL string) (*Local, error) {
	if baseDir == "" {
		baseDir = DefaultUploadsDir
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	return &Local{baseDir: baseDir, baseURL: publicBaseURL}, nil
}

// Dir returns the base directory, for serving files over HTTP.
func (l *Local) Dir() string {
	return l.baseDir
}

func (l *Local) Bucket() string {
	return "local"
}

func (l *Local) Put(ctx context.Context, key string, r io.Reader, size int64, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := util.ResolveWithinBase(l.baseDir, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing object: %w", err)
	}
	if size >= 0 && n != size {
		return fmt.Errorf("writing object: wrote %d of %d bytes", n, size)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("moving object into place: %w", err)
	}
	return nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	target, err := util.ResolveWithinBase(l.baseDir, key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing object: %w", err)
	}
	return nil
}

func (l *Local) URL(key string) string {
	return joinURL(l.baseURL, key)
}
