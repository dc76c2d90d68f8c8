// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// maxObjectNameLength bounds the slugged base name of an uploaded file.
const maxObjectNameLength = 100

// SafeObjectName turns an uploaded file name into a storage-safe one:
// directory components are dropped, the base is slugified and the
// extension is lowercased. Empty results fall back to "file".
func SafeObjectName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := strings.ToLower(path.Ext(base))
	name := Slugify(strings.TrimSuffix(base, path.Ext(base)))
	if len(name) > maxObjectNameLength {
		name = strings.Trim(name[:maxObjectNameLength], "-")
	}
	if name == "" {
		name = "file"
	}
	if ext != "" && !IsValidSlug(strings.TrimPrefix(ext, ".")) {
		ext = ""
	}
	return name + ext
}

// ContainsPathTraversal reports whether a slash-separated key escapes its root.
func ContainsPathTraversal(key string) bool {
	if strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return true
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// ResolveWithinBase joins an object key onto baseDir and verifies the result
// stays inside it.
func ResolveWithinBase(baseDir, key string) (string, error) {
	if key == "" || ContainsPathTraversal(key) {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	absBase, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}
	target := filepath.Join(absBase, filepath.FromSlash(key))
	rel, err := filepath.Rel(absBase, target)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path traversal detected: %q", key)
	}
	return target, nil
}
