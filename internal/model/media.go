// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Supported MIME types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
	MimeTypePDF  = "application/pdf"
)

// MaxUploadSize is the largest accepted upload (5 MB).
const MaxUploadSize = 5 << 20

// AllowedMimeTypes lists the content types accepted for upload.
var AllowedMimeTypes = map[string]bool{
	MimeTypeJPEG: true,
	MimeTypePNG:  true,
	MimeTypeWebP: true,
	MimeTypeGIF:  true,
	MimeTypePDF:  true,
}

// ThumbnailConfig defines the thumbnail generated for uploaded images.
type ThumbnailConfig struct {
	Width   int
	Height  int
	Quality int
}

// Thumbnail is the default thumbnail size.
var Thumbnail = ThumbnailConfig{Width: 320, Height: 320, Quality: 80}

// IsImageMime reports whether mimeType is an image type we can decode.
func IsImageMime(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	}
	return false
}
