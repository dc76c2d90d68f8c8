// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging inspects uploaded images and renders thumbnails.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/olegiv/ocms-api/internal/model"
)

// ErrUnsupportedFormat is returned for data that is not a decodable image.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Info describes an image without decoding its pixels.
type Info struct {
	Width    int
	Height   int
	MimeType string
}

// Rendition is an encoded derived image.
type Rendition struct {
	Data     []byte
	Width    int
	Height   int
	MimeType string
}

// DetectMimeType sniffs the content type of data.
func DetectMimeType(data []byte) string {
	ct := http.DetectContentType(data)
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = ct[:idx]
	}
	return ct
}

// Inspect reads the dimensions of an image, accounting for EXIF rotation.
func Inspect(data []byte) (Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	w, h := cfg.Width, cfg.Height
	if format == "jpeg" && swapsAxes(readExifOrientation(bytes.NewReader(data))) {
		w, h = h, w
	}
	return Info{Width: w, Height: h, MimeType: formatToMimeType(format)}, nil
}

// Thumbnail scales the image to fit within cfg's box, never upscaling.
// WebP sources are re-encoded as JPEG because no WebP encoder is available.
func Thumbnail(data []byte, cfg model.ThumbnailConfig) (*Rendition, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if format == "jpeg" {
		img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))
	}

	b := img.Bounds()
	if b.Dx() > cfg.Width || b.Dy() > cfg.Height {
		img = imaging.Fit(img, cfg.Width, cfg.Height, imaging.Lanczos)
	}

	out, mimeType, err := encodeImage(img, format, cfg.Quality)
	if err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}
	rb := img.Bounds()
	return &Rendition{Data: out, Width: rb.Dx(), Height: rb.Dy(), MimeType: mimeType}, nil
}

func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

// swapsAxes reports whether an EXIF orientation rotates by 90 degrees.
func swapsAxes(orientation int) bool {
	return orientation >= 5 && orientation <= 8
}

func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encodeImage(img image.Image, format string, quality int) ([]byte, string, error) {
	var buf bytes.Buffer
	var err error
	mimeType := formatToMimeType(format)

	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
		mimeType = model.MimeTypeJPEG
	}
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mimeType, nil
}

func formatToMimeType(format string) string {
	switch format {
	case "jpeg":
		return model.MimeTypeJPEG
	case "png":
		return model.MimeTypePNG
	case "gif":
		return model.MimeTypeGIF
	case "webp":
		return model.MimeTypeWebP
	default:
		return "application/octet-stream"
	}
}
