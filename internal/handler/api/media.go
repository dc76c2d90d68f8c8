// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/olegiv/ocms-api/internal/cache"
	"github.com/olegiv/ocms-api/internal/model"
	"github.com/olegiv/ocms-api/internal/service"
	"github.com/olegiv/ocms-api/internal/store"
	"github.com/olegiv/ocms-api/internal/util"
)

// multipartOverhead allows for form boundaries and headers around the file.
const multipartOverhead = 1 << 20

type updateMediaRequest struct {
	AltText *string `json:"altText" validate:"omitnil,max=500"`
	Caption *string `json:"caption" validate:"omitnil,max=1000"`
}

type uploadURLRequest struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,max=100"`
}

// ListMedia handles GET /cms/media.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r)
	if err != nil {
		writeError(w, r, "media", err)
		return
	}
	q := r.URL.Query()
	rows, total, err := h.store.ListMedia(r.Context(), store.MediaFilter{
		MimeType:   q.Get("mimeType"),
		UploadedBy: q.Get("uploadedBy"),
		Search:     q.Get("search"),
	}, p)
	if err != nil {
		writeError(w, r, "media", err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(mapItems(rows, toMediaResponse), p, total))
}

// GetMedia handles GET /cms/media/{id}.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.GetMedia(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeError(w, r, "media", err)
		return
	}
	writeJSON(w, http.StatusOK, toMediaResponse(m))
}

// UpdateMedia handles PUT /cms/media/{id}. Only the uploader or a caller
// who may edit any content can change the metadata.
func (h *Handler) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req updateMediaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "media", err)
		return
	}

	c := h.caller(r)
	id := urlParam(r, "id")
	existing, err := h.store.GetMedia(ctx, id)
	if err != nil {
		writeError(w, r, "media", err)
		return
	}
	if err := c.requireOwner(existing.UploadedBy, "media"); err != nil {
		writeError(w, r, "media", err)
		return
	}

	alt, caption := existing.AltText, existing.Caption
	if req.AltText != nil {
		alt = util.NullStringFromPtr(req.AltText)
	}
	if req.Caption != nil {
		caption = util.NullStringFromPtr(req.Caption)
	}
	if err := h.ensureUser(ctx, c); err != nil {
		writeError(w, r, "media", err)
		return
	}
	m, err := h.media.UpdateMeta(ctx, id, alt, caption, c.actor)
	if err != nil {
		writeError(w, r, "media", err)
		return
	}
	writeJSON(w, http.StatusOK, toMediaResponse(m))
}

// DeleteMedia handles DELETE /cms/media/{id}.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := h.caller(r)
	if err := h.ensureUser(ctx, c); err != nil {
		writeError(w, r, "media", err)
		return
	}
	if err := h.media.Delete(ctx, urlParam(r, "id"), c.actor); err != nil {
		writeError(w, r, "media", err)
		return
	}
	h.invalidate(ctx, cache.PrefixStats)
	writeSuccess(w)
}

// BulkDeleteMedia handles POST /cms/media/bulk-delete.
func (h *Handler) BulkDeleteMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req bulkIDsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "media", err)
		return
	}
	c := h.caller(r)
	if err := h.ensureUser(ctx, c); err != nil {
		writeError(w, r, "media", err)
		return
	}
	n, err := h.media.BulkDelete(ctx, uniqueStrings(req.IDs), c.actor)
	if err != nil {
		writeError(w, r, "media", err)
		return
	}
	h.invalidate(ctx, cache.PrefixStats)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": n})
}

// UploadMedia handles POST /cms/media/upload with a multipart "file" field.
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, model.MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(model.MaxUploadSize + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, "media", validationError("File too large (max 5MB)", nil))
			return
		}
		writeError(w, r, "media", validationError("No file provided", nil))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	in := service.UploadInput{}
	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		writeError(w, r, "media", validationError("No file provided", nil))
		return
	default:
		defer func(f multipart.File) { _ = f.Close() }(file)
		in.Filename = header.Filename
		in.ContentType = header.Header.Get("Content-Type")
		in.Size = header.Size
		in.Body = file
	}

	c := h.caller(r)
	if in.Body != nil {
		if err := h.ensureUser(ctx, c); err != nil {
			writeError(w, r, "media", err)
			return
		}
	}
	m, err := h.media.Upload(ctx, in, c.actor)
	if err != nil {
		writeError(w, r, "media", err)
		return
	}
	h.invalidate(ctx, cache.PrefixStats)
	writeJSON(w, http.StatusCreated, toMediaResponse(m))
}

// UploadURL handles POST /cms/media/upload-url.
func (h *Handler) UploadURL(w http.ResponseWriter, r *http.Request) {
	var req uploadURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "media", err)
		return
	}
	u, err := h.media.PresignUpload(r.Context(), req.Filename, req.ContentType)
	if err != nil {
		writeError(w, r, "media", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
