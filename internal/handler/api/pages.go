// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/olegiv/ocms-api/internal/cache"
	"github.com/olegiv/ocms-api/internal/model"
	"github.com/olegiv/ocms-api/internal/service"
	"github.com/olegiv/ocms-api/internal/store"
	"github.com/olegiv/ocms-api/internal/util"
)

type createPageRequest struct {
	Title      string  `json:"title" validate:"required,min=5,max=500"`
	Slug       string  `json:"slug" validate:"required,min=5,max=500,slug"`
	Content    string  `json:"content" validate:"required,min=50"`
	ParentID   *string `json:"parentId" validate:"omitnil,uuid"`
	Status     string  `json:"status" validate:"omitempty,oneof=draft published"`
	EntityType string  `json:"entityType" validate:"omitempty,oneof=yayasan school"`
}

type updatePageRequest struct {
	Title      *string `json:"title" validate:"omitnil,min=5,max=500"`
	Slug       *string `json:"slug" validate:"omitnil,min=5,max=500,slug"`
	Content    *string `json:"content" validate:"omitnil,min=50"`
	ParentID   *string `json:"parentId" validate:"omitnil,uuid"`
	Status     *string `json:"status" validate:"omitnil,oneof=draft published"`
	EntityType *string `json:"entityType" validate:"omitnil,oneof=yayasan school"`
}

// ListPages handles GET /cms/pages.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r)
	if err != nil {
		writeError(w, r, "page", err)
		return
	}
	status, entityType, err := contentFilters(r)
	if err != nil {
		writeError(w, r, "page", err)
		return
	}
	q := r.URL.Query()
	rows, total, err := h.store.ListPages(r.Context(), store.PageFilter{
		Viewer:     h.caller(r).viewer(),
		Status:     status,
		EntityType: entityType,
		ParentID:   q.Get("parentId"),
		Search:     q.Get("search"),
	}, p)
	if err != nil {
		writeError(w, r, "page", err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(mapItems(rows, toPageListItem), p, total))
}

// PageTree handles GET /cms/pages/tree.
func (h *Handler) PageTree(w http.ResponseWriter, r *http.Request) {
	_, entityType, err := contentFilters(r)
	if err != nil {
		writeError(w, r, "page", err)
		return
	}
	pages, err := h.store.ListPagesForTree(r.Context(), h.caller(r).viewer(), entityType)
	if err != nil {
		writeError(w, r, "page", err)
		return
	}
	writeJSON(w, http.StatusOK, buildPageTree(pages))
}

// buildPageTree nests pages under their parents. Pages whose parent is not
// in the set become roots. Sibling order follows the input order.
func buildPageTree(pages []store.Page) []*pageNode {
	nodes := make(map[string]*pageNode, len(pages))
	for _, p := range pages {
		nodes[p.ID] = &pageNode{
			ID:         p.ID,
			Title:      p.Title,
			Slug:       p.Slug,
			Status:     p.Status,
			EntityType: p.EntityType,
			ParentID:   util.PtrFromNullString(p.ParentID),
			CreatedAt:  p.CreatedAt,
			UpdatedAt:  p.UpdatedAt,
			Children:   []*pageNode{},
		}
	}
	roots := []*pageNode{}
	for _, p := range pages {
		n := nodes[p.ID]
		if parent, ok := nodes[p.ParentID.String]; p.ParentID.Valid && ok && parent != n {
			parent.Children = append(parent.Children, n)
			continue
		}
		roots = append(roots, n)
	}
	return roots
}

// GetPage handles GET /cms/pages/{id}.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, r, func(ctx context.Context) (store.PageRow, error) {
		return h.store.GetPage(ctx, urlParam(r, "id"))
	})
}

// GetPageBySlug handles GET /cms/pages/slug/{slug}.
func (h *Handler) GetPageBySlug(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, r, func(ctx context.Context) (store.PageRow, error) {
		return h.store.GetPageBySlug(ctx, urlParam(r, "slug"))
	})
}

func (h *Handler) writePage(w http.ResponseWriter, r *http.Request, fetch func(context.Context) (store.PageRow, error)) {
	page, err := fetch(r.Context())
	if err == nil && !h.caller(r).canSee(page.Status, page.AuthorID) {
		err = store.ErrNotFound
	}
	if err != nil {
		writeError(w, r, "page", err)
		return
	}
	writeJSON(w, http.StatusOK, toPageRowResponse(page))
}

// CreatePage handles POST /cms/pages.
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createPageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "page", err)
		return
	}

	c := h.caller(r)
	status := defaultString(req.Status, model.StatusDraft)
	params := store.PageParams{
		Title:       strings.TrimSpace(req.Title),
		Slug:        req.Slug,
		Content:     service.SanitizeHTML(req.Content),
		Status:      status,
		ParentID:    util.NullStringFromPtr(req.ParentID),
		EntityType:  defaultString(req.EntityType, model.DefaultEntityType),
		PublishedAt: store.PublishedAtFor("", status, sql.NullTime{}, h.now()),
	}

	var page store.Page
	err := h.mutate(ctx, c, func(q *store.Queries) error {
		var err error
		if page, err = q.CreatePage(ctx, c.claims.Subject, params); err != nil {
			return err
		}
		return service.LogActivity(ctx, q, c.actor, model.ActionCreate, model.EntityPage, page.ID,
			map[string]any{"title": page.Title})
	})
	if err != nil {
		writeError(w, r, "page", err)
		return
	}
	h.invalidate(ctx, cache.PrefixStats)
	writeJSON(w, http.StatusCreated, toPageResponse(page))
}

// UpdatePage handles PUT /cms/pages/{id}.
func (h *Handler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req updatePageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "page", err)
		return
	}

	c := h.caller(r)
	id := urlParam(r, "id")
	if req.ParentID != nil && *req.ParentID == id {
		writeError(w, r, "page", newAPIError(http.StatusBadRequest, CodeInvalidParent, "A page cannot be its own parent"))
		return
	}

	var page store.Page
	err := h.mutate(ctx, c, func(q *store.Queries) error {
		existing, err := q.GetPage(ctx, id)
		if err != nil {
			return err
		}
		if err := c.requireOwner(existing.AuthorID, "pages"); err != nil {
			return err
		}

		params := store.PageParams{
			Title:      existing.Title,
			Slug:       existing.Slug,
			Content:    existing.Content,
			Status:     existing.Status,
			ParentID:   existing.ParentID,
			EntityType: existing.EntityType,
		}
		if req.Title != nil {
			params.Title = strings.TrimSpace(*req.Title)
		}
		if req.Slug != nil {
			params.Slug = *req.Slug
		}
		if req.Content != nil {
			params.Content = service.SanitizeHTML(*req.Content)
		}
		if req.ParentID != nil {
			cycle, err := q.IsPageAncestor(ctx, id, *req.ParentID)
			if err != nil {
				return err
			}
			if cycle {
				return newAPIError(http.StatusBadRequest, CodeInvalidParent, "A page cannot be moved under its own descendant")
			}
			params.ParentID = util.NullStringFromPtr(req.ParentID)
		}
		if req.Status != nil {
			params.Status = *req.Status
		}
		if req.EntityType != nil {
			params.EntityType = *req.EntityType
		}
		params.PublishedAt = store.PublishedAtFor(existing.Status, params.Status, existing.PublishedAt, h.now())

		if page, err = q.UpdatePage(ctx, id, params); err != nil {
			return err
		}
		return service.LogActivity(ctx, q, c.actor, model.ActionUpdate, model.EntityPage, id,
			map[string]any{"title": page.Title})
	})
	if err != nil {
		writeError(w, r, "page", err)
		return
	}
	h.invalidate(ctx, cache.PrefixStats)
	writeJSON(w, http.StatusOK, toPageResponse(page))
}

// DeletePage handles DELETE /cms/pages/{id}.
func (h *Handler) DeletePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := h.caller(r)
	id := urlParam(r, "id")
	err := h.mutate(ctx, c, func(q *store.Queries) error {
		existing, err := q.GetPage(ctx, id)
		if err != nil {
			return err
		}
		if err := c.requireOwner(existing.AuthorID, "pages"); err != nil {
			return err
		}
		if err := q.DeletePage(ctx, id); err != nil {
			return err
		}
		return service.LogActivity(ctx, q, c.actor, model.ActionDelete, model.EntityPage, id,
			map[string]any{"title": existing.Title})
	})
	if err != nil {
		writeError(w, r, "page", err)
		return
	}
	h.invalidate(ctx, cache.PrefixStats)
	writeSuccess(w)
}

// TogglePagePublish handles PATCH /cms/pages/{id}/publish.
func (h *Handler) TogglePagePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := h.caller(r)
	id := urlParam(r, "id")
	var page store.Page
	err := h.mutate(ctx, c, func(q *store.Queries) error {
		existing, err := q.GetPage(ctx, id)
		if err != nil {
			return err
		}
		if err := c.requireOwner(existing.AuthorID, "pages"); err != nil {
			return err
		}
		status := model.ToggleStatus(existing.Status)
		page, err = q.SetPageStatus(ctx, id, status,
			store.PublishedAtFor(existing.Status, status, existing.PublishedAt, h.now()))
		if err != nil {
			return err
		}
		return service.LogActivity(ctx, q, c.actor, model.PublishAction(status), model.EntityPage, id,
			map[string]any{"title": page.Title})
	})
	if err != nil {
		writeError(w, r, "page", err)
		return
	}
	h.invalidate(ctx, cache.PrefixStats)
	writeJSON(w, http.StatusOK, toPageResponse(page))
}
