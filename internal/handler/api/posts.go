// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/ocms-api/internal/cache"
	"github.com/olegiv/ocms-api/internal/model"
	"github.com/olegiv/ocms-api/internal/service"
	"github.com/olegiv/ocms-api/internal/store"
	"github.com/olegiv/ocms-api/internal/util"
)

type createPostRequest struct {
	Title           string   `json:"title" validate:"required,min=5,max=500"`
	Slug            string   `json:"slug" validate:"required,min=5,max=500,slug"`
	Content         string   `json:"content" validate:"required,min=50"`
	Excerpt         *string  `json:"excerpt" validate:"omitnil,max=500"`
	CategoryID      *string  `json:"categoryId" validate:"omitnil,uuid"`
	FeaturedImageID *string  `json:"featuredImageId" validate:"omitnil,uuid"`
	Tags            []string `json:"tags" validate:"omitempty,max=20,dive,required,max=50"`
	Status          string   `json:"status" validate:"omitempty,oneof=draft published"`
	EntityType      string   `json:"entityType" validate:"omitempty,oneof=yayasan school"`
}

type updatePostRequest struct {
	Title           *string   `json:"title" validate:"omitnil,min=5,max=500"`
	Slug            *string   `json:"slug" validate:"omitnil,min=5,max=500,slug"`
	Content         *string   `json:"content" validate:"omitnil,min=50"`
	Excerpt         *string   `json:"excerpt" validate:"omitnil,max=500"`
	CategoryID      *string   `json:"categoryId" validate:"omitnil,uuid"`
	FeaturedImageID *string   `json:"featuredImageId" validate:"omitnil,uuid"`
	Tags            *[]string `json:"tags" validate:"omitnil,max=20,dive,required,max=50"`
	Status          *string   `json:"status" validate:"omitnil,oneof=draft published"`
	EntityType      *string   `json:"entityType" validate:"omitnil,oneof=yayasan school"`
}

type bulkIDsRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=100,dive,uuid"`
}

type bulkStatusRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1,max=100,dive,uuid"`
	Status string   `json:"status" validate:"required,oneof=draft published"`
}

// ListPosts handles GET /cms/posts.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	p, err := parsePagination(r)
	if err != nil {
		writeError(w, r, "post", err)
		return
	}
	status, entityType, err := contentFilters(r)
	if err != nil {
		writeError(w, r, "post", err)
		return
	}
	c := h.caller(r)
	q := r.URL.Query()
	h.listPosts(w, r, store.PostFilter{
		Viewer:     c.viewer(),
		Status:     status,
		EntityType: entityType,
		CategoryID: q.Get("categoryId"),
		Search:     q.Get("search"),
	}, p)
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request, f store.PostFilter, p store.Pagination) {
	rows, total, err := h.store.ListPosts(r.Context(), f, p)
	if err != nil {
		writeError(w, r, "post", err)
		return
	}
	writeJSON(w, http.StatusOK, newPage(mapItems(rows, toPostListItem), p, total))
}

// GetPost handles GET /cms/posts/{id}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	h.writePost(w, r, func(ctx context.Context) (store.PostRow, error) {
		return h.store.GetPost(ctx, urlParam(r, "id"))
	})
}

// GetPostBySlug handles GET /cms/posts/slug/{slug}.
func (h *Handler) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	h.writePost(w, r, func(ctx context.Context) (store.PostRow, error) {
		return h.store.GetPostBySlug(ctx, urlParam(r, "slug"))
	})
}

// writePost fetches a post with its tags. Drafts the caller may not see are reported as missing.
func (h *Handler) writePost(w http.ResponseWriter, r *http.Request, fetch func(context.Context) (store.PostRow, error)) {
	ctx := r.Context()
	post, err := fetch(ctx)
	if err == nil && !h.caller(r).canSee(post.Status, post.AuthorID) {
		err = store.ErrNotFound
	}
	if err != nil {
		writeError(w, r, "post", err)
		return
	}
	tags, err := h.store.ListPostTags(ctx, post.ID)
	if err != nil {
		writeError(w, r, "post", err)
		return
	}
	resp := toPostRowResponse(post)
	resp.Tags = mapItems(tags, toTagResponse)
	writeJSON(w, http.StatusOK, resp)
}

// ListPostTags handles GET /cms/posts/{id}/tags.
func (h *Handler) ListPostTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	post, err := h.store.GetPost(ctx, urlParam(r, "id"))
	if err == nil && !h.caller(r).canSee(post.Status, post.AuthorID) {
		err = store.ErrNotFound
	}
	if err != nil {
		writeError(w, r, "post", err)
		return
	}
	tags, err := h.store.ListPostTags(ctx, post.ID)
	if err != nil {
		writeError(w, r, "post", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[tagResponse]{Items: mapItems(tags, toTagResponse)})
}

// CreatePost handles POST /cms/posts.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createPostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "post", err)
		return
	}

	c := h.caller(r)
	status := defaultString(req.Status, model.StatusDraft)
	params := store.PostParams{
		Title:           strings.TrimSpace(req.Title),
		Slug:            req.Slug,
		Content:         service.SanitizeHTML(req.Content),
		Excerpt:         util.NullStringFromPtr(req.Excerpt),
		Status:          status,
		CategoryID:      util.NullStringFromPtr(req.CategoryID),
		FeaturedImageID: util.NullStringFromPtr(req.FeaturedImageID),
		EntityType:      defaultString(req.EntityType, model.DefaultEntityType),
		PublishedAt:     store.PublishedAtFor("", status, sql.NullTime{}, h.now()),
	}

	var (
		post store.Post
		tags []store.Tag
	)
	err := h.mutate(ctx, c, func(q *store.Queries) error {
		var err error
		if post, err = q.CreatePost(ctx, c.claims.Subject, params); err != nil {
			return err
		}
		if req.Tags != nil {
			if tags, err = replacePostTags(ctx, q, post.ID, req.Tags); err != nil {
				return err
			}
		}
		return service.LogActivity(ctx, q, c.actor, model.ActionCreate, model.EntityPost, post.ID,
			map[string]any{"title": post.Title})
	})
	if err != nil {
		writeError(w, r, "post", err)
		return
	}

	h.invalidate(ctx, cache.PrefixStats, cache.PrefixCategories)
	resp := toPostResponse(post)
	resp.Tags = mapItems(tags, toTagResponse)
	writeJSON(w, http.StatusCreated, resp)
}

// UpdatePost handles PUT /cms/posts/{id}.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req updatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "post", err)
		return
	}

	c := h.caller(r)
	id := urlParam(r, "id")
	var (
		post store.Post
		tags []store.Tag
	)
	err := h.mutate(ctx, c, func(q *store.Queries) error {
		existing, err := q.GetPost(ctx, id)
		if err != nil {
			return err
		}
		if err := c.requireOwner(existing.AuthorID, "posts"); err != nil {
			return err
		}

		params := store.PostParams{
			Title:           existing.Title,
			Slug:            existing.Slug,
			Content:         existing.Content,
			Excerpt:         existing.Excerpt,
			Status:          existing.Status,
			CategoryID:      existing.CategoryID,
			FeaturedImageID: existing.FeaturedImageID,
			EntityType:      existing.EntityType,
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
		if req.Excerpt != nil {
			params.Excerpt = util.NullStringFromPtr(req.Excerpt)
		}
		if req.CategoryID != nil {
			params.CategoryID = util.NullStringFromPtr(req.CategoryID)
		}
		if req.FeaturedImageID != nil {
			params.FeaturedImageID = util.NullStringFromPtr(req.FeaturedImageID)
		}
		if req.Status != nil {
			params.Status = *req.Status
		}
		if req.EntityType != nil {
			params.EntityType = *req.EntityType
		}
		params.PublishedAt = store.PublishedAtFor(existing.Status, params.Status, existing.PublishedAt, h.now())

		if post, err = q.UpdatePost(ctx, id, params); err != nil {
			return err
		}
		if req.Tags != nil {
			tags, err = replacePostTags(ctx, q, id, *req.Tags)
		} else {
			tags, err = q.ListPostTags(ctx, id)
		}
		if err != nil {
			return err
		}
		return service.LogActivity(ctx, q, c.actor, model.ActionUpdate, model.EntityPost, id,
			map[string]any{"title": post.Title})
	})
	if err != nil {
		writeError(w, r, "post", err)
		return
	}

	h.invalidate(ctx, cache.PrefixStats, cache.PrefixCategories)
	resp := toPostResponse(post)
	resp.Tags = mapItems(tags, toTagResponse)
	writeJSON(w, http.StatusOK, resp)
}

// DeletePost handles DELETE /cms/posts/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := h.caller(r)
	err := h.mutate(ctx, c, func(q *store.Queries) error {
		_, err := deletePost(ctx, q, c, urlParam(r, "id"))
		return err
	})
	if err != nil {
		writeError(w, r, "post", err)
		return
	}
	h.invalidate(ctx, cache.PrefixStats, cache.PrefixCategories)
	writeSuccess(w)
}

// deletePost removes one post after the ownership check. It reports false
// when the post does not exist.
func deletePost(ctx context.Context, q *store.Queries, c caller, id string) (bool, error) {
	existing, err := q.GetPost(ctx, id)
	if err != nil {
		return false, err
	}
	if err := c.requireOwner(existing.AuthorID, "posts"); err != nil {
		return false, err
	}
	if err := q.DeletePost(ctx, id); err != nil {
		return false, err
	}
	return true, service.LogActivity(ctx, q, c.actor, model.ActionDelete, model.EntityPost, id,
		map[string]any{"title": existing.Title})
}

// TogglePostPublish handles PATCH /cms/posts/{id}/publish.
func (h *Handler) TogglePostPublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := h.caller(r)
	var post store.Post
	err := h.mutate(ctx, c, func(q *store.Queries) error {
		existing, err := q.GetPost(ctx, urlParam(r, "id"))
		if err != nil {
			return err
		}
		post, _, err = setPostStatus(ctx, q, c, existing.Post, model.ToggleStatus(existing.Status), h.now())
		return err
	})
	if err != nil {
		writeError(w, r, "post", err)
		return
	}
	h.invalidate(ctx, cache.PrefixStats)
	writeJSON(w, http.StatusOK, toPostResponse(post))
}

// setPostStatus moves a post to status, recording a publish or unpublish
// activity. It reports false when the post already had that status.
func setPostStatus(ctx context.Context, q *store.Queries, c caller, existing store.Post, status string, now time.Time) (store.Post, bool, error) {
	if err := c.requireOwner(existing.AuthorID, "posts"); err != nil {
		return store.Post{}, false, err
	}
	if existing.Status == status {
		return existing, false, nil
	}
	post, err := q.SetPostStatus(ctx, existing.ID, status,
		store.PublishedAtFor(existing.Status, status, existing.PublishedAt, now))
	if err != nil {
		return store.Post{}, false, err
	}
	err = service.LogActivity(ctx, q, c.actor, model.PublishAction(status), model.EntityPost, post.ID,
		map[string]any{"title": post.Title})
	return post, true, err
}

// BulkDeletePosts handles POST /cms/posts/bulk-delete. Missing ids are skipped;
// any post the caller may not delete aborts the whole batch.
func (h *Handler) BulkDeletePosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req bulkIDsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "post", err)
		return
	}

	c := h.caller(r)
	deleted := 0
	err := h.mutate(ctx, c, func(q *store.Queries) error {
		for _, id := range uniqueStrings(req.IDs) {
			ok, err := deletePost(ctx, q, c, id)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if ok {
				deleted++
			}
		}
		return nil
	})
	if err != nil {
		writeError(w, r, "post", err)
		return
	}
	h.invalidate(ctx, cache.PrefixStats, cache.PrefixCategories)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": deleted})
}

// BulkPostStatus handles POST /cms/posts/bulk-status.
func (h *Handler) BulkPostStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req bulkStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "post", err)
		return
	}

	c := h.caller(r)
	now := h.now()
	updated := 0
	err := h.mutate(ctx, c, func(q *store.Queries) error {
		for _, id := range uniqueStrings(req.IDs) {
			existing, err := q.GetPost(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			_, changed, err := setPostStatus(ctx, q, c, existing.Post, req.Status, now)
			if err != nil {
				return err
			}
			if changed {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		writeError(w, r, "post", err)
		return
	}
	h.invalidate(ctx, cache.PrefixStats)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "updated": updated})
}

// replacePostTags finds or creates the named tags and makes them the post's tag set.
func replacePostTags(ctx context.Context, q *store.Queries, postID string, names []string) ([]store.Tag, error) {
	inputs := make([]store.TagInput, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if slug := util.Slugify(name); slug != "" {
			inputs = append(inputs, store.TagInput{Name: name, Slug: slug})
		}
	}
	tags, err := q.EnsureTags(ctx, inputs)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	if err := q.SetPostTags(ctx, postID, ids); err != nil {
		return nil, err
	}
	return tags, nil
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// uniqueStrings drops repeated values, keeping the first occurrence.
func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
