// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST handlers mounted under /cms.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-api/internal/auth"
	"github.com/olegiv/ocms-api/internal/cache"
	"github.com/olegiv/ocms-api/internal/middleware"
	"github.com/olegiv/ocms-api/internal/model"
	"github.com/olegiv/ocms-api/internal/service"
	"github.com/olegiv/ocms-api/internal/storage"
	"github.com/olegiv/ocms-api/internal/store"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// Error codes in addition to the ones shared with middleware.
const (
	CodeDuplicateSlug    = "DUPLICATE_SLUG"
	CodeDuplicateName    = "DUPLICATE_NAME"
	CodeConflict         = "CONFLICT"
	CodeInvalidParent    = "INVALID_PARENT"
	CodeCategoryHasPosts = "CATEGORY_HAS_POSTS"
	CodeUploadFailed     = "UPLOAD_FAILED"
)

// Config holds the dependencies of the API handlers.
type Config struct {
	Store    *store.Store
	Policy   middleware.PolicySource
	Storage  storage.Storage
	Cache    cache.Cache
	CacheTTL time.Duration
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	store      *store.Store
	policy     middleware.PolicySource
	cache      cache.Cache
	media      *service.MediaService
	stats      *service.StatsService
	categories *cache.TypedCache[listResponse[categoryResponse]]
	started    time.Time
	now        func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Handler{
		store:      cfg.Store,
		policy:     cfg.Policy,
		cache:      cfg.Cache,
		media:      service.NewMediaService(cfg.Store, cfg.Storage),
		stats:      service.NewStatsService(cfg.Store, cfg.Cache, ttl),
		categories: cache.NewTypedCache[listResponse[categoryResponse]](cfg.Cache, ttl),
		started:    time.Now(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// apiError is a client-facing failure. Returning one from a transaction
// rolls it back and the handler writes it verbatim.
type apiError struct {
	status    int
	code      string
	message   string
	details   map[string]string
	postCount *int64
}

func (e *apiError) Error() string {
	return e.code + ": " + e.message
}

func newAPIError(status int, code, message string) *apiError {
	return &apiError{status: status, code: code, message: message}
}

func validationError(message string, details map[string]string) *apiError {
	return &apiError{status: http.StatusBadRequest, code: middleware.CodeValidation, message: message, details: details}
}

func forbidden(message string) *apiError {
	return newAPIError(http.StatusForbidden, middleware.CodeForbidden, message)
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// writeError maps err onto the API error taxonomy. entity names the
// resource in not-found and duplicate messages.
func writeError(w http.ResponseWriter, r *http.Request, entity string, err error) {
	var (
		ae   *apiError
		dup  *store.DuplicateError
		verr *service.ValidationError
	)
	switch {
	case errors.As(err, &ae):
		middleware.WriteAPIErrorBody(w, ae.status, middleware.APIError{
			Error: ae.code, Message: ae.message, Details: ae.details, PostCount: ae.postCount,
		})
	case errors.As(err, &verr):
		middleware.WriteAPIError(w, http.StatusBadRequest, middleware.CodeValidation, verr.Message, nil)
	case errors.Is(err, store.ErrNotFound):
		middleware.WriteAPIError(w, http.StatusNotFound, middleware.CodeNotFound, capitalizeFirst(entity)+" not found", nil)
	case errors.As(err, &dup):
		switch dup.Field {
		case "slug":
			middleware.WriteAPIError(w, http.StatusConflict, CodeDuplicateSlug,
				"A "+entity+" with this slug already exists", nil)
		case "name":
			middleware.WriteAPIError(w, http.StatusConflict, CodeDuplicateName,
				"A "+entity+" with this name already exists", nil)
		default:
			middleware.WriteAPIError(w, http.StatusConflict, CodeConflict,
				"A "+dup.Table+" record with this "+dup.Field+" already exists", nil)
		}
	case errors.Is(err, store.ErrInvalidReference):
		middleware.WriteAPIError(w, http.StatusBadRequest, middleware.CodeValidation,
			"A referenced record does not exist", nil)
	case errors.Is(err, storage.ErrPresignUnsupported):
		middleware.WriteAPIError(w, http.StatusBadRequest, middleware.CodeValidation,
			"Direct uploads are not supported by the configured storage", nil)
	case errors.Is(err, service.ErrUploadFailed):
		slog.ErrorContext(r.Context(), "upload failed", "error", err)
		middleware.WriteAPIError(w, http.StatusInternalServerError, CodeUploadFailed, "Failed to upload file", nil)
	case errors.Is(err, context.DeadlineExceeded):
		middleware.WriteAPIError(w, http.StatusServiceUnavailable, middleware.CodeUnavailable, "Request timed out", nil)
	default:
		slog.ErrorContext(r.Context(), "request failed", "entity", entity, "method", r.Method, "path", r.URL.Path, "error", err)
		middleware.WriteAPIError(w, http.StatusInternalServerError, middleware.CodeInternal, "An unexpected error occurred", nil)
	}
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// caller is the authenticated principal with its resolved permissions.
type caller struct {
	claims  auth.Claims
	role    string
	readAll bool
	editAny bool
	actor   service.Actor
}

func (h *Handler) caller(r *http.Request) caller {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	p := h.policy.Policy()
	role := p.ResolveRole(claims.Role)
	return caller{
		claims:  claims,
		role:    role,
		readAll: p.Has(role, model.PermissionContentReadAll),
		editAny: p.Has(role, model.PermissionContentEditAny),
		actor:   service.ActorFromRequest(r, claims.Subject),
	}
}

func (c caller) viewer() store.Viewer {
	return store.Viewer{UserID: c.claims.Subject, ReadAll: c.readAll}
}

// canSee reports whether the caller may read content with the given status and author.
func (c caller) canSee(status, authorID string) bool {
	return c.readAll || status == model.StatusPublished || authorID == c.claims.Subject
}

// requireOwner rejects modifications of content authored by someone else
// unless the caller may edit any content.
func (c caller) requireOwner(authorID, kind string) error {
	if c.editAny || authorID == c.claims.Subject {
		return nil
	}
	return forbidden("You can only edit your own " + kind)
}

func (c caller) userParams() store.UpsertUserParams {
	email := c.claims.Email
	if email == "" {
		email = c.claims.Subject + "@users.invalid"
	}
	return store.UpsertUserParams{ID: c.claims.Subject, Email: email, Name: c.claims.Name, Role: c.role}
}

// ensureUser mirrors the caller into the users table.
func (h *Handler) ensureUser(ctx context.Context, c caller) error {
	return h.store.UpsertUser(ctx, c.userParams())
}

// mutate runs fn in a transaction after mirroring the caller into users,
// so author and actor references resolve.
func (h *Handler) mutate(ctx context.Context, c caller, fn func(q *store.Queries) error) error {
	return h.store.InTx(ctx, func(q *store.Queries) error {
		if err := q.UpsertUser(ctx, c.userParams()); err != nil {
			return err
		}
		return fn(q)
	})
}

// invalidate drops cached listings and stats after a mutation.
func (h *Handler) invalidate(ctx context.Context, prefixes ...string) {
	cache.Invalidate(ctx, h.cache, prefixes...)
}

// decodeJSON decodes and validates the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return validationError("Invalid JSON body", nil)
	}
	return validateStruct(dst)
}

// paginationResponse describes a page of results.
type paginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// listResponse is the envelope of every listing.
type listResponse[T any] struct {
	Items      []T                 `json:"items"`
	Pagination *paginationResponse `json:"pagination,omitempty"`
}

func newPage[T any](items []T, p store.Pagination, total int64) listResponse[T] {
	return listResponse[T]{
		Items: items,
		Pagination: &paginationResponse{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(p.Limit))),
		},
	}
}

// mapItems converts store rows into response items.
func mapItems[S, T any](in []S, fn func(S) T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

// parsePagination reads page and limit from the query string.
func parsePagination(r *http.Request) (store.Pagination, error) {
	q := r.URL.Query()
	details := map[string]string{}
	var p store.Pagination
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			details["page"] = "must be a positive integer"
		}
		p.Page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			details["limit"] = "must be a positive integer"
		}
		p.Limit = n
	}
	if len(details) > 0 {
		return store.Pagination{}, validationError("Invalid query parameters", details)
	}
	if n := p.Normalize(); p.Page > n.MaxPage() {
		return store.Pagination{}, validationError("Invalid query parameters",
			map[string]string{"page": "is out of range"})
	}
	return p.Normalize(), nil
}

// contentFilters reads and checks the status and entityType query parameters.
func contentFilters(r *http.Request) (status, entityType string, err error) {
	q := r.URL.Query()
	status, entityType = q.Get("status"), q.Get("entityType")
	details := map[string]string{}
	if status != "" && !model.IsValidStatus(status) {
		details["status"] = "must be one of: draft published"
	}
	if entityType != "" && !model.IsValidEntityType(entityType) {
		details["entityType"] = "must be one of: yayasan school"
	}
	if len(details) > 0 {
		return "", "", validationError("Invalid query parameters", details)
	}
	return status, entityType, nil
}

func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
