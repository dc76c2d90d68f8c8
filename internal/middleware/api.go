// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net/http"
)

// Error codes shared by middleware and handlers.
const (
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeNotFound       = "NOT_FOUND"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternal       = "INTERNAL_ERROR"
	CodeUnavailable    = "SERVICE_UNAVAILABLE"
	CodeValidation     = "VALIDATION_ERROR"
	CodeMethodNotAllow = "METHOD_NOT_ALLOWED"
)

// APIError is the JSON body of every error response.
type APIError struct {
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	PostCount *int64            `json:"postCount,omitempty"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteAPIErrorBody(w, statusCode, APIError{Error: code, Message: message, Details: details})
}

// WriteAPIErrorBody writes a fully populated error body.
func WriteAPIErrorBody(w http.ResponseWriter, statusCode int, body APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// NotFound is the router fallback for unknown routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteAPIError(w, http.StatusNotFound, CodeNotFound, "Route not found", nil)
}

// MethodNotAllowed is the router fallback for known routes with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	WriteAPIError(w, http.StatusMethodNotAllowed, CodeMethodNotAllow, "Method not allowed", nil)
}
