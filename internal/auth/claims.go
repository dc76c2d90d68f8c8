// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth verifies identity provider bearer tokens and exposes the
// resulting claims to the rest of the application.
package auth

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the caller identity extracted from a verified token.
type Claims struct {
	Subject string
	Email   string
	Name    string
	Role    string
}

// providerRoles are the Postgres roles Supabase puts in the role claim.
// They say nothing about CMS permissions.
var providerRoles = map[string]bool{
	"authenticated": true,
	"anon":          true,
	"service_role":  true,
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Email        string `json:"email"`
	Role         string `json:"role"`
	Name         string `json:"name"`
	UserMetadata struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
	AppMetadata struct {
		Role string `json:"role"`
	} `json:"app_metadata"`
}

func (tc *tokenClaims) claims() Claims {
	role := strings.TrimSpace(tc.Role)
	if role == "" || providerRoles[role] {
		role = strings.TrimSpace(tc.AppMetadata.Role)
	}

	name := firstNonEmpty(tc.Name, tc.UserMetadata.FullName, tc.UserMetadata.Name)
	if name == "" {
		name, _, _ = strings.Cut(tc.Email, "@")
	}

	return Claims{
		Subject: tc.Subject,
		Email:   tc.Email,
		Name:    name,
		Role:    strings.ToLower(role),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

type contextKey struct{}

// WithClaims returns a context carrying c.
func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the claims stored by WithClaims.
func FromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(contextKey{}).(Claims)
	return c, ok
}
