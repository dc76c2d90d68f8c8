// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultIssuer is the issuer Supabase stamps on its access tokens.
const DefaultIssuer = "https://supabase.com"

// ErrInvalidToken wraps every verification failure.
var ErrInvalidToken = errors.New("invalid token")

// VerifierConfig configures token verification.
type VerifierConfig struct {
	// Secret verifies HS256 tokens. Empty disables HS256.
	Secret string
	// Issuer must match the iss claim. Empty disables the check.
	Issuer string
	// Audience must appear in the aud claim when set.
	Audience string
	// Keys verifies RS256 and ES256 tokens. Nil disables asymmetric tokens.
	Keys *KeySet
	// Leeway tolerates clock skew on exp and nbf.
	Leeway time.Duration
}

// Verifier checks bearer tokens and extracts Claims.
type Verifier struct {
	cfg     VerifierConfig
	methods []string
	now     func() time.Time
}

// NewVerifier returns a verifier for cfg.
func NewVerifier(cfg VerifierConfig) *Verifier {
	var methods []string
	if cfg.Secret != "" {
		methods = append(methods, jwt.SigningMethodHS256.Alg())
	}
	if cfg.Keys != nil {
		methods = append(methods, jwt.SigningMethodRS256.Alg(), jwt.SigningMethodES256.Alg())
	}
	return &Verifier{cfg: cfg, methods: methods, now: time.Now}
}

// Verify validates the signature and registered claims of token.
func (v *Verifier) Verify(ctx context.Context, token string) (Claims, error) {
	if len(v.methods) == 0 {
		return Claims{}, fmt.Errorf("%w: no verification keys configured", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.cfg.Leeway),
		jwt.WithTimeFunc(v.now),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}

	var tc tokenClaims
	_, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (any, error) {
		return v.key(ctx, t)
	}, opts...)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if tc.Subject == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return tc.claims(), nil
}

func (v *Verifier) key(ctx context.Context, t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); ok {
		return []byte(v.cfg.Secret), nil
	}
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, errors.New("token has no kid")
	}
	return v.cfg.Keys.Key(ctx, kid)
}
