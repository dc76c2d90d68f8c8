// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ErrUnknownKey is returned when no key in the set matches a token's kid.
var ErrUnknownKey = errors.New("kid not found in jwks")

// minRefreshInterval bounds how often an unknown kid can force a refetch.
const minRefreshInterval = 30 * time.Second

// KeySet caches the identity provider's published signing keys.
type KeySet struct {
	url    string
	client *http.Client

	mu        sync.RWMutex
	keys      map[string]any
	fetchedAt time.Time

	now func() time.Time
}

// NewKeySet returns a key set backed by the JWKS document at url.
func NewKeySet(url string, timeout time.Duration) *KeySet {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &KeySet{
		url:    url,
		client: &http.Client{Timeout: timeout},
		keys:   map[string]any{},
		now:    time.Now,
	}
}

// WithClient replaces the HTTP client used to fetch the set.
func (ks *KeySet) WithClient(c *http.Client) *KeySet {
	if c != nil {
		ks.client = c
	}
	return ks
}

// Key returns the public key for kid, refetching the set once if it is unknown.
func (ks *KeySet) Key(ctx context.Context, kid string) (any, error) {
	ks.mu.RLock()
	key, ok := ks.keys[kid]
	stale := ks.now().Sub(ks.fetchedAt) >= minRefreshInterval
	ks.mu.RUnlock()
	if ok {
		return key, nil
	}
	if !stale {
		return nil, ErrUnknownKey
	}

	if err := ks.Refresh(ctx); err != nil {
		return nil, err
	}

	ks.mu.RLock()
	defer ks.mu.RUnlock()
	if key, ok := ks.keys[kid]; ok {
		return key, nil
	}
	return nil, ErrUnknownKey
}

// Len returns the number of cached keys.
func (ks *KeySet) Len() int {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return len(ks.keys)
}

type jsonWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Use string `json:"use"`
	Crv string `json:"crv"`
	N   string `json:"n"`
	E   string `json:"e"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

// Refresh refetches the key set. The cached keys are kept if the fetch fails.
func (ks *KeySet) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ks.url, nil)
	if err != nil {
		return fmt.Errorf("building jwks request: %w", err)
	}
	resp, err := ks.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching jwks: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching jwks: unexpected status %d", resp.StatusCode)
	}

	var doc struct {
		Keys []jsonWebKey `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decoding jwks: %w", err)
	}

	next := make(map[string]any, len(doc.Keys))
	for _, k := range doc.Keys {
		if strings.TrimSpace(k.Kid) == "" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		pub, err := k.publicKey()
		if err != nil {
			continue
		}
		next[k.Kid] = pub
	}
	if len(next) == 0 {
		return errors.New("jwks has no usable signing keys")
	}

	ks.mu.Lock()
	ks.keys = next
	ks.fetchedAt = ks.now()
	ks.mu.Unlock()
	return nil
}

func (k jsonWebKey) publicKey() (any, error) {
	switch strings.ToUpper(k.Kty) {
	case "RSA":
		n, err := decodeSegment(k.N)
		if err != nil {
			return nil, err
		}
		e, err := decodeSegment(k.E)
		if err != nil {
			return nil, err
		}
		exp := new(big.Int).SetBytes(e)
		if !exp.IsInt64() || exp.Int64() <= 1 {
			return nil, errors.New("invalid rsa exponent")
		}
		return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: int(exp.Int64())}, nil
	case "EC":
		if k.Crv != "P-256" {
			return nil, fmt.Errorf("unsupported curve %q", k.Crv)
		}
		x, err := decodeSegment(k.X)
		if err != nil {
			return nil, err
		}
		y, err := decodeSegment(k.Y)
		if err != nil {
			return nil, err
		}
		return &ecdsa.PublicKey{Curve: elliptic.P256(), X: new(big.Int).SetBytes(x), Y: new(big.Int).SetBytes(y)}, nil
	default:
		return nil, fmt.Errorf("unsupported key type %q", k.Kty)
	}
}

func decodeSegment(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, errors.New("empty key component")
	}
	return b, nil
}
