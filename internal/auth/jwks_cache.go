// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrKeyNotFound means the key set, even freshly fetched, has no such kid.
	ErrKeyNotFound = errors.New("signing key not found")
	// ErrKeySetUnavailable means the key set could not be fetched.
	ErrKeySetUnavailable = errors.New("signing key set unavailable")
)

// DefaultMinRefreshInterval bounds how often an unknown kid may force a
// refetch of a key set that is still fresh.
const DefaultMinRefreshInterval = 30 * time.Second

// JWKSCache caches RSA public keys from a JWKS endpoint. Concurrent misses
// share one fetch. The cache honours Cache-Control max-age when the endpoint
// sends it, falling back to the configured TTL. While the set is fresh,
// unknown kids refetch at most once per minRefresh.
type JWKSCache struct {
	uri        string
	httpClient *http.Client
	ttl        time.Duration
	minRefresh time.Duration
	now        func() time.Time

	group singleflight.Group

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
	fetched time.Time
}

// NewJWKSCache creates a cache for uri.
func NewJWKSCache(uri string, client *http.Client, ttl time.Duration) *JWKSCache {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JWKSCache{
		uri:        uri,
		httpClient: client,
		ttl:        ttl,
		minRefresh: DefaultMinRefreshInterval,
		now:        time.Now,
		keys:       make(map[string]*rsa.PublicKey),
	}
}

// GetKey returns the key for kid, refreshing the set when the kid is unknown
// or the set is stale. A stale key is still served if the refresh fails.
func (c *JWKSCache) GetKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	now := c.now()
	c.mu.RLock()
	key, ok := c.keys[kid]
	stale := !now.Before(c.expires)
	recent := now.Sub(c.fetched) < c.minRefresh
	c.mu.RUnlock()

	if ok && !stale {
		return key, nil
	}
	if !ok && !stale && recent {
		return nil, fmt.Errorf("%w: kid %q", ErrKeyNotFound, kid)
	}

	keys, err := c.refresh(ctx)
	if err != nil {
		if ok {
			return key, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrKeySetUnavailable, err)
	}

	if key, ok = keys[kid]; !ok {
		return nil, fmt.Errorf("%w: kid %q", ErrKeyNotFound, kid)
	}
	return key, nil
}

// refresh fetches the key set once for all concurrent callers. The shared
// fetch is detached from any single caller's context and bounded by the HTTP
// client timeout; each caller still stops waiting when its own ctx ends.
func (c *JWKSCache) refresh(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	ch := c.group.DoChan("jwks", func() (interface{}, error) {
		keys, maxAge, err := c.fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		ttl := c.ttl
		if maxAge > 0 {
			ttl = maxAge
		}
		now := c.now()
		c.mu.Lock()
		c.keys = keys
		c.expires = now.Add(ttl)
		c.fetched = now
		c.mu.Unlock()
		return keys, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(map[string]*rsa.PublicKey), nil
	}
}

type jwkSet struct {
	Keys []struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		Alg string `json:"alg"`
		Use string `json:"use"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

func (c *JWKSCache) fetch(ctx context.Context) (map[string]*rsa.PublicKey, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.uri, http.NoBody)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("JWKS fetch failed with status %d", resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, 0, fmt.Errorf("failed to decode JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		nBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(k.N, "="))
		if err != nil {
			continue
		}
		eBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(k.E, "="))
		if err != nil || len(eBytes) == 0 || len(eBytes) > 4 {
			continue
		}
		e := 0
		for _, b := range eBytes {
			e = e<<8 | int(b)
		}
		keys[k.Kid] = &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}
	}
	if len(keys) == 0 {
		return nil, 0, errors.New("JWKS contained no usable RSA keys")
	}

	return keys, maxAge(resp.Header.Get("Cache-Control")), nil
}

// maxAge extracts max-age from a Cache-Control header, or 0.
func maxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		name, value, found := strings.Cut(strings.TrimSpace(directive), "=")
		if !found || !strings.EqualFold(name, "max-age") {
			continue
		}
		secs, err := strconv.Atoi(strings.Trim(value, `"`))
		if err != nil || secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	return 0
}

// URI returns the JWKS endpoint.
func (c *JWKSCache) URI() string {
	return c.uri
}
