// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

const testProject = "tmmbs-test"

type jwksServer struct {
	*httptest.Server
	hits   atomic.Int32
	failed atomic.Bool
}

func newJWKSServer(t *testing.T, kid string, pub *rsa.PublicKey) *jwksServer {
	t.Helper()
	s := &jwksServer{}
	body, err := json.Marshal(map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": kid,
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
	if err != nil {
		t.Fatalf("marshal jwks: %v", err)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.hits.Add(1)
		if s.failed.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

func newRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	s, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func validClaims(now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            FirebaseIssuerPrefix + testProject,
		"aud":            testProject,
		"sub":            "uid-1",
		"email":          "owner@example.com",
		"email_verified": true,
		"iat":            now.Add(-time.Minute).Unix(),
		"exp":            now.Add(time.Hour).Unix(),
		"auth_time":      now.Add(-time.Minute).Unix(),
		"firebase":       map[string]any{"sign_in_provider": "password"},
	}
}

func TestJWKSOracleVerifyToken(t *testing.T) {
	t.Parallel()
	key := newRSAKey(t)
	srv := newJWKSServer(t, "k1", &key.PublicKey)
	oracle := NewJWKSOracle(testProject, NewJWKSCache(srv.URL, srv.Client(), time.Hour))
	now := time.Now()

	good := signToken(t, key, "k1", validClaims(now))
	tok, err := oracle.VerifyToken(context.Background(), good)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	claims := claimsFromToken(tok)
	if claims.Subject != "uid-1" || claims.Email != "owner@example.com" || claims.SignInProvider != "password" {
		t.Errorf("claims = %+v", claims)
	}

	mutate := func(f func(jwt.MapClaims)) string {
		c := validClaims(now)
		f(c)
		return signToken(t, key, "k1", c)
	}
	other := newRSAKey(t)

	tests := []struct {
		name  string
		token string
		want  FailureKind
	}{
		{"garbage", "not-a-jwt", Malformed},
		{"expired", mutate(func(c jwt.MapClaims) { c["exp"] = now.Add(-time.Hour).Unix() }), Expired},
		{"wrong audience", mutate(func(c jwt.MapClaims) { c["aud"] = "someone-else" }), Malformed},
		{"wrong issuer", mutate(func(c jwt.MapClaims) { c["iss"] = "https://evil.example.com" }), Malformed},
		{"missing sub", mutate(func(c jwt.MapClaims) { delete(c, "sub") }), Malformed},
		{"missing iat", mutate(func(c jwt.MapClaims) { delete(c, "iat") }), Malformed},
		{"future auth_time", mutate(func(c jwt.MapClaims) { c["auth_time"] = now.Add(time.Hour).Unix() }), Malformed},
		{"unknown kid", signToken(t, key, "k9", validClaims(now)), Malformed},
		{"wrong signature", signToken(t, other, "k1", validClaims(now)), Malformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := oracle.VerifyToken(context.Background(), tt.token)
			requireKind(t, err, tt.want)
		})
	}
}

func TestJWKSOracleKeySetDown(t *testing.T) {
	t.Parallel()
	key := newRSAKey(t)
	srv := newJWKSServer(t, "k1", &key.PublicKey)
	srv.failed.Store(true)
	oracle := NewJWKSOracle(testProject, NewJWKSCache(srv.URL, srv.Client(), time.Hour))

	_, err := oracle.VerifyToken(context.Background(), signToken(t, key, "k1", validClaims(time.Now())))
	requireKind(t, err, OracleUnavailable)
}

func TestJWKSCacheServesStaleKeyWhenRefreshFails(t *testing.T) {
	t.Parallel()
	key := newRSAKey(t)
	srv := newJWKSServer(t, "k1", &key.PublicKey)
	cache := NewJWKSCache(srv.URL, srv.Client(), time.Hour)

	now := time.Now()
	cache.now = func() time.Time { return now }
	if _, err := cache.GetKey(context.Background(), "k1"); err != nil {
		t.Fatalf("GetKey: %v", err)
	}

	srv.failed.Store(true)
	cache.now = func() time.Time { return now.Add(2 * time.Hour) }
	if _, err := cache.GetKey(context.Background(), "k1"); err != nil {
		t.Errorf("stale key should still be served, got %v", err)
	}
	if srv.hits.Load() != 2 {
		t.Errorf("hits = %d, want 2", srv.hits.Load())
	}
}

func TestJWKSCacheSharesConcurrentFetches(t *testing.T) {
	t.Parallel()
	key := newRSAKey(t)
	srv := newJWKSServer(t, "k1", &key.PublicKey)
	cache := NewJWKSCache(srv.URL, srv.Client(), time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.GetKey(context.Background(), "k1"); err != nil {
				t.Errorf("GetKey: %v", err)
			}
		}()
	}
	wg.Wait()
	if n := srv.hits.Load(); n != 1 {
		t.Errorf("JWKS fetched %d times, want 1", n)
	}
}

func TestJWKSCacheThrottlesUnknownKids(t *testing.T) {
	t.Parallel()
	key := newRSAKey(t)
	srv := newJWKSServer(t, "k1", &key.PublicKey)
	cache := NewJWKSCache(srv.URL, srv.Client(), time.Hour)

	now := time.Now()
	cache.now = func() time.Time { return now }
	for i := 0; i < 50; i++ {
		_, err := cache.GetKey(context.Background(), fmt.Sprintf("unknown-%d", i))
		if !errors.Is(err, ErrKeyNotFound) {
			t.Fatalf("GetKey(unknown-%d) = %v, want ErrKeyNotFound", i, err)
		}
	}
	if n := srv.hits.Load(); n != 1 {
		t.Fatalf("JWKS fetched %d times for 50 unknown kids, want 1", n)
	}
	if _, err := cache.GetKey(context.Background(), "k1"); err != nil {
		t.Errorf("known kid: %v", err)
	}

	// A rotated key becomes reachable once the interval has passed.
	cache.now = func() time.Time { return now.Add(DefaultMinRefreshInterval + time.Second) }
	if _, err := cache.GetKey(context.Background(), "k2"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("GetKey(k2) = %v, want ErrKeyNotFound", err)
	}
	if n := srv.hits.Load(); n != 2 {
		t.Errorf("hits = %d, want 2 after the interval", n)
	}
}

func TestMaxAge(t *testing.T) {
	t.Parallel()
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 0},
		{"no-cache", 0},
		{"public, max-age=19845, must-revalidate", 19845 * time.Second},
		{"MAX-AGE=60", time.Minute},
		{"max-age=-5", 0},
		{"max-age=abc", 0},
	}
	for _, tt := range tests {
		if got := maxAge(tt.header); got != tt.want {
			t.Errorf("maxAge(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
