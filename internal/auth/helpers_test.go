// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

// fakeVerifier maps raw tokens to claims or errors.
type fakeVerifier struct {
	claims map[string]*Claims
	errs   map[string]error
	calls  atomic.Int32
	panics bool
}

func (f *fakeVerifier) Verify(_ context.Context, raw string) (*Claims, error) {
	f.calls.Add(1)
	if f.panics {
		panic("boom")
	}
	if err, ok := f.errs[raw]; ok {
		return nil, err
	}
	if c, ok := f.claims[raw]; ok {
		return c, nil
	}
	return nil, NewAuthError(Malformed, errors.New("unknown token"))
}

func verified(b bool) *bool { return &b }

func testClaims(sub, email string) *Claims {
	return &Claims{
		Subject:       sub,
		Email:         email,
		EmailVerified: verified(true),
		IssuedAt:      time.Now().Add(-time.Minute),
		ExpiresAt:     time.Now().Add(time.Hour),
	}
}

// countingOracle returns result for every call and counts calls.
type countingOracle struct {
	calls  atomic.Int32
	result func(token string) (*DecodedToken, error)
}

func (o *countingOracle) VerifyToken(_ context.Context, token string) (*DecodedToken, error) {
	o.calls.Add(1)
	return o.result(token)
}

func okToken(sub, email string) *DecodedToken {
	return &DecodedToken{
		Subject: sub,
		Claims: map[string]any{
			"sub":            sub,
			"email":          email,
			"email_verified": true,
			"iat":            float64(time.Now().Add(-time.Minute).Unix()),
			"exp":            float64(time.Now().Add(time.Hour).Unix()),
		},
	}
}

func testCookies() *SessionCookies {
	return NewSessionCookies(CookieConfig{
		Name:     "session_token",
		Path:     "/",
		TTL:      time.Hour,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

func requireKind(t *testing.T, err error, want FailureKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("KindOf(%v) = %s, want %s", err, got, want)
	}
}
