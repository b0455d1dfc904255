// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestAuthErrorIs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		kind     FailureKind
		sentinel error
		name     string
	}{
		{Malformed, ErrMalformed, "malformed"},
		{Expired, ErrExpired, "expired"},
		{Revoked, ErrRevoked, "revoked"},
		{OracleUnavailable, ErrOracleUnavailable, "oracle_unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cause := errors.New("cause")
			err := fmt.Errorf("wrapped: %w", NewAuthError(tt.kind, cause))
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}
			if !errors.Is(err, cause) {
				t.Error("cause should stay reachable through Unwrap")
			}
			if KindOf(err) != tt.kind {
				t.Errorf("KindOf = %s, want %s", KindOf(err), tt.kind)
			}
			if tt.kind.String() != tt.name {
				t.Errorf("String() = %q, want %q", tt.kind.String(), tt.name)
			}
		})
	}
}

func TestKindOfForeignError(t *testing.T) {
	t.Parallel()
	if got := KindOf(errors.New("socket closed")); got != OracleUnavailable {
		t.Errorf("KindOf(foreign) = %s, want oracle_unavailable", got)
	}
	if errors.Is(NewAuthError(Expired, nil), ErrRevoked) {
		t.Error("expired error must not match ErrRevoked")
	}
}

func TestClaimsFromToken(t *testing.T) {
	t.Parallel()
	iat := time.Unix(1_700_000_000, 0).UTC()
	tok := &DecodedToken{
		Subject: "  uid-1 ",
		Claims: map[string]any{
			"email":          " Owner@Example.com ",
			"email_verified": false,
			"name":           "Owner",
			"iat":            float64(iat.Unix()),
			"exp":            json.Number("1700003600"),
			"auth_time":      int64(iat.Unix()),
			"firebase":       map[string]any{"sign_in_provider": "password"},
			"tier":           "gold",
		},
	}
	c := claimsFromToken(tok)
	if c.Subject != "uid-1" {
		t.Errorf("Subject = %q", c.Subject)
	}
	if c.Email != "Owner@Example.com" {
		t.Errorf("Email = %q", c.Email)
	}
	if c.EmailVerified == nil || *c.EmailVerified {
		t.Errorf("EmailVerified = %v, want explicit false", c.EmailVerified)
	}
	if !c.IssuedAt.Equal(iat) || !c.AuthTime.Equal(iat) {
		t.Errorf("IssuedAt/AuthTime = %v/%v, want %v", c.IssuedAt, c.AuthTime, iat)
	}
	if !c.ExpiresAt.Equal(iat.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v", c.ExpiresAt)
	}
	if c.SignInProvider != "password" {
		t.Errorf("SignInProvider = %q", c.SignInProvider)
	}
	if c.Extra["tier"] != "gold" || len(c.Extra) != 1 {
		t.Errorf("Extra = %v, want only tier", c.Extra)
	}
}

func TestClaimsFromTokenFallsBackToSubClaim(t *testing.T) {
	t.Parallel()
	c := claimsFromToken(&DecodedToken{Claims: map[string]any{"sub": "abc"}})
	if c.Subject != "abc" {
		t.Errorf("Subject = %q, want abc", c.Subject)
	}
	if c.EmailVerified != nil {
		t.Error("EmailVerified should be nil when absent")
	}
	if !c.IssuedAt.IsZero() {
		t.Error("missing iat should give zero time")
	}
}

func TestPrincipal(t *testing.T) {
	t.Parallel()

	anon := AnonymousPrincipal()
	if anon.IsAuthenticated() || anon.TrustLevel() != Anonymous {
		t.Error("anonymous principal reports authenticated")
	}
	if anon.HasRole(RoleAdmin) {
		t.Error("anonymous principal must hold no role")
	}

	p := newPrincipal(&Claims{Subject: "u1", Email: "a@b.com"}, NewRoleSet(RoleAdmin))
	if !p.IsAuthenticated() || !p.HasRole(RoleAdmin) {
		t.Error("expected authenticated admin")
	}
	if p.DisplayName() != "a@b.com" {
		t.Errorf("DisplayName = %q", p.DisplayName())
	}

	noEmail := newPrincipal(&Claims{Subject: "u2"}, RoleSet{})
	if noEmail.DisplayName() != "u2" {
		t.Errorf("DisplayName without email = %q, want subject", noEmail.DisplayName())
	}
	if got := noEmail.Roles().Strings(); len(got) != 0 {
		t.Errorf("Roles = %v, want none", got)
	}
}
