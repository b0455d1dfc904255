// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func gateRequest(target string, p Principal) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return req.WithContext(withPrincipal(req.Context(), p))
}

func TestGateRequireRole(t *testing.T) {
	t.Parallel()
	g := NewGate("")
	admin := newPrincipal(testClaims("a", "owner@example.com"), NewRoleSet(RoleAdmin))
	user := newPrincipal(testClaims("u", "guest@example.com"), RoleSet{})

	tests := []struct {
		name     string
		p        Principal
		status   int
		location string
	}{
		{"admin", admin, http.StatusOK, ""},
		{"user without role", user, http.StatusSeeOther, "/Auth/SignIn?returnUrl=%2FAdmin%2FBookings%3Fpage%3D2"},
		{"anonymous", AnonymousPrincipal(), http.StatusSeeOther, "/Auth/SignIn?returnUrl=%2FAdmin%2FBookings%3Fpage%3D2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			g.RequireRole(RoleAdmin)(okHandler()).ServeHTTP(rec, gateRequest("/Admin/Bookings?page=2", tt.p))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := rec.Header().Get("Location"); got != tt.location {
				t.Errorf("Location = %q, want %q", got, tt.location)
			}
		})
	}
}

func TestGateRequireAuthenticated(t *testing.T) {
	t.Parallel()
	g := NewGate("/login")
	user := newPrincipal(testClaims("u", "guest@example.com"), RoleSet{})

	rec := httptest.NewRecorder()
	g.RequireAuthenticated()(okHandler()).ServeHTTP(rec, gateRequest("/Booking", user))
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	g.RequireAuthenticated()(okHandler()).ServeHTTP(rec, gateRequest("/Booking", AnonymousPrincipal()))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login?returnUrl=%2FBooking" {
		t.Errorf("anonymous got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestGateNestedRequirements(t *testing.T) {
	t.Parallel()
	g := NewGate("")
	user := newPrincipal(testClaims("u", "guest@example.com"), RoleSet{})
	h := g.RequireAuthenticated()(g.RequireRole(RoleAdmin)(okHandler()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, gateRequest("/Admin", user))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("inner gate should refuse, got %d", rec.Code)
	}
}

func TestGateWithMiddleware(t *testing.T) {
	t.Parallel()
	v := &fakeVerifier{claims: map[string]*Claims{"admin": testClaims("a", "owner@example.com")}}
	m := newTestMiddleware(v)
	h := m.Authenticate(NewGate("").RequireRole(RoleAdmin)(okHandler()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithCookie("admin"))
	if rec.Code != http.StatusOK {
		t.Errorf("admin cookie status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestWithCookie("forged"))
	if rec.Code != http.StatusSeeOther {
		t.Errorf("forged cookie status = %d", rec.Code)
	}
}
