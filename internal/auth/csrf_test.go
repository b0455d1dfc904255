// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCSRFMiddleware_NewWithNilConfig(t *testing.T) {
	t.Parallel()
	mw := NewCSRFMiddleware(nil)
	if mw.config.CookieName != "_csrf" || mw.HeaderName() != "X-CSRF-Token" {
		t.Errorf("config = %+v", mw.config)
	}
	if !mw.config.CookieSecure {
		t.Error("CookieSecure should default to true")
	}
}

func TestCSRFMiddleware_SafeMethodIssuesCookie(t *testing.T) {
	t.Parallel()
	mw := NewCSRFMiddleware(nil)
	h := mw.Protect(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/services", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var issued *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "_csrf" {
			issued = c
		}
	}
	if issued == nil || len(issued.Value) < 40 || issued.HttpOnly {
		t.Fatalf("cookie = %+v", issued)
	}

	// An existing cookie is kept.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/services", nil)
	req.AddCookie(issued)
	h.ServeHTTP(rec, req)
	if len(rec.Result().Cookies()) != 0 {
		t.Errorf("cookie reissued: %v", rec.Result().Cookies())
	}
}

func TestCSRFMiddleware_UnsafeRequests(t *testing.T) {
	t.Parallel()
	mw := NewCSRFMiddleware(&CSRFConfig{
		TrustedOrigins: []string{"https://App.tmmbs.example/"},
		ExemptPaths:    []string{"/auth/session"},
	})
	h := mw.Protect(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name    string
		path    string
		origin  string
		referer string
		cookie  string
		header  string
		want    int
	}{
		{"matching pair, no origin", "/api/v1/contact", "", "", "tok", "tok", http.StatusNoContent},
		{"matching pair, same host", "/api/v1/contact", "http://example.com", "", "tok", "tok", http.StatusNoContent},
		{"matching pair, trusted origin", "/api/v1/contact", "https://app.tmmbs.example", "", "tok", "tok", http.StatusNoContent},
		{"foreign origin", "/api/v1/contact", "https://evil.example", "", "tok", "tok", http.StatusForbidden},
		{"foreign referer", "/api/v1/contact", "", "https://evil.example/page", "tok", "tok", http.StatusForbidden},
		{"same host referer", "/api/v1/contact", "", "http://example.com/Booking", "tok", "tok", http.StatusNoContent},
		{"opaque origin", "/api/v1/contact", "null", "", "tok", "tok", http.StatusForbidden},
		{"missing cookie", "/api/v1/contact", "", "", "", "tok", http.StatusForbidden},
		{"missing header", "/api/v1/contact", "", "", "tok", "", http.StatusForbidden},
		{"mismatch", "/api/v1/contact", "", "", "tok", "other", http.StatusForbidden},
		{"exempt path", "/auth/session", "https://evil.example", "", "", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, tt.path, nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		if tt.referer != "" {
			req.Header.Set("Referer", tt.referer)
		}
		if tt.cookie != "" {
			req.AddCookie(&http.Cookie{Name: "_csrf", Value: tt.cookie})
		}
		if tt.header != "" {
			req.Header.Set("X-CSRF-Token", tt.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.want)
		}
	}
}

func TestCSRFMiddleware_CountsRejections(t *testing.T) {
	mw := NewCSRFMiddleware(nil)
	h := mw.Protect(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler must not run")
	}))

	before := testutil.ToFloat64(CSRFRejections.WithLabelValues("origin"))
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/contacts/c1", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := testutil.ToFloat64(CSRFRejections.WithLabelValues("origin")) - before; got != 1 {
		t.Errorf("origin rejections = %v, want 1", got)
	}
}

func TestNormalizeOrigin(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"https://Example.com":          "https://example.com",
		"https://example.com:8443/x?y": "https://example.com:8443",
		"null":                         "",
		"example.com":                  "",
		"":                             "",
	}
	for in, want := range tests {
		if got := normalizeOrigin(in); got != want {
			t.Errorf("normalizeOrigin(%q) = %q, want %q", in, got, want)
		}
	}
}
