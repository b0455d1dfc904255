// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/tmmbs/internal/logging"
)

// CSRF protection errors
var (
	// ErrCSRFTokenMissing indicates the cookie or the header token is absent.
	ErrCSRFTokenMissing = errors.New("CSRF token missing")

	// ErrCSRFTokenInvalid indicates the header token does not match the cookie.
	ErrCSRFTokenInvalid = errors.New("CSRF token invalid")

	// ErrCSRFOriginDenied indicates an unsafe request from an untrusted origin.
	ErrCSRFOriginDenied = errors.New("request origin not trusted")
)

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	// CookieName is the name of the CSRF cookie (default: "_csrf").
	CookieName string

	// HeaderName is the HTTP header carrying the token (default: "X-CSRF-Token").
	HeaderName string

	CookiePath     string
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite

	// TokenLength is the byte length of the CSRF token (default: 32).
	TokenLength int

	// TokenTTL is the cookie lifetime (default: 24h).
	TokenTTL time.Duration

	// ExemptPaths are path prefixes that skip CSRF checks.
	ExemptPaths []string

	// TrustedOrigins may send unsafe requests besides the request's own host.
	TrustedOrigins []string
}

// DefaultCSRFConfig returns the defaults for CSRF protection.
func DefaultCSRFConfig() *CSRFConfig {
	return &CSRFConfig{
		CookieName:     "_csrf",
		HeaderName:     "X-CSRF-Token",
		CookiePath:     "/",
		CookieSecure:   true,
		CookieSameSite: http.SameSiteStrictMode,
		TokenLength:    32,
		TokenTTL:       24 * time.Hour,
	}
}

// CSRFMiddleware guards state-changing requests with an origin check and a
// double-submit token: the token lives in a cookie readable by page scripts
// and must be echoed in HeaderName.
type CSRFMiddleware struct {
	config  *CSRFConfig
	trusted map[string]struct{}
}

// NewCSRFMiddleware creates a new CSRF protection middleware.
func NewCSRFMiddleware(config *CSRFConfig) *CSRFMiddleware {
	if config == nil {
		config = DefaultCSRFConfig()
	}
	if config.CookieName == "" {
		config.CookieName = "_csrf"
	}
	if config.HeaderName == "" {
		config.HeaderName = "X-CSRF-Token"
	}
	if config.CookiePath == "" {
		config.CookiePath = "/"
	}
	if config.TokenLength == 0 {
		config.TokenLength = 32
	}
	if config.TokenTTL == 0 {
		config.TokenTTL = 24 * time.Hour
	}

	trusted := make(map[string]struct{}, len(config.TrustedOrigins))
	for _, o := range config.TrustedOrigins {
		if o = normalizeOrigin(o); o != "" {
			trusted[o] = struct{}{}
		}
	}
	return &CSRFMiddleware{config: config, trusted: trusted}
}

// Protect issues the token cookie on safe requests and rejects unsafe ones
// that fail the origin or token check.
func (m *CSRFMiddleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.isExemptPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		if isSafeMethod(r.Method) {
			m.ensureToken(w, r)
			next.ServeHTTP(w, r)
			return
		}
		if err := m.checkOrigin(r); err != nil {
			m.handleError(w, r, err)
			return
		}
		if err := m.validateToken(r); err != nil {
			m.handleError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Token serves the current token as JSON for clients that cannot read the
// cookie, issuing one when needed.
//
//	GET /auth/csrf
//	200 {"csrfToken":"..."}
func (m *CSRFMiddleware) Token(w http.ResponseWriter, r *http.Request) {
	token := m.GetToken(w, r)
	if token == "" {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "token unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"csrfToken": token})
}

// HeaderName returns the header the token must be echoed in.
func (m *CSRFMiddleware) HeaderName() string {
	return m.config.HeaderName
}

// GetToken returns the request's token, setting a fresh cookie if absent.
func (m *CSRFMiddleware) GetToken(w http.ResponseWriter, r *http.Request) string {
	if token := m.getTokenFromCookie(r); token != "" {
		return token
	}
	token, err := m.generateToken()
	if err != nil {
		logging.Error().Err(err).Msg("CSRF: failed to generate token")
		return ""
	}
	m.setTokenCookie(w, token)
	return token
}

func (m *CSRFMiddleware) ensureToken(w http.ResponseWriter, r *http.Request) {
	_ = m.GetToken(w, r)
}

// checkOrigin accepts requests whose Origin (or Referer when Origin is
// absent) is the request's own host or a trusted origin. Requests carrying
// neither header come from non-browser clients and fall through to the
// token check.
func (m *CSRFMiddleware) checkOrigin(r *http.Request) error {
	origin := r.Header.Get("Origin")
	if origin == "" {
		ref := r.Header.Get("Referer")
		if ref == "" {
			return nil
		}
		origin = ref
	}
	o := normalizeOrigin(origin)
	if o == "" {
		return ErrCSRFOriginDenied
	}
	if _, ok := m.trusted[o]; ok {
		return nil
	}
	u, _ := url.Parse(o)
	if strings.EqualFold(u.Host, r.Host) {
		return nil
	}
	return ErrCSRFOriginDenied
}

func (m *CSRFMiddleware) validateToken(r *http.Request) error {
	cookieToken := m.getTokenFromCookie(r)
	if cookieToken == "" {
		return ErrCSRFTokenMissing
	}
	requestToken := strings.TrimSpace(r.Header.Get(m.config.HeaderName))
	if requestToken == "" {
		return ErrCSRFTokenMissing
	}
	if subtle.ConstantTimeCompare([]byte(cookieToken), []byte(requestToken)) != 1 {
		return ErrCSRFTokenInvalid
	}
	return nil
}

func (m *CSRFMiddleware) getTokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

func (m *CSRFMiddleware) generateToken() (string, error) {
	b := make([]byte, m.config.TokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (m *CSRFMiddleware) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    token,
		Path:     m.config.CookiePath,
		Domain:   m.config.CookieDomain,
		MaxAge:   int(m.config.TokenTTL.Seconds()),
		Secure:   m.config.CookieSecure,
		HttpOnly: false,
		SameSite: m.config.CookieSameSite,
	})
}

func (m *CSRFMiddleware) isExemptPath(path string) bool {
	for _, exempt := range m.config.ExemptPaths {
		if strings.HasPrefix(path, exempt) {
			return true
		}
	}
	return false
}

func (m *CSRFMiddleware) handleError(w http.ResponseWriter, r *http.Request, err error) {
	CSRFRejections.WithLabelValues(csrfReason(err)).Inc()
	logging.Ctx(r.Context()).Warn().
		Str("path", r.URL.Path).
		Str("method", r.Method).
		Str("origin", logging.SanitizeLogValue(r.Header.Get("Origin"))).
		Str("reason", err.Error()).
		Msg("CSRF check failed")
	writeJSON(w, http.StatusForbidden, map[string]string{
		"error":             "csrf_failed",
		"error_description": err.Error(),
	})
}

func csrfReason(err error) string {
	switch {
	case errors.Is(err, ErrCSRFOriginDenied):
		return "origin"
	case errors.Is(err, ErrCSRFTokenMissing):
		return "missing"
	default:
		return "mismatch"
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// normalizeOrigin reduces an origin or URL to scheme://host in lower case.
func normalizeOrigin(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}
