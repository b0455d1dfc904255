// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"net/http"
	"strings"
	"time"
)

// CookieConfig holds the session cookie attributes.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	TTL      time.Duration
	Secure   bool
	SameSite http.SameSite
}

// DefaultCookieConfig returns the default session cookie attributes.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		Name:     "session_token",
		Path:     "/",
		TTL:      8 * time.Hour,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

// SessionCookies writes, reads and deletes the session cookie. Writing and
// deleting go through one attribute set so a deletion always targets the
// cookie that was written.
type SessionCookies struct {
	cfg CookieConfig
}

// NewSessionCookies returns cookie helpers for cfg.
func NewSessionCookies(cfg CookieConfig) *SessionCookies {
	if cfg.Name == "" {
		cfg.Name = "session_token"
	}
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 8 * time.Hour
	}
	return &SessionCookies{cfg: cfg}
}

// Name returns the cookie name.
func (c *SessionCookies) Name() string {
	return c.cfg.Name
}

// Read returns the trimmed cookie value. Missing, empty and whitespace
// cookies all report false.
func (c *SessionCookies) Read(r *http.Request) (string, bool) {
	ck, err := r.Cookie(c.cfg.Name)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(ck.Value)
	return v, v != ""
}

// Set writes token as the session cookie.
func (c *SessionCookies) Set(w http.ResponseWriter, token string) {
	ck := c.base()
	ck.Value = token
	ck.MaxAge = int(c.cfg.TTL.Seconds())
	ck.Expires = time.Now().Add(c.cfg.TTL).UTC()
	http.SetCookie(w, ck)
}

// Clear deletes the session cookie.
func (c *SessionCookies) Clear(w http.ResponseWriter) {
	ck := c.base()
	ck.MaxAge = -1
	ck.Expires = time.Unix(0, 0).UTC()
	http.SetCookie(w, ck)
}

func (c *SessionCookies) base() *http.Cookie {
	return &http.Cookie{
		Name:     c.cfg.Name,
		Path:     c.cfg.Path,
		Domain:   c.cfg.Domain,
		Secure:   c.cfg.Secure,
		HttpOnly: true,
		SameSite: c.cfg.SameSite,
	}
}
