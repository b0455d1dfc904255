// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package config

import (
	"fmt"
	"net/http"
	"strings"
)

// Validate checks the loaded configuration for consistency.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateIdentity(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

func (c *Config) validateSession() error {
	s := c.Session
	if strings.TrimSpace(s.CookieName) == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}
	if s.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if _, err := ParseSameSite(s.SameSite); err != nil {
		return err
	}
	if s.SameSite == "none" && !s.Secure {
		return fmt.Errorf("SESSION_SAME_SITE=none requires SESSION_SECURE=true")
	}
	if !strings.HasPrefix(s.SignInPath, "/") {
		return fmt.Errorf("SIGN_IN_PATH must be an absolute path, got %q", s.SignInPath)
	}
	return nil
}

func (c *Config) validateIdentity() error {
	id := c.Identity
	switch id.Mode {
	case "firebase":
	case "jwks":
		if id.ProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required when IDENTITY_MODE=jwks")
		}
		if id.JWKSURL == "" {
			return fmt.Errorf("JWKS_URL is required when IDENTITY_MODE=jwks")
		}
	default:
		return fmt.Errorf("IDENTITY_MODE must be 'firebase' or 'jwks', got %q", id.Mode)
	}
	if id.VerifyTimeout <= 0 {
		return fmt.Errorf("VERIFY_TIMEOUT must be positive")
	}
	if id.BreakerMaxFailures == 0 {
		return fmt.Errorf("BREAKER_MAX_FAILURES must be at least 1")
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case "badger":
		if !c.Store.InMemory && c.Store.Path == "" {
			return fmt.Errorf("STORE_PATH is required for the badger store")
		}
	case "firestore":
		if c.Identity.ProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firestore store")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be 'badger' or 'firestore', got %q", c.Store.Backend)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	for _, email := range c.Security.AdminEmails {
		if !strings.Contains(email, "@") {
			return fmt.Errorf("ADMIN_EMAILS entry %q is not an email address", email)
		}
	}
	for _, d := range c.Security.AdminDomains {
		if strings.Contains(d, "@") || !strings.Contains(d, ".") {
			return fmt.Errorf("ADMIN_DOMAINS entry %q is not a domain", d)
		}
	}
	if !c.Security.RateLimitDisabled && c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got %q", c.Logging.Format)
	}
	return nil
}

// ParseSameSite converts the configured SameSite mode.
func ParseSameSite(mode string) (http.SameSite, error) {
	switch strings.ToLower(mode) {
	case "none":
		return http.SameSiteNoneMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	default:
		return 0, fmt.Errorf("SESSION_SAME_SITE must be none, lax or strict, got %q", mode)
	}
}
