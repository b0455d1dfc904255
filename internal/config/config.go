// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

// Package config loads tmmbs configuration from defaults, an optional YAML
// file and environment variables (see LoadWithKoanf).
package config

import "time"

// Config is the root configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Session     SessionConfig     `koanf:"session"`
	Identity    IdentityConfig    `koanf:"identity"`
	FirebaseWeb FirebaseWebConfig `koanf:"firebase_web"`
	Store       StoreConfig       `koanf:"store"`
	Security    SecurityConfig    `koanf:"security"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// SessionConfig controls the session cookie. Every attribute here is used
// both when the cookie is written and when it is deleted.
type SessionConfig struct {
	CookieName string        `koanf:"cookie_name"`
	TTL        time.Duration `koanf:"ttl"`
	Domain     string        `koanf:"domain"`
	// SameSite is none, lax or strict.
	SameSite   string `koanf:"same_site"`
	Secure     bool   `koanf:"secure"`
	SignInPath string `koanf:"sign_in_path"`
}

// IdentityConfig selects and configures the token verification oracle.
type IdentityConfig struct {
	// Mode is firebase (Admin SDK, checks revocation) or jwks (signature-only).
	Mode            string `koanf:"mode"`
	ProjectID       string `koanf:"project_id"`
	CredentialsJSON string `koanf:"credentials_json"`
	CredentialsFile string `koanf:"credentials_file"`

	JWKSURL      string        `koanf:"jwks_url"`
	JWKSCacheTTL time.Duration `koanf:"jwks_cache_ttl"`

	VerifyTimeout      time.Duration `koanf:"verify_timeout"`
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// FirebaseWebConfig is served to the browser as the Firebase web SDK config.
// None of these values are secrets.
type FirebaseWebConfig struct {
	APIKey            string `koanf:"api_key"`
	AuthDomain        string `koanf:"auth_domain"`
	ProjectID         string `koanf:"project_id"`
	StorageBucket     string `koanf:"storage_bucket"`
	MessagingSenderID string `koanf:"messaging_sender_id"`
	AppID             string `koanf:"app_id"`
	MeasurementID     string `koanf:"measurement_id"`
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	// Backend is badger or firestore.
	Backend    string        `koanf:"backend"`
	Path       string        `koanf:"path"`
	InMemory   bool          `koanf:"in_memory"`
	GCInterval time.Duration `koanf:"gc_interval"`
	DatabaseID string        `koanf:"database_id"`
	// CatalogTTL caches the public services list. Zero disables the cache.
	CatalogTTL time.Duration `koanf:"catalog_ttl"`
}

// SecurityConfig holds role grants, CORS and rate limits.
type SecurityConfig struct {
	AdminEmails  []string `koanf:"admin_emails"`
	AdminDomains []string `koanf:"admin_domains"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	SignInRateLimit   int           `koanf:"sign_in_rate_limit"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs with ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
