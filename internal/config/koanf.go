// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/tmmbs/config.yaml",
	"/etc/tmmbs/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultJWKSURL publishes the signing keys for Firebase ID tokens.
const DefaultJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Session: SessionConfig{
			CookieName: "session_token",
			TTL:        8 * time.Hour,
			SameSite:   "none",
			Secure:     true,
			SignInPath: "/Auth/SignIn",
		},
		Identity: IdentityConfig{
			Mode:               "firebase",
			JWKSURL:            DefaultJWKSURL,
			JWKSCacheTTL:       time.Hour,
			VerifyTimeout:      5 * time.Second,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		Store: StoreConfig{
			Backend:    "badger",
			Path:       "/data/tmmbs",
			GCInterval: 10 * time.Minute,
			DatabaseID: "(default)",
			CatalogTTL: time.Minute,
		},
		Security: SecurityConfig{
			AdminEmails:     []string{},
			AdminDomains:    []string{},
			CORSOrigins:     []string{},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			SignInRateLimit: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads configuration in three layers, later ones winning:
//
//  1. struct defaults
//  2. YAML file from CONFIG_PATH or DefaultConfigPaths (optional)
//  3. mapped environment variables
//
// The result is validated before it is returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	normalize(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths may arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.admin_emails",
	"security.admin_domains",
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// normalize fills derived values after unmarshalling.
func normalize(cfg *Config) {
	cfg.Identity.Mode = strings.ToLower(strings.TrimSpace(cfg.Identity.Mode))
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	cfg.Session.SameSite = strings.ToLower(strings.TrimSpace(cfg.Session.SameSite))
	if cfg.FirebaseWeb.ProjectID == "" {
		cfg.FirebaseWeb.ProjectID = cfg.Identity.ProjectID
	}
	if cfg.FirebaseWeb.AuthDomain == "" && cfg.FirebaseWeb.ProjectID != "" {
		cfg.FirebaseWeb.AuthDomain = cfg.FirebaseWeb.ProjectID + ".firebaseapp.com"
	}
}

// envTransformFunc maps known environment variables to config keys. Unmapped
// variables return "" and are dropped.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"http_port":        "server.port",
		"http_host":        "server.host",
		"http_timeout":     "server.timeout",
		"shutdown_timeout": "server.shutdown_timeout",
		"environment":      "server.environment",

		"session_cookie_name":   "session.cookie_name",
		"session_ttl":           "session.ttl",
		"session_cookie_domain": "session.domain",
		"session_same_site":     "session.same_site",
		"session_secure":        "session.secure",
		"sign_in_path":          "session.sign_in_path",

		"identity_mode":                  "identity.mode",
		"firebase_project_id":            "identity.project_id",
		"google_cloud_project":           "identity.project_id",
		"google_credentials_json":        "identity.credentials_json",
		"google_application_credentials": "identity.credentials_file",
		"jwks_url":                       "identity.jwks_url",
		"jwks_cache_ttl":                 "identity.jwks_cache_ttl",
		"verify_timeout":                 "identity.verify_timeout",
		"breaker_max_failures":           "identity.breaker_max_failures",
		"breaker_timeout":                "identity.breaker_timeout",

		"firebase_api_key":             "firebase_web.api_key",
		"firebase_auth_domain":         "firebase_web.auth_domain",
		"firebase_web_project_id":      "firebase_web.project_id",
		"firebase_storage_bucket":      "firebase_web.storage_bucket",
		"firebase_messaging_sender_id": "firebase_web.messaging_sender_id",
		"firebase_app_id":              "firebase_web.app_id",
		"firebase_measurement_id":      "firebase_web.measurement_id",

		"store_backend":      "store.backend",
		"store_path":         "store.path",
		"store_in_memory":    "store.in_memory",
		"store_gc_interval":  "store.gc_interval",
		"firestore_database": "store.database_id",
		"catalog_cache_ttl":  "store.catalog_ttl",

		"admin_emails":        "security.admin_emails",
		"admin_domains":       "security.admin_domains",
		"cors_origins":        "security.cors_origins",
		"rate_limit_requests": "security.rate_limit_requests",
		"rate_limit_window":   "security.rate_limit_window",
		"disable_rate_limit":  "security.rate_limit_disabled",
		"sign_in_rate_limit":  "security.sign_in_rate_limit",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
