// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Session.CookieName != "session_token" {
		t.Errorf("Session.CookieName = %q, want session_token", cfg.Session.CookieName)
	}
	if cfg.Session.TTL != 8*time.Hour {
		t.Errorf("Session.TTL = %v, want 8h", cfg.Session.TTL)
	}
	if cfg.Session.SameSite != "none" || !cfg.Session.Secure {
		t.Errorf("cookie should default to SameSite=None; Secure, got %q/%v", cfg.Session.SameSite, cfg.Session.Secure)
	}
	if cfg.Identity.Mode != "firebase" {
		t.Errorf("Identity.Mode = %q, want firebase", cfg.Identity.Mode)
	}
	if cfg.Store.Backend != "badger" {
		t.Errorf("Store.Backend = %q, want badger", cfg.Store.Backend)
	}
	if len(cfg.Security.AdminDomains) != 0 {
		t.Errorf("AdminDomains should be empty by default, got %v", cfg.Security.AdminDomains)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("ADMIN_EMAILS", " Owner@Example.com , ops@example.com ,")
	t.Setenv("FIREBASE_PROJECT_ID", "tmmbs-test")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SOME_UNRELATED_VAR", "ignored")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Errorf("Session.TTL = %v, want 2h", cfg.Session.TTL)
	}
	if len(cfg.Security.AdminEmails) != 2 || cfg.Security.AdminEmails[0] != "Owner@Example.com" {
		t.Errorf("AdminEmails = %v", cfg.Security.AdminEmails)
	}
	if cfg.Identity.ProjectID != "tmmbs-test" {
		t.Errorf("Identity.ProjectID = %q", cfg.Identity.ProjectID)
	}
	if cfg.FirebaseWeb.ProjectID != "tmmbs-test" {
		t.Errorf("FirebaseWeb.ProjectID should inherit the identity project, got %q", cfg.FirebaseWeb.ProjectID)
	}
	if cfg.FirebaseWeb.AuthDomain != "tmmbs-test.firebaseapp.com" {
		t.Errorf("FirebaseWeb.AuthDomain = %q", cfg.FirebaseWeb.AuthDomain)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadWithKoanf_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := `
server:
  port: 7000
session:
  cookie_name: tmmbs_session
  same_site: Lax
identity:
  mode: jwks
  project_id: file-project
security:
  admin_emails:
    - admin@example.com
`
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7001")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf: %v", err)
	}

	if cfg.Server.Port != 7001 {
		t.Errorf("env should win over file: port = %d", cfg.Server.Port)
	}
	if cfg.Session.CookieName != "tmmbs_session" {
		t.Errorf("CookieName = %q", cfg.Session.CookieName)
	}
	if cfg.Session.SameSite != "lax" {
		t.Errorf("SameSite should be normalized, got %q", cfg.Session.SameSite)
	}
	if cfg.Identity.Mode != "jwks" || cfg.Identity.ProjectID != "file-project" {
		t.Errorf("identity = %+v", cfg.Identity)
	}
	if cfg.Identity.JWKSURL != DefaultJWKSURL {
		t.Errorf("JWKSURL default lost: %q", cfg.Identity.JWKSURL)
	}
	if len(cfg.Security.AdminEmails) != 1 {
		t.Errorf("AdminEmails = %v", cfg.Security.AdminEmails)
	}
}

func TestLoadWithKoanf_InvalidFails(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("IDENTITY_MODE", "saml")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected validation error for unknown identity mode")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"HTTP_PORT":                      "server.port",
		"GOOGLE_APPLICATION_CREDENTIALS": "identity.credentials_file",
		"GOOGLE_CREDENTIALS_JSON":        "identity.credentials_json",
		"ADMIN_DOMAINS":                  "security.admin_domains",
		"PATH":                           "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
