// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package config

import (
	"fmt"
	"os"
	"strings"

	"google.golang.org/api/option"
)

// Credential sources, in resolution order.
const (
	CredentialsInline = "inline-json"
	CredentialsFile   = "file"
	CredentialsADC    = "application-default"
)

// Credentials is the resolved Google service account source.
type Credentials struct {
	Source string
	JSON   []byte
	Path   string
}

// ResolveCredentials picks inline JSON first, then a credentials file, then
// falls back to Application Default Credentials.
func (c IdentityConfig) ResolveCredentials() (Credentials, error) {
	if js := strings.TrimSpace(c.CredentialsJSON); js != "" {
		if !strings.HasPrefix(js, "{") {
			return Credentials{}, fmt.Errorf("GOOGLE_CREDENTIALS_JSON does not contain a JSON object")
		}
		return Credentials{Source: CredentialsInline, JSON: []byte(js)}, nil
	}
	if path := strings.TrimSpace(c.CredentialsFile); path != "" {
		if _, err := os.Stat(path); err != nil {
			return Credentials{}, fmt.Errorf("credentials file %s: %w", path, err)
		}
		return Credentials{Source: CredentialsFile, Path: path}, nil
	}
	return Credentials{Source: CredentialsADC}, nil
}

// ClientOptions converts the credentials into Google API client options.
// ADC needs no option.
func (c Credentials) ClientOptions() []option.ClientOption {
	switch c.Source {
	case CredentialsInline:
		return []option.ClientOption{option.WithCredentialsJSON(c.JSON)}
	case CredentialsFile:
		return []option.ClientOption{option.WithCredentialsFile(c.Path)}
	default:
		return nil
	}
}
