// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Claims are the decoded claims of a verified token.
type Claims struct {
	Subject string
	Email   string
	// EmailVerified is nil when the provider did not say.
	EmailVerified  *bool
	Name           string
	Picture        string
	IssuedAt       time.Time
	ExpiresAt      time.Time
	AuthTime       time.Time
	SignInProvider string
	// Extra holds every claim not mapped to a field above.
	Extra map[string]any
}

// DecodedToken is what an Oracle returns for a token it accepts.
type DecodedToken struct {
	Subject string
	Claims  map[string]any
}

var knownClaims = map[string]struct{}{
	"sub": {}, "uid": {}, "user_id": {}, "email": {}, "email_verified": {},
	"name": {}, "picture": {}, "iat": {}, "exp": {}, "auth_time": {},
	"firebase": {}, "iss": {}, "aud": {},
}

// claimsFromToken converts raw provider claims into Claims. This is the only
// place raw claim maps are read.
func claimsFromToken(tok *DecodedToken) *Claims {
	raw := tok.Claims
	c := &Claims{
		Subject: strings.TrimSpace(tok.Subject),
		Email:   stringClaim(raw, "email"),
		Name:    stringClaim(raw, "name"),
		Picture: stringClaim(raw, "picture"),
	}
	if c.Subject == "" {
		c.Subject = stringClaim(raw, "sub")
	}
	if v, ok := raw["email_verified"].(bool); ok {
		c.EmailVerified = &v
	}
	c.IssuedAt = timeClaim(raw, "iat")
	c.ExpiresAt = timeClaim(raw, "exp")
	c.AuthTime = timeClaim(raw, "auth_time")
	if fb, ok := raw["firebase"].(map[string]any); ok {
		c.SignInProvider = stringClaim(fb, "sign_in_provider")
	}

	for k, v := range raw {
		if _, known := knownClaims[k]; known {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[k] = v
	}
	return c
}

func stringClaim(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

// timeClaim reads a NumericDate claim, which arrives as float64 from JSON,
// int64 from the Admin SDK or json.Number from strict decoders.
func timeClaim(m map[string]any, key string) time.Time {
	var secs float64
	switch v := m[key].(type) {
	case float64:
		secs = v
	case int64:
		secs = float64(v)
	case int:
		secs = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return time.Time{}
		}
		secs = f
	default:
		return time.Time{}
	}
	if secs <= 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return time.Time{}
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}
