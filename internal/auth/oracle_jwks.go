// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// FirebaseIssuerPrefix precedes the project id in the iss claim of Firebase ID tokens.
const FirebaseIssuerPrefix = "https://securetoken.google.com/"

// JWKSOracle verifies Firebase ID tokens locally against the published
// signing keys. It cannot see revocations; use FirebaseOracle for that.
type JWKSOracle struct {
	projectID string
	keys      *JWKSCache
	leeway    time.Duration
	now       func() time.Time
}

// NewJWKSOracle returns an oracle for tokens issued to projectID.
func NewJWKSOracle(projectID string, keys *JWKSCache) *JWKSOracle {
	return &JWKSOracle{
		projectID: projectID,
		keys:      keys,
		leeway:    30 * time.Second,
		now:       time.Now,
	}
}

// VerifyToken implements Oracle.
func (o *JWKSOracle) VerifyToken(ctx context.Context, raw string) (*DecodedToken, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(FirebaseIssuerPrefix+o.projectID),
		jwt.WithAudience(o.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(o.leeway),
		jwt.WithTimeFunc(o.now),
	)

	claims := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token header has no kid")
		}
		return o.keys.GetKey(ctx, kid)
	})
	if err != nil {
		return nil, classifyJWTError(ctx, err)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" || len(sub) > 128 {
		return nil, NewAuthError(Malformed, errors.New("sub claim missing or too long"))
	}
	if at, err := claims.GetIssuedAt(); err == nil && at == nil {
		return nil, NewAuthError(Malformed, errors.New("iat claim missing"))
	}
	if authTime := timeClaim(claims, "auth_time"); !authTime.IsZero() && authTime.After(o.now().Add(o.leeway)) {
		return nil, NewAuthError(Malformed, errors.New("auth_time is in the future"))
	}

	return &DecodedToken{Subject: sub, Claims: claims}, nil
}

func classifyJWTError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return NewAuthError(Expired, err)
	case errors.Is(err, ErrKeySetUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		ctx.Err() != nil:
		return NewAuthError(OracleUnavailable, err)
	default:
		return NewAuthError(Malformed, fmt.Errorf("token rejected: %w", err))
	}
}
