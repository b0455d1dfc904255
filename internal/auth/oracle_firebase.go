// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// idTokenVerifier is the part of the Firebase Admin auth client we use.
type idTokenVerifier interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseOracle verifies ID tokens through the Firebase Admin SDK and
// checks revocation and disabled users on every call.
type FirebaseOracle struct {
	client idTokenVerifier
}

// NewFirebaseOracle initializes the Firebase Admin app once. It is called
// from main at start-up; a failure there is fatal.
func NewFirebaseOracle(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirebaseOracle, error) {
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase auth client: %w", err)
	}
	return &FirebaseOracle{client: client}, nil
}

// VerifyToken implements Oracle.
func (o *FirebaseOracle) VerifyToken(ctx context.Context, raw string) (*DecodedToken, error) {
	tok, err := o.client.VerifyIDTokenAndCheckRevoked(ctx, raw)
	if err != nil {
		return nil, classifyFirebaseError(err)
	}
	return &DecodedToken{Subject: tok.UID, Claims: firebaseClaims(tok)}, nil
}

func classifyFirebaseError(err error) error {
	switch {
	case fbauth.IsIDTokenExpired(err):
		return NewAuthError(Expired, err)
	case fbauth.IsIDTokenRevoked(err), fbauth.IsUserDisabled(err):
		return NewAuthError(Revoked, err)
	case fbauth.IsIDTokenInvalid(err):
		return NewAuthError(Malformed, err)
	default:
		// certificate fetch failures, transport errors, cancelled contexts
		return NewAuthError(OracleUnavailable, err)
	}
}

// firebaseClaims flattens the SDK token back into one claim map so that
// both oracles feed claimsFromToken the same shape.
func firebaseClaims(tok *fbauth.Token) map[string]any {
	claims := make(map[string]any, len(tok.Claims)+6)
	for k, v := range tok.Claims {
		claims[k] = v
	}
	claims["sub"] = tok.Subject
	claims["iat"] = tok.IssuedAt
	claims["exp"] = tok.Expires
	claims["auth_time"] = tok.AuthTime
	claims["iss"] = tok.Issuer
	claims["aud"] = tok.Audience
	claims["firebase"] = map[string]any{
		"sign_in_provider": tok.Firebase.SignInProvider,
		"tenant":           tok.Firebase.Tenant,
		"identities":       tok.Firebase.Identities,
	}
	return claims
}
