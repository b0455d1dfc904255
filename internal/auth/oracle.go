// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import "context"

// Oracle verifies a provider-issued token. Implementations report rejections
// as *AuthError; any other error is read as OracleUnavailable.
type Oracle interface {
	VerifyToken(ctx context.Context, token string) (*DecodedToken, error)
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(ctx context.Context, token string) (*DecodedToken, error)

// VerifyToken calls f.
func (f OracleFunc) VerifyToken(ctx context.Context, token string) (*DecodedToken, error) {
	return f(ctx, token)
}
