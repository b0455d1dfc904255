// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a session token was rejected.
type FailureKind int

const (
	// Malformed covers empty, unparsable, wrongly signed or wrongly addressed tokens.
	Malformed FailureKind = iota + 1
	// Expired tokens were valid once but are past their exp claim.
	Expired
	// Revoked tokens were revoked at the provider, or their user was disabled.
	Revoked
	// OracleUnavailable means the provider could not give an answer.
	OracleUnavailable
)

func (k FailureKind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case Expired:
		return "expired"
	case Revoked:
		return "revoked"
	case OracleUnavailable:
		return "oracle_unavailable"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against an *AuthError of the same kind.
var (
	ErrMalformed         = errors.New("session token malformed")
	ErrExpired           = errors.New("session token expired")
	ErrRevoked           = errors.New("session token revoked")
	ErrOracleUnavailable = errors.New("identity provider unavailable")
)

// ErrEmptyToken is the cause recorded for an empty or whitespace token.
var ErrEmptyToken = errors.New("empty token")

func (k FailureKind) sentinel() error {
	switch k {
	case Malformed:
		return ErrMalformed
	case Expired:
		return ErrExpired
	case Revoked:
		return ErrRevoked
	default:
		return ErrOracleUnavailable
	}
}

// AuthError is the only error type returned by Verifier.Verify.
//
//	if errors.Is(err, auth.ErrExpired) { ... }
//	var ae *auth.AuthError
//	if errors.As(err, &ae) && ae.Kind == auth.Revoked { ... }
type AuthError struct {
	Kind FailureKind
	Err  error
}

// NewAuthError wraps cause with kind.
func NewAuthError(kind FailureKind, cause error) *AuthError {
	return &AuthError{Kind: kind, Err: cause}
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Kind.sentinel().Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind.sentinel(), e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind.
func (e *AuthError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns the failure kind carried by err. Errors that are not an
// *AuthError count as OracleUnavailable: an unexplained failure is never
// treated as the caller's fault.
func KindOf(err error) FailureKind {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return OracleUnavailable
}
