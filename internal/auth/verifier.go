// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tmmbs/internal/logging"
	"github.com/tomtom215/tmmbs/internal/metrics"
)

// errCallerGone marks a verification the caller abandoned. It says nothing
// about the provider and never counts against the breaker.
var errCallerGone = errors.New("caller abandoned verification")

// VerifierConfig configures a Verifier.
type VerifierConfig struct {
	// Name labels the circuit breaker in logs and metrics.
	Name string
	// Timeout bounds a single oracle call. Zero means no extra bound.
	Timeout time.Duration
	// MaxFailures is the number of consecutive provider failures that opens
	// the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// DefaultVerifierConfig returns sane defaults.
func DefaultVerifierConfig() VerifierConfig {
	return VerifierConfig{
		Name:        "identity-oracle",
		Timeout:     5 * time.Second,
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	}
}

// Verifier turns a raw session token into typed Claims. It has no side
// effects besides logs and metrics and may be called any number of times
// for the same token.
type Verifier struct {
	oracle  Oracle
	cb      *gobreaker.CircuitBreaker[*DecodedToken]
	name    string
	timeout time.Duration
}

// NewVerifier wraps oracle with a circuit breaker. Only OracleUnavailable
// failures count against the breaker; a user presenting an expired token
// says nothing about the provider's health.
func NewVerifier(oracle Oracle, cfg VerifierConfig) *Verifier {
	if cfg.Name == "" {
		cfg.Name = "identity-oracle"
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	maxFailures := cfg.MaxFailures
	cb := gobreaker.NewCircuitBreaker[*DecodedToken](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= maxFailures
			if trip {
				logging.Warn().
					Str("breaker", cfg.Name).
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return trip
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				KindOf(err) != OracleUnavailable ||
				errors.Is(err, errCallerGone) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})

	return &Verifier{oracle: oracle, cb: cb, name: cfg.Name, timeout: cfg.Timeout}
}

// Verify checks rawToken with the oracle. Every failure is an *AuthError.
// An empty or whitespace token fails as Malformed without calling the oracle.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (claims *Claims, err error) {
	start := time.Now()
	defer func() { RecordVerification(err, time.Since(start)) }()

	token := strings.TrimSpace(rawToken)
	if token == "" {
		return nil, NewAuthError(Malformed, ErrEmptyToken)
	}

	caller := ctx
	if err := caller.Err(); err != nil {
		metrics.CircuitBreakerRequests.WithLabelValues(v.name, "abandoned").Inc()
		return nil, NewAuthError(OracleUnavailable, fmt.Errorf("%w: %w", errCallerGone, err))
	}
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	decoded, err := v.cb.Execute(func() (*DecodedToken, error) {
		tok, err := v.callOracle(ctx, token)
		if err != nil && caller.Err() != nil {
			return nil, NewAuthError(OracleUnavailable, fmt.Errorf("%w: %w", errCallerGone, err))
		}
		return tok, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(v.name, "rejected").Inc()
			return nil, NewAuthError(OracleUnavailable, err)
		}
		result := "success"
		switch {
		case errors.Is(err, errCallerGone):
			result = "abandoned"
		case KindOf(err) == OracleUnavailable:
			result = "failure"
		}
		metrics.CircuitBreakerRequests.WithLabelValues(v.name, result).Inc()
		return nil, asAuthError(err)
	}
	metrics.CircuitBreakerRequests.WithLabelValues(v.name, "success").Inc()

	if decoded == nil {
		return nil, NewAuthError(OracleUnavailable, errors.New("oracle returned no token"))
	}
	claims = claimsFromToken(decoded)
	if claims.Subject == "" {
		return nil, NewAuthError(Malformed, errors.New("token has no subject"))
	}
	return claims, nil
}

// callOracle converts a panicking oracle into OracleUnavailable.
func (v *Verifier) callOracle(ctx context.Context, token string) (tok *DecodedToken, err error) {
	defer func() {
		if r := recover(); r != nil {
			tok = nil
			err = NewAuthError(OracleUnavailable, fmt.Errorf("oracle panic: %v", r))
		}
	}()
	return v.oracle.VerifyToken(ctx, token)
}

// State returns the breaker state, for readiness checks.
func (v *Verifier) State() string {
	return stateToString(v.cb.State())
}

func asAuthError(err error) *AuthError {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}
	return NewAuthError(OracleUnavailable, err)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
