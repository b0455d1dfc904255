// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionVerifications counts verifier outcomes.
	// Labels:
	//   - outcome: "success", "malformed", "expired", "revoked", "oracle_unavailable"
	SessionVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_session_verifications_total",
			Help: "Total number of session token verifications by outcome",
		},
		[]string{"outcome"},
	)

	// SessionVerificationDuration measures oracle round trips, including
	// calls short-circuited by the breaker.
	SessionVerificationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "auth_session_verification_duration_seconds",
			Help:    "Duration of session token verification in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// SessionCookiesCleared counts cookies deleted by the middleware after a
	// failed re-verification.
	SessionCookiesCleared = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_session_cookies_cleared_total",
			Help: "Total number of session cookies cleared after failed verification",
		},
		[]string{"kind"},
	)

	// PrincipalsInstalled counts principals installed per request by trust level.
	PrincipalsInstalled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_principals_installed_total",
			Help: "Total number of principals installed on requests",
		},
		[]string{"trust_level"},
	)

	// GateDecisions counts authorization gate outcomes.
	// Labels:
	//   - requirement: role name, or "authenticated"
	//   - decision: "allowed", "redirected"
	GateDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_gate_decisions_total",
			Help: "Total number of authorization gate decisions",
		},
		[]string{"requirement", "decision"},
	)

	// SignIns counts sign-in attempts by outcome.
	SignIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_sign_ins_total",
			Help: "Total number of sign-in attempts by outcome",
		},
		[]string{"outcome"},
	)

	// CSRFRejections counts unsafe requests refused by the CSRF middleware.
	// Labels:
	//   - reason: "origin", "missing", "mismatch"
	CSRFRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_csrf_rejections_total",
			Help: "Total number of requests rejected by CSRF protection",
		},
		[]string{"reason"},
	)

	// SignOuts counts sign-outs.
	SignOuts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_sign_outs_total",
			Help: "Total number of sign-outs",
		},
	)
)

// RecordVerification records a verifier outcome. err is nil on success.
func RecordVerification(err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = KindOf(err).String()
	}
	SessionVerifications.WithLabelValues(outcome).Inc()
	SessionVerificationDuration.Observe(duration.Seconds())
}

// RecordGateDecision records a gate outcome.
func RecordGateDecision(requirement string, allowed bool) {
	decision := "allowed"
	if !allowed {
		decision = "redirected"
	}
	GateDecisions.WithLabelValues(requirement, decision).Inc()
}
