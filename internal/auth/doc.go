// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

/*
Package auth turns a Firebase ID token carried in a session cookie into a
Principal for every request, and gates routes on that Principal.

Key Components:

  - Oracle: the identity provider seen as a token verifier. FirebaseOracle
    uses the Admin SDK (revocation aware); JWKSOracle checks signatures
    locally against the published signing keys.
  - Verifier: wraps an Oracle with a timeout and a circuit breaker and
    classifies every failure as Malformed, Expired, Revoked or
    OracleUnavailable.
  - AllowList: grants roles from configured emails and domains.
  - Middleware: installs a Principal on the request context. It never
    rejects; a bad cookie is deleted and the request continues anonymous.
  - Gate: admits or redirects (303) to the sign-in page with a returnUrl.
  - CSRFMiddleware: checks Origin and a double-submit token on unsafe
    requests.
  - Handlers: sign-in, sign-out, /auth/me and the browser sign-in page.

Usage Example:

	verifier := auth.NewVerifier(oracle, auth.DefaultVerifierConfig())
	roles := auth.NewAdminAllowList(cfg.Security.AdminEmails, cfg.Security.AdminDomains)
	cookies := auth.NewSessionCookies(auth.DefaultCookieConfig())

	r := chi.NewRouter()
	r.Use(auth.NewMiddleware(verifier, roles, cookies).Authenticate)

	gate := auth.NewGate(auth.DefaultSignInPath)
	r.With(gate.RequireRole(auth.RoleAdmin)).Get("/Admin", dashboard)

Thread Safety:

Every type here is safe for concurrent use once constructed.
*/
package auth
