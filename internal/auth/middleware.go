// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/tomtom215/tmmbs/internal/logging"
)

// TokenVerifier is satisfied by *Verifier.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// Middleware installs a Principal on every request from the session cookie.
// It never rejects a request: a cookie that fails verification is deleted
// and the request continues as anonymous.
type Middleware struct {
	verifier TokenVerifier
	roles    RoleDeriver
	cookies  *SessionCookies
	security *logging.SecurityLogger
}

// NewMiddleware wires the middleware.
func NewMiddleware(verifier TokenVerifier, roles RoleDeriver, cookies *SessionCookies) *Middleware {
	return &Middleware{
		verifier: verifier,
		roles:    roles,
		cookies:  cookies,
		security: logging.NewSecurityLogger(),
	}
}

// Authenticate is the global middleware. Register it once, ahead of routing.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PrincipalFromContext(r.Context()).IsAuthenticated() {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := m.cookies.Read(r)
		if !ok {
			m.serveAs(w, r, next, AnonymousPrincipal())
			return
		}

		claims, err := m.verify(r.Context(), token)
		if err != nil {
			kind := KindOf(err)
			m.cookies.Clear(w)
			SessionCookiesCleared.WithLabelValues(kind.String()).Inc()
			m.security.LogSessionRejected(kind.String(), r.URL.Path, ClientIP(r), err.Error())
			m.serveAs(w, r, next, AnonymousPrincipal())
			return
		}

		m.serveAs(w, r, next, newPrincipal(claims, rolesFor(m.roles, claims)))
	})
}

// rolesFor only grants roles for an email the provider has not marked
// unverified.
func rolesFor(roles RoleDeriver, claims *Claims) RoleSet {
	if roles == nil || claims.Email == "" || (claims.EmailVerified != nil && !*claims.EmailVerified) {
		return RoleSet{}
	}
	return roles.DeriveRoles(claims.Email)
}

// verify recovers a panicking verifier so that it cannot escape the
// middleware boundary.
func (m *Middleware) verify(ctx context.Context, token string) (claims *Claims, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			claims = nil
			err = NewAuthError(OracleUnavailable, fmt.Errorf("verifier panic: %v", rec))
			logging.Ctx(ctx).Error().Interface("panic", rec).Msg("session verification panicked")
		}
	}()
	return m.verifier.Verify(ctx, token)
}

func (m *Middleware) serveAs(w http.ResponseWriter, r *http.Request, next http.Handler, p Principal) {
	PrincipalsInstalled.WithLabelValues(p.TrustLevel().String()).Inc()
	next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
}

// ClientIP returns the host part of r.RemoteAddr (after chi's RealIP).
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
