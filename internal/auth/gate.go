// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"net/http"
	"net/url"

	"github.com/tomtom215/tmmbs/internal/logging"
)

// DefaultSignInPath is where the gate sends callers it refuses.
const DefaultSignInPath = "/Auth/SignIn"

// Gate guards routes by reading the principal installed by Middleware. A
// refused caller is redirected (303) to the sign-in page with the original
// path and query as returnUrl, whether anonymous or lacking the role.
type Gate struct {
	signInPath string
	security   *logging.SecurityLogger
}

// NewGate returns a gate redirecting to signInPath.
func NewGate(signInPath string) *Gate {
	if signInPath == "" {
		signInPath = DefaultSignInPath
	}
	return &Gate{signInPath: signInPath, security: logging.NewSecurityLogger()}
}

// RequireRole admits authenticated principals holding role.
//
//	r.With(gate.RequireRole(auth.RoleAdmin)).Get("/admin/dashboard", h.Dashboard)
func (g *Gate) RequireRole(role Role) func(http.Handler) http.Handler {
	return g.require(string(role), func(p Principal) bool { return p.HasRole(role) })
}

// RequireAuthenticated admits any authenticated principal.
func (g *Gate) RequireAuthenticated() func(http.Handler) http.Handler {
	return g.require("authenticated", Principal.IsAuthenticated)
}

func (g *Gate) require(requirement string, allow func(Principal) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if allow(p) {
				RecordGateDecision(requirement, true)
				next.ServeHTTP(w, r)
				return
			}
			RecordGateDecision(requirement, false)
			if p.IsAuthenticated() {
				g.security.LogAccessDenied(p.Subject(), requirement, r.URL.Path, ClientIP(r))
			}
			http.Redirect(w, r, SignInRedirectURL(g.signInPath, r), http.StatusSeeOther)
		})
	}
}

// SignInRedirectURL returns signInPath?returnUrl=<escaped request path+query>.
func SignInRedirectURL(signInPath string, r *http.Request) string {
	return signInPath + "?returnUrl=" + url.QueryEscape(r.URL.RequestURI())
}
