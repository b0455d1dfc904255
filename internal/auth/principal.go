// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import (
	"context"
	"sort"
)

// Role is an authorization role.
type Role string

// RoleAdmin grants access to the admin dashboard.
const RoleAdmin Role = "Admin"

// RoleSet is an immutable set of roles.
type RoleSet struct {
	roles map[Role]struct{}
}

// NewRoleSet builds a set from roles.
func NewRoleSet(roles ...Role) RoleSet {
	if len(roles) == 0 {
		return RoleSet{}
	}
	m := make(map[Role]struct{}, len(roles))
	for _, r := range roles {
		m[r] = struct{}{}
	}
	return RoleSet{roles: m}
}

// Has reports whether role is in the set.
func (s RoleSet) Has(role Role) bool {
	_, ok := s.roles[role]
	return ok
}

// Len returns the number of roles.
func (s RoleSet) Len() int {
	return len(s.roles)
}

// Strings returns the roles sorted.
func (s RoleSet) Strings() []string {
	out := make([]string, 0, len(s.roles))
	for r := range s.roles {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return out
}

// TrustLevel says whether a principal was verified.
type TrustLevel int

const (
	Anonymous TrustLevel = iota
	Authenticated
)

func (t TrustLevel) String() string {
	if t == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Principal is the caller of a request. It is built per request by the
// authentication middleware and never stored. The zero value is the
// anonymous principal.
type Principal struct {
	subject     string
	displayName string
	email       string
	roles       RoleSet
	trust       TrustLevel
}

// AnonymousPrincipal returns the unauthenticated principal.
func AnonymousPrincipal() Principal {
	return Principal{}
}

// newPrincipal builds an authenticated principal from verified claims.
func newPrincipal(claims *Claims, roles RoleSet) Principal {
	display := claims.Email
	if display == "" {
		display = claims.Subject
	}
	return Principal{
		subject:     claims.Subject,
		displayName: display,
		email:       claims.Email,
		roles:       roles,
		trust:       Authenticated,
	}
}

func (p Principal) Subject() string        { return p.subject }
func (p Principal) DisplayName() string    { return p.displayName }
func (p Principal) Email() string          { return p.email }
func (p Principal) Roles() RoleSet         { return p.roles }
func (p Principal) TrustLevel() TrustLevel { return p.trust }

// IsAuthenticated reports whether the principal was verified.
func (p Principal) IsAuthenticated() bool {
	return p.trust == Authenticated
}

// HasRole reports whether an authenticated principal holds role.
func (p Principal) HasRole(role Role) bool {
	return p.IsAuthenticated() && p.roles.Has(role)
}

type contextKey string

const principalContextKey contextKey = "principal"

// withPrincipal installs p on ctx. Only the middleware calls it.
func withPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext returns the installed principal, or the anonymous
// principal when none was installed.
func PrincipalFromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalContextKey).(Principal); ok {
		return p
	}
	return Principal{}
}
