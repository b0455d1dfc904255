// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package auth

import "strings"

// RoleDeriver maps a verified email to roles.
type RoleDeriver interface {
	DeriveRoles(email string) RoleSet
}

type ruleKind int

const (
	ruleExactEmail ruleKind = iota
	ruleDomain
)

// GrantRule grants a role to emails matching a pattern.
type GrantRule struct {
	kind    ruleKind
	pattern string
	role    Role
}

// EmailRule grants role to one email address, compared case-insensitively.
func EmailRule(email string, role Role) GrantRule {
	return GrantRule{kind: ruleExactEmail, pattern: normalizeEmail(email), role: role}
}

// DomainRule grants role to every address at domain (and its subdomains).
func DomainRule(domain string, role Role) GrantRule {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, "@")
	return GrantRule{kind: ruleDomain, pattern: d, role: role}
}

func (g GrantRule) matches(email string) bool {
	if g.pattern == "" {
		return false
	}
	switch g.kind {
	case ruleExactEmail:
		return email == g.pattern
	case ruleDomain:
		at := strings.LastIndexByte(email, '@')
		if at < 0 {
			return false
		}
		host := email[at+1:]
		return host == g.pattern || strings.HasSuffix(host, "."+g.pattern)
	default:
		return false
	}
}

// AllowList is an immutable list of grant rules loaded once at start-up.
type AllowList struct {
	rules []GrantRule
}

// NewAllowList copies rules into a new list.
func NewAllowList(rules ...GrantRule) *AllowList {
	cp := make([]GrantRule, len(rules))
	copy(cp, rules)
	return &AllowList{rules: cp}
}

// NewAdminAllowList grants RoleAdmin to each listed email and domain.
func NewAdminAllowList(emails, domains []string) *AllowList {
	rules := make([]GrantRule, 0, len(emails)+len(domains))
	for _, e := range emails {
		rules = append(rules, EmailRule(e, RoleAdmin))
	}
	for _, d := range domains {
		rules = append(rules, DomainRule(d, RoleAdmin))
	}
	return NewAllowList(rules...)
}

// DeriveRoles returns the roles granted to email. An empty email gets none.
func (a *AllowList) DeriveRoles(email string) RoleSet {
	email = normalizeEmail(email)
	if email == "" || a == nil {
		return RoleSet{}
	}
	var granted []Role
	for _, rule := range a.rules {
		if rule.matches(email) {
			granted = append(granted, rule.role)
		}
	}
	return NewRoleSet(granted...)
}

// Len returns the number of rules.
func (a *AllowList) Len() int {
	if a == nil {
		return 0
	}
	return len(a.rules)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
