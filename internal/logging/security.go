// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SecurityEvent is a session lifecycle event destined for the audit stream.
type SecurityEvent struct {
	// Event names what happened: sign_in, sign_out, session_rejected, access_denied.
	Event   string
	Subject string
	Email   string
	// Kind is the failure classification, if any.
	Kind      string
	Path      string
	IPAddress string
	UserAgent string
	Success   bool
	Error     string
}

// SecurityLogger writes session events with identifiers masked.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger returns a SecurityLogger on the global logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{logger: With().Str("component", "auth").Logger()}
}

// NewSecurityLoggerWithLogger returns a SecurityLogger on logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger.With().Str("component", "auth").Logger()}
}

// LogEvent writes event. Failures are logged at warn, successes at info.
func (l *SecurityLogger) LogEvent(event *SecurityEvent) {
	e := l.logger.Info()
	status := "success"
	if !event.Success {
		e = l.logger.Warn()
		status = "failed"
	}
	e = e.Str("event", event.Event).Str("status", status)

	if event.Subject != "" {
		e = e.Str("subject", SanitizeUserID(event.Subject))
	}
	if event.Email != "" {
		e = e.Str("email", SanitizeEmail(event.Email))
	}
	if event.Kind != "" {
		e = e.Str("kind", event.Kind)
	}
	if event.Path != "" {
		e = e.Str("path", SanitizeLogValue(event.Path))
	}
	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}
	if event.UserAgent != "" {
		e = e.Str("user_agent", SanitizeLogValue(truncateString(event.UserAgent, 100)))
	}
	if event.Error != "" && !event.Success {
		e = e.Str("error", SanitizeError(event.Error))
	}
	e.Msg("")
}

// LogSignIn records a session creation.
func (l *SecurityLogger) LogSignIn(subject, email, ip, userAgent string) {
	l.LogEvent(&SecurityEvent{
		Event: "sign_in", Subject: subject, Email: email,
		IPAddress: ip, UserAgent: userAgent, Success: true,
	})
}

// LogSignInFailure records a rejected sign-in token.
func (l *SecurityLogger) LogSignInFailure(kind, ip, userAgent, reason string) {
	l.LogEvent(&SecurityEvent{
		Event: "sign_in", Kind: kind, IPAddress: ip,
		UserAgent: userAgent, Error: reason,
	})
}

// LogSignOut records an explicit sign-out.
func (l *SecurityLogger) LogSignOut(subject, ip string) {
	l.LogEvent(&SecurityEvent{Event: "sign_out", Subject: subject, IPAddress: ip, Success: true})
}

// LogSessionRejected records a session cookie that failed re-verification.
func (l *SecurityLogger) LogSessionRejected(kind, path, ip, reason string) {
	l.LogEvent(&SecurityEvent{
		Event: "session_rejected", Kind: kind, Path: path,
		IPAddress: ip, Error: reason,
	})
}

// LogAccessDenied records a gate refusal.
func (l *SecurityLogger) LogAccessDenied(subject, role, path, ip string) {
	l.LogEvent(&SecurityEvent{
		Event: "access_denied", Subject: subject, Kind: role,
		Path: path, IPAddress: ip,
	})
}

// SanitizeToken keeps the first and last 4 characters of a token.
func SanitizeToken(token string) string {
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeUserID masks all but the edges of a provider subject.
func SanitizeUserID(userID string) string {
	if len(userID) <= 8 {
		return userID
	}
	return userID[:4] + "***" + userID[len(userID)-4:]
}

// SanitizeEmail keeps the first two local-part characters and the domain.
func SanitizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return "***"
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return "***" + domain
	}
	return local[:2] + "***" + domain
}

// SanitizeError replaces messages that may echo credentials.
func SanitizeError(err string) string {
	lower := strings.ToLower(err)
	for _, p := range []string{"password", "secret", "bearer", "authorization", "cookie", "private key"} {
		if strings.Contains(lower, p) {
			return "authentication error"
		}
	}
	return SanitizeLogValue(truncateString(err, 200))
}

// SanitizeLogValue strips CR/LF so user-controlled input cannot forge log lines.
func SanitizeLogValue(s string) string {
	return strings.NewReplacer("\r", "", "\n", " ").Replace(s)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
