// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package models

import "time"

// BookingRequest is the body of POST /api/v1/bookings.
type BookingRequest struct {
	ServiceID string    `json:"serviceId" validate:"required,nonblank,max=128"`
	Name      string    `json:"name" validate:"required,nonblank,max=200"`
	Email     string    `json:"email" validate:"omitempty,email,max=254"`
	Phone     string    `json:"phone" validate:"omitempty,max=40"`
	Notes     string    `json:"notes" validate:"omitempty,max=2000"`
	StartAt   time.Time `json:"startAt" validate:"required"`
}

// ContactRequest is the body of POST /api/v1/contact.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,nonblank,max=200"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Message string `json:"message" validate:"required,nonblank,max=5000"`
}

// StatusUpdateRequest is the body of POST /api/v1/admin/bookings/{id}/status.
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

// SignInRequest is the JSON body accepted by the sign-in endpoints.
type SignInRequest struct {
	IDToken   string `json:"idToken"`
	ReturnURL string `json:"returnUrl,omitempty"`
}

// SessionResponse is returned after a successful sign-in.
type SessionResponse struct {
	UID       string   `json:"uid"`
	Roles     []string `json:"roles"`
	ReturnURL string   `json:"returnUrl"`
}

// PrincipalResponse describes the caller, as seen by GET /auth/me.
type PrincipalResponse struct {
	Authenticated bool     `json:"authenticated"`
	UID           string   `json:"uid,omitempty"`
	Email         string   `json:"email,omitempty"`
	DisplayName   string   `json:"displayName,omitempty"`
	Roles         []string `json:"roles"`
}
