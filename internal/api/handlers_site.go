// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/tmmbs/internal/auth"
	"github.com/tomtom215/tmmbs/internal/models"
	"github.com/tomtom215/tmmbs/internal/site"
)

const maxMediaLimit = 200

// Services lists the active services.
//
//	GET /api/v1/services
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	services, err := h.repo.ActiveServices(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to load services", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, services, len(services), start)
}

// ServiceByID returns one service.
//
//	GET /api/v1/services/{id}
func (h *Handler) ServiceByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	svc, err := h.repo.Service(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, site.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Service not found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to load service", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, svc, 1, start)
}

// Media lists gallery items.
//
//	GET /api/v1/media?limit=60
func (h *Handler) Media(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit := getIntParam(r, "limit", site.DefaultMediaLimit)
	if limit <= 0 {
		limit = site.DefaultMediaLimit
	}
	if limit > maxMediaLimit {
		limit = maxMediaLimit
	}

	items, err := h.repo.Media(r.Context(), limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to load media", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, items, len(items), start)
}

// Contact stores a contact message. Signed-in callers are recorded by uid.
//
//	POST /api/v1/contact {"name":"...","email":"...","message":"..."}
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, r, err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}

	principal := auth.PrincipalFromContext(r.Context())
	id, err := h.repo.AddContactMessage(r.Context(), models.ContactMessage{
		UID:     principal.Subject(),
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
	})
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to save message", err)
		return
	}
	respondSuccess(w, r, http.StatusCreated, map[string]string{"id": id}, 1, start)
}

// BookingForm returns what the booking form needs.
//
//	GET /api/v1/bookings?serviceId=cut
func (h *Handler) BookingForm(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	services, err := h.repo.ActiveServices(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to load services", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, models.BookingForm{
		Services:          services,
		SelectedServiceID: strings.TrimSpace(r.URL.Query().Get("serviceId")),
		SuggestedStartAt:  site.SuggestedStartAt(h.now()).UTC(),
	}, len(services), start)
}

// CreateBooking books a service for the signed-in caller. The email
// defaults to the caller's and the service must exist.
//
//	POST /api/v1/bookings {"serviceId":"cut","name":"...","startAt":"2026-06-01T09:00:00Z"}
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.BookingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, r, err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}

	svc, err := h.repo.Service(r.Context(), strings.TrimSpace(req.ServiceID))
	if errors.Is(err, site.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, models.ErrCodeServiceNotFound, "Service not found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to load service", err)
		return
	}

	principal := auth.PrincipalFromContext(r.Context())
	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = principal.Email()
	}

	booking := models.Booking{
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		UID:         principal.Subject(),
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Phone:       strings.TrimSpace(req.Phone),
		Notes:       strings.TrimSpace(req.Notes),
		StartAt:     req.StartAt.UTC(),
		Status:      models.BookingPending,
	}
	id, err := h.repo.CreateBooking(r.Context(), booking)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to create booking", err)
		return
	}
	booking.ID = id
	respondSuccess(w, r, http.StatusCreated, booking, 1, start)
}

// MyBookings lists the caller's bookings, latest first.
//
//	GET /api/v1/bookings/mine
func (h *Handler) MyBookings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid := auth.PrincipalFromContext(r.Context()).Subject()
	bookings, err := h.repo.BookingsForUser(r.Context(), uid)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to load bookings", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, bookings, len(bookings), start)
}

// Profile returns the caller's profile document.
//
//	GET /api/v1/profile
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	uid := auth.PrincipalFromContext(r.Context()).Subject()
	doc, err := h.repo.User(r.Context(), uid)
	if errors.Is(err, site.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Profile not found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to load profile", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, doc, 1, start)
}
