// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/tmmbs/internal/auth"
	"github.com/tomtom215/tmmbs/internal/logging"
	"github.com/tomtom215/tmmbs/internal/models"
	"github.com/tomtom215/tmmbs/internal/site"
)

// AdminDashboard returns contacts, consultations and bookings.
func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	dash, err := h.repo.Dashboard(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to load dashboard", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, dash, len(dash.Bookings), start)
}

// UpdateBookingStatus sets a booking's status.
//
//	POST /api/v1/admin/bookings/{id}/status {"status":"confirmed"}
func (h *Handler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	var req models.StatusUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondDecodeError(w, r, err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}

	err := h.repo.UpdateBookingStatus(r.Context(), id, models.BookingStatus(req.Status))
	switch {
	case errors.Is(err, site.ErrNotFound):
		respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, "Booking not found", nil)
		return
	case errors.Is(err, site.ErrInvalidStatus):
		respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, "Invalid status", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to update booking", err)
		return
	}

	h.audit(r, "booking_status_updated", id)
	respondSuccess(w, r, http.StatusOK, map[string]string{"id": id, "status": req.Status}, 1, start)
}

// DeleteBooking removes a booking.
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	if err := h.repo.DeleteBooking(r.Context(), id); err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to delete booking", err)
		return
	}
	h.audit(r, "booking_deleted", id)
	respondSuccess(w, r, http.StatusOK, map[string]string{"deleted": id}, 1, start)
}

// DeleteContact removes a contact message.
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	if err := h.repo.DeleteContact(r.Context(), id); err != nil {
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to delete message", err)
		return
	}
	h.audit(r, "contact_deleted", id)
	respondSuccess(w, r, http.StatusOK, map[string]string{"deleted": id}, 1, start)
}

func (h *Handler) audit(r *http.Request, action, id string) {
	p := auth.PrincipalFromContext(r.Context())
	logging.Ctx(r.Context()).Info().
		Str("action", action).
		Str("target_id", logging.SanitizeLogValue(id)).
		Str("subject", logging.SanitizeUserID(p.Subject())).
		Msg("admin action")
}
