// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/tmmbs/internal/models"
)

const readinessTimeout = 3 * time.Second

// HealthLive handles liveness probes. It answers 200 while the process is
// up, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HealthStatus{
			Status:  "alive",
			Version: h.version,
			Uptime:  time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}

// HealthReady handles readiness probes: 200 when the document store
// answers, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]string{"store": "ok"}
	statusCode := http.StatusOK
	status := "ready"
	if err := h.repo.Ping(ctx); err != nil {
		checks["store"] = "unavailable"
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: models.HealthStatus{
			Status:  status,
			Checks:  checks,
			Version: h.version,
			Uptime:  time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}
