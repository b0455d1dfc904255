// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package api

import (
	"context"
	"time"

	"github.com/tomtom215/tmmbs/internal/models"
)

// SiteRepository is the business data the handlers need.
// *site.Repository implements it.
type SiteRepository interface {
	ActiveServices(ctx context.Context) ([]models.Service, error)
	Service(ctx context.Context, id string) (*models.Service, error)
	Media(ctx context.Context, limit int) ([]models.MediaItem, error)
	CreateBooking(ctx context.Context, b models.Booking) (string, error)
	BookingsForUser(ctx context.Context, uid string) ([]models.Booking, error)
	User(ctx context.Context, uid string) (*models.Document, error)
	AddContactMessage(ctx context.Context, msg models.ContactMessage) (string, error)
	Dashboard(ctx context.Context) (*models.AdminDashboard, error)
	UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error
	DeleteBooking(ctx context.Context, id string) error
	DeleteContact(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Handler serves the /api/v1 routes.
type Handler struct {
	repo      SiteRepository
	version   string
	startTime time.Time
	now       func() time.Time
}

// NewHandler creates the API handler.
func NewHandler(repo SiteRepository, version string) *Handler {
	return &Handler{
		repo:      repo,
		version:   version,
		startTime: time.Now(),
		now:       time.Now,
	}
}
