// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package models

import "time"

// Placeholder values written when a document lacks a field.
const (
	AnonymousUID       = "anonymous"
	UntitledService    = "(Untitled)"
	UnknownServiceName = "(Unknown service)"
	MediaTypeImage     = "image"
	MediaTypeVideo     = "video"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// Service is an offering in the catalog.
type Service struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	DurationMins int     `json:"durationMins"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	Active       bool    `json:"active"`
}

// MediaItem is an entry in the gallery.
type MediaItem struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Type         string     `json:"type"`
	URL          string     `json:"url"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

// Booking is a consultation request made by a signed-in user.
type Booking struct {
	ID          string        `json:"id"`
	ServiceID   string        `json:"serviceId"`
	ServiceName string        `json:"serviceName"`
	UID         string        `json:"uid"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	StartAt     time.Time     `json:"startAt"`
	Status      BookingStatus `json:"status"`
	CreatedAt   *time.Time    `json:"createdAt,omitempty"`
}

// ContactMessage is a message left through the contact form.
type ContactMessage struct {
	UID     string `json:"uid"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Document is a raw stored document shown as-is on the dashboard.
type Document struct {
	ID   string                 `json:"id"`
	Data map[string]interface{} `json:"data"`
}

// BookingView is a booking row on the admin dashboard. Fields are optional
// because dashboard rows may come from documents written by other clients.
type BookingView struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId,omitempty"`
	Name        string     `json:"name,omitempty"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	ServiceName string     `json:"serviceName"`
	StartAt     *time.Time `json:"startAt,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	Status      string     `json:"status,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// AdminDashboard aggregates everything the admin page lists.
type AdminDashboard struct {
	Contacts      []Document    `json:"contacts"`
	Consultations []Document    `json:"consultations"`
	Bookings      []BookingView `json:"bookings"`
}

// BookingForm is the data needed to render the booking form.
type BookingForm struct {
	Services          []Service `json:"services"`
	SelectedServiceID string    `json:"selectedServiceId,omitempty"`
	SuggestedStartAt  time.Time `json:"suggestedStartAt"`
}
