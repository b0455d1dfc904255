// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

// Package site reads and writes the business data of the site (services,
// media, bookings, contact messages, user profiles) through a
// docstore.Store, and assembles the admin dashboard.
package site

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/tmmbs/internal/cache"
	"github.com/tomtom215/tmmbs/internal/docstore"
	"github.com/tomtom215/tmmbs/internal/models"
)

// Collection names. Services live in two collections for historical
// reasons and are merged on read.
const (
	CollectionServices       = "services"
	CollectionServicesLegacy = "Services"
	CollectionMedia          = "media"
	CollectionBookings       = "bookings"
	CollectionContacts       = "contact_messages"
	CollectionConsultations  = "consultations"
	CollectionUsers          = "users"
)

// DefaultMediaLimit is the gallery size when the caller gives none.
const DefaultMediaLimit = 60

var (
	// ErrNotFound is returned for a missing service, booking or user.
	ErrNotFound = docstore.ErrNotFound
	// ErrInvalidStatus is returned for a booking status outside
	// pending|confirmed|cancelled.
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Repository is safe for concurrent use.
type Repository struct {
	store   docstore.Store
	catalog *cache.Cache[[]models.Service]
}

// Option configures a Repository.
type Option func(*Repository)

// WithCatalogTTL caches the active services list for ttl. Services are
// edited outside this server, so a change shows up within ttl.
func WithCatalogTTL(ttl time.Duration) Option {
	return func(r *Repository) {
		if ttl > 0 {
			r.catalog = cache.New[[]models.Service]("catalog", ttl)
		}
	}
}

// NewRepository returns a repository over store.
func NewRepository(store docstore.Store, opts ...Option) *Repository {
	r := &Repository{store: store}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ActiveServices lists active services from both service collections,
// sorted by name. When an id exists in both, the lowercase collection wins.
func (r *Repository) ActiveServices(ctx context.Context) ([]models.Service, error) {
	if r.catalog == nil {
		return r.queryActiveServices(ctx)
	}
	return r.catalog.GetOrLoad(ctx, "active", r.queryActiveServices)
}

func (r *Repository) queryActiveServices(ctx context.Context) ([]models.Service, error) {
	var lower, upper []docstore.Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lower, err = r.store.Query(gctx, CollectionServices, docstore.Query{})
		return err
	})
	g.Go(func() error {
		var err error
		upper, err = r.store.Query(gctx, CollectionServicesLegacy, docstore.Query{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	seen := make(map[string]struct{}, len(lower)+len(upper))
	services := make([]models.Service, 0, len(lower)+len(upper))
	for _, doc := range append(lower, upper...) {
		if _, dup := seen[doc.ID]; dup {
			continue
		}
		seen[doc.ID] = struct{}{}
		svc := serviceFromDoc(doc)
		if svc.Active {
			services = append(services, svc)
		}
	}

	sort.SliceStable(services, func(i, j int) bool {
		a, b := strings.ToLower(services[i].Name), strings.ToLower(services[j].Name)
		if a != b {
			return a < b
		}
		return services[i].ID < services[j].ID
	})
	return services, nil
}

// Service returns one service, looking in the lowercase collection first.
// Inactive services are returned too; callers decide.
func (r *Repository) Service(ctx context.Context, id string) (*models.Service, error) {
	for _, coll := range []string{CollectionServices, CollectionServicesLegacy} {
		doc, err := r.store.Get(ctx, coll, id)
		if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidID) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get service %s: %w", id, err)
		}
		svc := serviceFromDoc(*doc)
		return &svc, nil
	}
	return nil, fmt.Errorf("service %s: %w", id, ErrNotFound)
}

func serviceFromDoc(doc docstore.Document) models.Service {
	f := doc.Data
	svc := models.Service{
		ID:          doc.ID,
		Name:        f.StringOr(models.UntitledService, "name", "title"),
		Category:    f.StringOr("", "category"),
		Description: f.StringOr("", "description", "intro"),
		ImageURL:    f.StringOr("", "imageUrl"),
		Active:      true,
	}
	if price, ok := f.Float("price"); ok {
		svc.Price = price
	}
	if mins, ok := f.Int("durationMins"); ok {
		svc.DurationMins = int(mins)
	}
	if active, ok := f.Bool("active"); ok {
		svc.Active = active
	}
	if web, ok := f.String("webUrl"); ok {
		web = strings.TrimSpace(web)
		if strings.TrimSpace(svc.Description) == "" {
			svc.Description = web
		} else {
			svc.Description += "\nMore: " + web
		}
	}
	return svc
}

// Media lists up to limit gallery items (DefaultMediaLimit when limit <= 0).
func (r *Repository) Media(ctx context.Context, limit int) ([]models.MediaItem, error) {
	if limit <= 0 {
		limit = DefaultMediaLimit
	}
	docs, err := r.store.Query(ctx, CollectionMedia, docstore.Query{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	items := make([]models.MediaItem, 0, len(docs))
	for _, doc := range docs {
		f := doc.Data
		items = append(items, models.MediaItem{
			ID:           doc.ID,
			Title:        f.StringOr("", "title"),
			Type:         f.StringOr(models.MediaTypeImage, "type"),
			URL:          f.StringOr("", "url"),
			ThumbnailURL: f.StringOr("", "thumbnailUrl"),
			CreatedAt:    f.TimePtr("createdAt"),
		})
	}
	return items, nil
}

// CreateBooking stores b and returns its id. An empty UID is stored as
// anonymous, an empty status as pending, and StartAt in UTC.
func (r *Repository) CreateBooking(ctx context.Context, b models.Booking) (string, error) {
	uid := strings.TrimSpace(b.UID)
	if uid == "" {
		uid = models.AnonymousUID
	}
	status := b.Status
	if status == "" {
		status = models.BookingPending
	}
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	id, err := r.store.Add(ctx, CollectionBookings, map[string]interface{}{
		"serviceId":   b.ServiceID,
		"serviceName": b.ServiceName,
		"uid":         uid,
		"name":        b.Name,
		"email":       b.Email,
		"phone":       b.Phone,
		"notes":       b.Notes,
		"startAt":     b.StartAt.UTC(),
		"status":      string(status),
		"createdAt":   docstore.ServerTimestamp,
	})
	if err != nil {
		return "", fmt.Errorf("create booking: %w", err)
	}
	return id, nil
}

// BookingsForUser lists uid's bookings, latest start first.
func (r *Repository) BookingsForUser(ctx context.Context, uid string) ([]models.Booking, error) {
	docs, err := r.store.Query(ctx, CollectionBookings, docstore.Query{
		Where:   []docstore.Filter{docstore.Where("uid", "==", uid)},
		OrderBy: "startAt",
		Desc:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("list bookings for user: %w", err)
	}
	bookings := make([]models.Booking, 0, len(docs))
	for _, doc := range docs {
		f := doc.Data
		startAt, _ := f.Time("startAt")
		bookings = append(bookings, models.Booking{
			ID:          doc.ID,
			ServiceID:   f.StringOr("", "serviceId"),
			ServiceName: f.StringOr("", "serviceName"),
			UID:         uid,
			Name:        f.StringOr("", "name"),
			Email:       f.StringOr("", "email"),
			Phone:       f.StringOr("", "phone"),
			Notes:       f.StringOr("", "notes"),
			StartAt:     startAt,
			Status:      models.BookingStatus(f.StringOr(string(models.BookingPending), "status")),
			CreatedAt:   f.TimePtr("createdAt"),
		})
	}
	return bookings, nil
}

// AddContactMessage stores a message; an empty UID is stored as anonymous.
func (r *Repository) AddContactMessage(ctx context.Context, msg models.ContactMessage) (string, error) {
	uid := strings.TrimSpace(msg.UID)
	if uid == "" {
		uid = models.AnonymousUID
	}
	id, err := r.store.Add(ctx, CollectionContacts, map[string]interface{}{
		"uid":       uid,
		"name":      msg.Name,
		"email":     msg.Email,
		"message":   msg.Message,
		"createdAt": docstore.ServerTimestamp,
	})
	if err != nil {
		return "", fmt.Errorf("add contact message: %w", err)
	}
	return id, nil
}

// User returns the profile document of uid.
func (r *Repository) User(ctx context.Context, uid string) (*models.Document, error) {
	doc, err := r.store.Get(ctx, CollectionUsers, uid)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", uid, err)
	}
	return &models.Document{ID: doc.ID, Data: doc.Data}, nil
}

// Dashboard loads contacts, consultations and bookings, newest first.
func (r *Repository) Dashboard(ctx context.Context) (*models.AdminDashboard, error) {
	newestFirst := docstore.Query{OrderBy: "createdAt", Desc: true}
	var contacts, consultations, bookings []docstore.Document

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		contacts, err = r.store.Query(gctx, CollectionContacts, newestFirst)
		return err
	})
	g.Go(func() (err error) {
		consultations, err = r.store.Query(gctx, CollectionConsultations, newestFirst)
		return err
	})
	g.Go(func() (err error) {
		bookings, err = r.store.Query(gctx, CollectionBookings, newestFirst)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	dash := &models.AdminDashboard{
		Contacts:      toDocuments(contacts),
		Consultations: toDocuments(consultations),
		Bookings:      make([]models.BookingView, 0, len(bookings)),
	}
	for _, doc := range bookings {
		dash.Bookings = append(dash.Bookings, bookingView(doc))
	}
	return dash, nil
}

func bookingView(doc docstore.Document) models.BookingView {
	f := doc.Data
	return models.BookingView{
		ID:          doc.ID,
		UserID:      f.StringOr("", "uid"),
		Name:        f.StringOr("", "name"),
		Email:       f.StringOr("", "email"),
		Phone:       f.StringOr("", "phone"),
		ServiceName: f.StringOr(models.UnknownServiceName, "serviceName", "serviceTitle", "service"),
		StartAt:     f.TimePtr("startAt"),
		CreatedAt:   f.TimePtr("createdAt"),
		Status:      f.StringOr("", "status"),
		Notes:       f.StringOr("", "notes"),
	}
}

func toDocuments(docs []docstore.Document) []models.Document {
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.Document{ID: d.ID, Data: d.Data})
	}
	return out
}

// UpdateBookingStatus sets the status of booking id.
func (r *Repository) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	err := r.store.Update(ctx, CollectionBookings, id, map[string]interface{}{
		"status":    string(status),
		"updatedAt": docstore.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("update booking %s: %w", id, err)
	}
	return nil
}

// DeleteBooking removes booking id.
func (r *Repository) DeleteBooking(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, CollectionBookings, id); err != nil {
		return fmt.Errorf("delete booking %s: %w", id, err)
	}
	return nil
}

// DeleteContact removes contact message id.
func (r *Repository) DeleteContact(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, CollectionContacts, id); err != nil {
		return fmt.Errorf("delete contact %s: %w", id, err)
	}
	return nil
}

// SuggestedStartAt is the default start offered on the booking form.
func SuggestedStartAt(now time.Time) time.Time {
	return now.Add(24 * time.Hour).Truncate(time.Hour)
}

// Ping checks that the store answers a query.
func (r *Repository) Ping(ctx context.Context) error {
	if _, err := r.store.Query(ctx, CollectionServices, docstore.Query{Limit: 1}); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}
