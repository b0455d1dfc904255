// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/tmmbs/internal/auth"
	"github.com/tomtom215/tmmbs/internal/middleware"
)

// Router wires handlers, auth and middleware into a chi mux.
type Router struct {
	handler       *Handler
	authHandlers  *auth.Handlers
	authn         *auth.Middleware
	gate          *auth.Gate
	csrf          *auth.CSRFMiddleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. Nil gate, csrf and chiMiddleware use the
// defaults.
func NewRouter(handler *Handler, authHandlers *auth.Handlers, authn *auth.Middleware, gate *auth.Gate, csrf *auth.CSRFMiddleware, chiMiddleware *ChiMiddleware) *Router {
	if chiMiddleware == nil {
		chiMiddleware = NewChiMiddleware(nil)
	}
	if gate == nil {
		gate = auth.NewGate(auth.DefaultSignInPath)
	}
	if csrf == nil {
		csrf = auth.NewCSRFMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		authHandlers:  authHandlers,
		authn:         authn,
		gate:          gate,
		csrf:          csrf,
		chiMiddleware: chiMiddleware,
	}
}

// Setup returns the configured router as an http.Handler.
func (router *Router) Setup() http.Handler {
	return router.SetupChi()
}

// SetupChi builds the chi mux.
func (router *Router) SetupChi() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.authn.Authenticate)

	router.registerAuthRoutes(r)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitHealth())
			r.Get("/health/live", router.handler.HealthLive)
			r.Get("/health/ready", router.handler.HealthReady)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(APISecurityHeaders())
			r.Use(router.csrf.Protect)

			router.registerSiteRoutes(r)
			router.registerBookingRoutes(r)
			router.registerAdminRoutes(r)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (router *Router) registerAuthRoutes(r chi.Router) {
	h := router.authHandlers

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitSignIn())
		r.Post("/auth/session", h.SignIn)
		r.Post("/auth/set-token", h.SignIn)
	})

	r.With(router.csrf.Protect).Post("/auth/logout", h.SignOut)
	r.Get("/auth/csrf", router.csrf.Token)
	r.Get("/Auth/Logout", h.SignOutRedirect)
	r.Get("/Auth/SignIn", h.SignInPage)
	r.Get("/Auth/SignUp", h.SignUpPage)
	r.Get("/auth/me", h.Me)
	r.Get("/firebaseConfig.js", h.FirebaseConfigJS)
}

func (router *Router) registerSiteRoutes(r chi.Router) {
	h := router.handler
	r.Get("/services", h.Services)
	r.Get("/services/{id}", h.ServiceByID)
	r.Get("/media", h.Media)
	r.With(router.chiMiddleware.RateLimitWrite()).Post("/contact", h.Contact)
}

func (router *Router) registerBookingRoutes(r chi.Router) {
	h := router.handler
	r.Route("/bookings", func(r chi.Router) {
		r.Use(router.gate.RequireAuthenticated())
		r.Get("/", h.BookingForm)
		r.With(router.chiMiddleware.RateLimitWrite()).Post("/", h.CreateBooking)
		r.Get("/mine", h.MyBookings)
	})
	r.With(router.gate.RequireAuthenticated()).Get("/profile", h.Profile)
}

func (router *Router) registerAdminRoutes(r chi.Router) {
	h := router.handler
	r.Route("/admin", func(r chi.Router) {
		r.Use(router.gate.RequireRole(auth.RoleAdmin))
		r.Get("/dashboard", h.AdminDashboard)
		r.Post("/bookings/{id}/status", h.UpdateBookingStatus)
		r.Delete("/bookings/{id}", h.DeleteBooking)
		r.Delete("/contacts/{id}", h.DeleteContact)
	})
}
