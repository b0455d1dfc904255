// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

/*
Package api is the HTTP surface of the site: a chi router carrying the
global middleware stack, the sign-in routes from package auth, and the JSON
API under /api/v1.

Global middleware, in order:

  - middleware.RequestID: X-Request-ID and logging context
  - chi RealIP, chi Recoverer
  - go-chi/cors
  - middleware.PrometheusMetrics
  - auth.Middleware.Authenticate: installs the Principal

Route groups add go-chi/httprate limits and, where needed, an auth.Gate.
Every /api/v1 response uses the models.APIResponse envelope:

	{"status":"success","data":[...],"metadata":{"timestamp":"...","count":3}}
	{"status":"error","data":null,"error":{"code":"NOT_FOUND","message":"..."}}
*/
package api
