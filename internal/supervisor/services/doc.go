// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

/*
Package services adapts server components to suture's Serve(ctx) error
lifecycle.

HTTPServerService wraps an *http.Server: ListenAndServe runs in a goroutine
and context cancellation triggers Shutdown with a bounded timeout.

StoreGCService periodically reclaims badger value log space through the
document store's RunGC.
*/
package services
