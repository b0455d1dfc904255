// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/services", "200"))

	RecordAPIRequest("GET", "/api/v1/services", "200", 12*time.Millisecond)
	RecordAPIRequest("GET", "/api/v1/services", "200", 8*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/services", "200"))
	if after-before != 2 {
		t.Errorf("expected 2 requests recorded, got %v", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != start+2 {
		t.Errorf("active = %v, want %v", got, start+2)
	}

	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != start {
		t.Errorf("active = %v, want %v", got, start)
	}
}

func TestRecordStoreOperation(t *testing.T) {
	errs := StoreOperationErrors.WithLabelValues("badger", "get", "bookings")
	before := testutil.ToFloat64(errs)

	RecordStoreOperation("badger", "get", "bookings", time.Millisecond, nil)
	if got := testutil.ToFloat64(errs); got != before {
		t.Errorf("successful call must not count as error: %v", got)
	}

	RecordStoreOperation("badger", "get", "bookings", time.Millisecond, errors.New("disk full"))
	if got := testutil.ToFloat64(errs); got != before+1 {
		t.Errorf("errors = %v, want %v", got, before+1)
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.0.0", "go1.24", time.Now().Add(-time.Minute))

	if got := testutil.ToFloat64(AppInfo.WithLabelValues("1.0.0", "go1.24")); got != 1 {
		t.Errorf("app_info = %v, want 1", got)
	}
	if got := testutil.ToFloat64(AppUptime); got < 59 {
		t.Errorf("uptime = %v, want >= 59", got)
	}
}
