// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestBookingStatusValid(t *testing.T) {
	for _, s := range []BookingStatus{BookingPending, BookingConfirmed, BookingCancelled} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []BookingStatus{"", "Pending", "done"} {
		if s.Valid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestAPIResponseOmitsEmptyError(t *testing.T) {
	resp := APIResponse{Status: "success", Data: []Service{}, Metadata: Metadata{Timestamp: time.Unix(0, 0).UTC()}}
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), `"error"`) {
		t.Errorf("success response should omit error: %s", b)
	}
}
