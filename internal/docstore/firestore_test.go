// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package docstore

import (
	"errors"
	"fmt"
	"testing"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestTranslate(t *testing.T) {
	t.Parallel()
	if translate(nil) != nil {
		t.Error("translate(nil) should be nil")
	}
	notFound := status.Error(codes.NotFound, "no document")
	if err := translate(fmt.Errorf("get: %w", notFound)); !errors.Is(err, ErrNotFound) {
		t.Errorf("NotFound not mapped: %v", err)
	}
	other := status.Error(codes.Unavailable, "try later")
	if err := translate(other); errors.Is(err, ErrNotFound) || err != other {
		t.Errorf("Unavailable should pass through, got %v", err)
	}
}

func TestToFirestoreResolvesServerTimestamp(t *testing.T) {
	t.Parallel()
	out := toFirestore(map[string]interface{}{"createdAt": ServerTimestamp, "name": "x"})
	if out["createdAt"] != firestore.ServerTimestamp {
		t.Errorf("createdAt = %v, want firestore.ServerTimestamp", out["createdAt"])
	}
	if out["name"] != "x" {
		t.Errorf("name = %v", out["name"])
	}
}
