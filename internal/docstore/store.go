// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

// Package docstore is a small key-document store with two backends:
// Firestore in production and BadgerDB for local development and tests.
// Both backends present the same semantics to callers.
package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/tmmbs/internal/metrics"
)

// Backend names.
const (
	BackendBadger    = "badger"
	BackendFirestore = "firestore"
)

var (
	// ErrNotFound is returned by Get and Update for a missing document.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned for an empty id or one containing '/'.
	ErrInvalidID = errors.New("invalid document id")
	// ErrUnsupportedOperator is returned for an unknown filter operator.
	ErrUnsupportedOperator = errors.New("unsupported filter operator")
)

type serverTimestamp struct{}

// ServerTimestamp, used as a top-level field value in Add or Set, is
// replaced with the time of the write.
var ServerTimestamp = serverTimestamp{}

// Document is a stored document.
type Document struct {
	ID   string
	Data Fields
}

// Filter is a single where clause. Op is one of ==, !=, <, <=, >, >=.
type Filter struct {
	Field string
	Op    string
	Value interface{}
}

// Where builds a Filter.
func Where(field, op string, value interface{}) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Query selects documents from one collection. Documents lacking the
// OrderBy field are left out of the result.
type Query struct {
	Where   []Filter
	OrderBy string
	Desc    bool
	// Limit of zero means no limit.
	Limit int
}

// Store is implemented by BadgerStore and FirestoreStore.
type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Add(ctx context.Context, collection string, data map[string]interface{}) (string, error)
	Set(ctx context.Context, collection, id string, data map[string]interface{}) error
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	Close() error
}

func validOperator(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

// observe records one store operation. A miss is not an error.
func observe(backend, op, collection string, start time.Time, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	metrics.RecordStoreOperation(backend, op, collection, time.Since(start), err)
}
