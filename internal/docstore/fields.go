// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package docstore

import (
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Fields is the data of a document. The readers accept the value types
// either backend produces and take fallback keys, returning the first key
// that holds a usable value.
//
//	name := doc.Data.StringOr(models.UntitledService, "name", "title")
type Fields map[string]interface{}

// String returns the first non-blank string among keys.
func (f Fields) String(keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := f[k].(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

// StringOr is String with a default.
func (f Fields) StringOr(fallback string, keys ...string) string {
	if s, ok := f.String(keys...); ok {
		return s
	}
	return fallback
}

// Float returns the first numeric value among keys.
func (f Fields) Float(keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := toFloat(f[k]); ok {
			return v, true
		}
	}
	return 0, false
}

// Int returns the first numeric value among keys, truncated.
func (f Fields) Int(keys ...string) (int64, bool) {
	v, ok := f.Float(keys...)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return int64(v), true
}

// Bool returns the first boolean among keys.
func (f Fields) Bool(keys ...string) (bool, bool) {
	for _, k := range keys {
		if b, ok := f[k].(bool); ok {
			return b, true
		}
	}
	return false, false
}

// Time returns the first timestamp among keys. RFC 3339 strings are
// accepted for documents written by other clients.
func (f Fields) Time(keys ...string) (time.Time, bool) {
	for _, k := range keys {
		if t, ok := toTime(f[k]); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// TimePtr is Time returning nil when absent.
func (f Fields) TimePtr(keys ...string) *time.Time {
	if t, ok := f.Time(keys...); ok {
		return &t
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func toTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), !t.IsZero()
	case *time.Time:
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return t.UTC(), true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(t))
		if err != nil {
			return time.Time{}, false
		}
		return parsed.UTC(), true
	default:
		return time.Time{}, false
	}
}
