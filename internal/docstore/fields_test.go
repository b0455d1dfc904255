// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package docstore

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestFieldsFallbacks(t *testing.T) {
	t.Parallel()
	ts := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	f := Fields{
		"name":         "   ",
		"title":        "Haircut",
		"price":        int64(25),
		"durationMins": json.Number("45"),
		"active":       false,
		"createdAt":    ts.Format(time.RFC3339),
		"startAt":      ts,
		"bogus":        map[string]interface{}{},
	}

	if got := f.StringOr("(Untitled)", "name", "title"); got != "Haircut" {
		t.Errorf("StringOr = %q, blank name should fall through to title", got)
	}
	if got := f.StringOr("(Untitled)", "missing"); got != "(Untitled)" {
		t.Errorf("StringOr default = %q", got)
	}
	if p, ok := f.Float("price"); !ok || p != 25 {
		t.Errorf("Float(price) = %v, %v", p, ok)
	}
	if d, ok := f.Int("durationMins"); !ok || d != 45 {
		t.Errorf("Int(durationMins) = %v, %v", d, ok)
	}
	if _, ok := f.Int("bogus"); ok {
		t.Error("Int(bogus) should fail")
	}
	if b, ok := f.Bool("active"); !ok || b {
		t.Errorf("Bool(active) = %v, %v", b, ok)
	}
	if _, ok := f.Bool("missing"); ok {
		t.Error("Bool(missing) should be absent")
	}
	if got, ok := f.Time("createdAt"); !ok || !got.Equal(ts) {
		t.Errorf("Time(createdAt string) = %v, %v", got, ok)
	}
	if got := f.TimePtr("nope", "startAt"); got == nil || !got.Equal(ts) {
		t.Errorf("TimePtr fallback = %v", got)
	}
	if f.TimePtr("missing") != nil {
		t.Error("TimePtr(missing) should be nil")
	}
}

func TestCompareValues(t *testing.T) {
	t.Parallel()
	now := time.Now()
	tests := []struct {
		name string
		a, b interface{}
		want int
		ok   bool
	}{
		{"ints and floats", int64(2), 2.0, 0, true},
		{"less", 1, 2.5, -1, true},
		{"strings", "b", "a", 1, true},
		{"times", now, now.Add(time.Second), -1, true},
		{"bools", false, true, -1, true},
		{"nil", nil, nil, 0, true},
		{"mixed", "1", 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := compareValues(tt.a, tt.b)
			if got != tt.want || ok != tt.ok {
				t.Errorf("compareValues(%v, %v) = %d, %v; want %d, %v", tt.a, tt.b, got, ok, tt.want, tt.ok)
			}
		})
	}
}
