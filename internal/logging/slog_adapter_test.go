// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSlogHandlerWritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(NewTestLogger(&buf)))

	logger.Warn("service restarted",
		slog.String("service", "http-server"),
		slog.Int("attempt", 2),
		slog.Duration("backoff", time.Second),
	)

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"service":"http-server"`, `"attempt":2`, "service restarted"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output: %s", want, out)
		}
	}
}

func TestSlogHandlerGroupsAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(NewTestLogger(&buf))).
		With("tree", "root").
		WithGroup("event")

	logger.Info("x", slog.Group("svc", slog.String("name", "gc")))

	out := buf.String()
	if !strings.Contains(out, `"event.tree":"root"`) && !strings.Contains(out, `"tree":"root"`) {
		t.Errorf("expected tree attribute: %s", out)
	}
	if !strings.Contains(out, `"event.svc.name":"gc"`) {
		t.Errorf("expected nested group key: %s", out)
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()

	if slogToZerologLevel(slog.LevelError).String() != "error" {
		t.Error("error level mismatch")
	}
	if slogToZerologLevel(slog.LevelDebug).String() != "debug" {
		t.Error("debug level mismatch")
	}
	if slogToZerologLevel(slog.LevelWarn).String() != "warn" {
		t.Error("warn level mismatch")
	}
}
