// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package services

import (
	"context"
	"time"

	"github.com/tomtom215/tmmbs/internal/logging"
	"github.com/tomtom215/tmmbs/internal/metrics"
)

// DefaultGCDiscardRatio is the badger value log discard ratio.
const DefaultGCDiscardRatio = 0.5

// GCRunner is implemented by *docstore.BadgerStore.
type GCRunner interface {
	RunGC(discardRatio float64) error
}

// StoreGCService runs value log GC every interval. GC errors are logged
// and retried on the next tick rather than restarting the service.
type StoreGCService struct {
	store        GCRunner
	interval     time.Duration
	discardRatio float64
}

// NewStoreGCService returns a GC loop. A non-positive interval means 10m.
func NewStoreGCService(store GCRunner, interval time.Duration) *StoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StoreGCService{
		store:        store,
		interval:     interval,
		discardRatio: DefaultGCDiscardRatio,
	}
}

// Serve implements suture.Service.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.store.RunGC(s.discardRatio); err != nil {
				metrics.StoreGCRuns.WithLabelValues("error").Inc()
				logging.Warn().Err(err).Msg("Store value log GC failed")
				continue
			}
			metrics.StoreGCRuns.WithLabelValues("ok").Inc()
			logging.Debug().Dur("took", time.Since(start)).Msg("Store value log GC complete")
		}
	}
}

// String names the service in supervisor events.
func (s *StoreGCService) String() string {
	return "store-gc"
}
