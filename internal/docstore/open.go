// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

package docstore

import (
	"context"
	"fmt"

	"google.golang.org/api/option"

	"github.com/tomtom215/tmmbs/internal/config"
)

// Open returns the Store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StoreConfig, projectID string, opts ...option.ClientOption) (Store, error) {
	switch cfg.Backend {
	case BackendFirestore:
		return OpenFirestore(ctx, projectID, cfg.DatabaseID, opts...)
	case BackendBadger, "":
		return OpenBadger(BadgerConfig{Path: cfg.Path, InMemory: cfg.InMemory})
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
