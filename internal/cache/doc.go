// Tmmbs - Small Business Site with Booking and Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tmmbs

/*
Package cache is a small thread-safe in-memory cache with a single TTL.

Entries expire lazily on Get. GetOrLoad coalesces concurrent loads of the
same key through singleflight, so a cold cache under load issues one
document store query instead of one per request:

	services := cache.New[[]models.Service]("catalog", time.Minute)
	list, err := services.GetOrLoad(ctx, "active", func(ctx context.Context) ([]models.Service, error) {
		return repo.queryActiveServices(ctx)
	})

Lookups are counted in metrics.CacheLookups under the cache name.
*/
package cache
