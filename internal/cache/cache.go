// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"time"
)

// Store is the persistence contract for cached entries. The SQLite store
// implements it for real; NullStore implements it as a transparent miss so
// callers never branch on whether caching is on.
//
// No method returns an error. Anything that goes wrong underneath is logged
// and degraded to a miss or a no-op, because a broken cache must read as a
// cold cache, not a broken command.
type Store interface {
	// Get returns the stored value and true on a live hit.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key for ttl. A ttl <= 0 falls back to the
	// store's default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Delete removes a single entry, reporting whether one was removed.
	Delete(ctx context.Context, key string) bool

	// Clear removes every entry.
	Clear(ctx context.Context) bool

	// ExpireMatching removes all entries whose key starts with prefix and
	// returns how many went. An empty prefix sweeps only entries that are
	// already past their TTL, returning that count instead.
	ExpireMatching(ctx context.Context, prefix string) int

	// Vacuum sweeps expired entries and compacts the file on disk.
	Vacuum(ctx context.Context) bool

	// Stats reports counters and storage totals for the store.
	Stats(ctx context.Context) Summary

	// Close releases the underlying storage.
	Close() error
}

// Summary is a point-in-time snapshot of cache health, shaped for the
// cache stats command.
type Summary struct {
	ID         string  `jsonapi:"primary,cache-stats" json:"-"`
	Enabled    bool    `jsonapi:"attr,enabled" json:"enabled"`
	Service    string  `jsonapi:"attr,service,omitempty" json:"service,omitempty"`
	Hits       int64   `jsonapi:"attr,hits" json:"hits"`
	Misses     int64   `jsonapi:"attr,misses" json:"misses"`
	Sets       int64   `jsonapi:"attr,sets" json:"sets"`
	Evictions  int64   `jsonapi:"attr,evictions" json:"evictions"`
	HitRate    float64 `jsonapi:"attr,hit_rate_percent" json:"hit_rate_percent"`
	TotalItems int64   `jsonapi:"attr,total_items" json:"total_items"`
	SizeOnDisk int64   `jsonapi:"attr,size_on_disk" json:"size_on_disk"`
	Location   string  `jsonapi:"attr,location" json:"location"`
}
