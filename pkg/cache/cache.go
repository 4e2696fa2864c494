// Package cache stores derived results of search-tree processing.
//
// Loading a large search log, comparing two trees and grouping subtrees are
// all expensive and fully determined by their inputs, so the pipeline keys
// each result by a content hash of the log plus the options that shaped it.
//
// Three backends implement [Cache]:
//   - [FileCache] keeps entries as JSON files under a directory (CLI default)
//   - [RedisCache] shares entries between machines through a Redis server
//   - [NullCache] stores nothing (--no-cache)
//
// [Instrument] wraps any backend so hits, misses and writes reach the
// observability cache hooks.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
