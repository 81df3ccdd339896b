package cache

import (
	"context"
	"time"
)

// Store is the key-value cache in front of the store of record. Every
// entry carries a TTL. Implementations must be safe to call when the
// backend is unreachable: a failed read is a miss, a failed write or
// invalidation is logged by the caller and swallowed - cache trouble
// never fails the authoritative write.
type Store interface {
	// Get returns (value, true, nil) on a hit and (nil, false, nil) on
	// a miss. An error means the backend failed; callers treat that as
	// a miss too.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeleteByPrefix removes every key in a list/aggregate family
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// NoopStore is the null object used when no cache backend is
// configured. Reads always miss and writes succeed silently, so the
// caller degrades to direct-store reads without branching.
type NoopStore struct{}

// NewNoopStore creates a no-op cache store
func NewNoopStore() *NoopStore {
	return &NoopStore{}
}

// Get always misses
func (NoopStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set is a no-op
func (NoopStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

// Delete is a no-op
func (NoopStore) Delete(ctx context.Context, keys ...string) error {
	return nil
}

// DeleteByPrefix is a no-op
func (NoopStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	return nil
}

var _ Store = (*NoopStore)(nil)
