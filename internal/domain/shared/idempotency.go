package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed delivery ids (e.g. webhook event ids)
type IdempotencyStore interface {
	// MarkProcessed marks an id as processed with a TTL
	// Returns true if the id was newly marked, false if it was already processed
	MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error)

	// IsProcessed checks if an id has already been processed
	IsProcessed(ctx context.Context, id string) (bool, error)

	// Release forgets an id so a later delivery is processed again
	Release(ctx context.Context, id string) error

	// Close closes the store and releases resources
	Close() error
}

// DefaultIdempotencyTTL is how long a processed delivery id is remembered
const DefaultIdempotencyTTL = 24 * time.Hour
