package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
//
// Get reports a miss as (nil, false, nil). A non-nil error means the backend
// itself failed; callers treat that as a miss and carry on.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs. Results depend only on input content, so they can live long.
const (
	TTLResult = 30 * 24 * time.Hour
	TTLCheck  = 30 * 24 * time.Hour
)
