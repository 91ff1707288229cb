package cache

import (
	"context"
	"time"
)

// Cache is a JSON key/value cache. Used for aggregate stats that are
// expensive to recompute per request.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
