package relay

import (
	"context"
	"time"
)

// Entry is a cached upstream response.
type Entry struct {
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// Cache stores successful GET responses keyed by target URL.
type Cache interface {
	// Get returns the entry for key. The bool is false on a miss.
	Get(ctx context.Context, key string) (Entry, bool, error)

	// Set stores entry under key for ttl.
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
}

// CacheKey namespaces a target URL.
func CacheKey(target string) string {
	return "relay:response:" + target
}
