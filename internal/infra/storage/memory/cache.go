// Package memory keeps relay responses in process memory.
package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/gabapcia/walletscope/internal/relay"
)

// DefaultCleanupInterval is how often expired entries are purged.
const DefaultCleanupInterval = time.Minute

type cache struct {
	store *gocache.Cache
}

var _ relay.Cache = (*cache)(nil)

// New returns an in-memory relay cache.
func New(cleanupInterval time.Duration) *cache {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}

	return &cache{store: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (c *cache) Get(_ context.Context, key string) (relay.Entry, bool, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return relay.Entry{}, false, nil
	}

	entry, ok := v.(relay.Entry)
	return entry, ok, nil
}

func (c *cache) Set(_ context.Context, key string, entry relay.Entry, ttl time.Duration) error {
	c.store.Set(key, entry, ttl)
	return nil
}
