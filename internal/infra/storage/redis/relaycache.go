package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gabapcia/walletscope/internal/relay"
)

// Get loads a cached relay response. A missing key is a miss, not an error.
func (c *client) Get(ctx context.Context, key string) (relay.Entry, bool, error) {
	raw, err := c.conn.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return relay.Entry{}, false, nil
		}

		return relay.Entry{}, false, err
	}

	var entry relay.Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return relay.Entry{}, false, fmt.Errorf("decode cached entry %s: %w", key, err)
	}

	return entry, true, nil
}

// Set stores a relay response under key for ttl.
func (c *client) Set(ctx context.Context, key string, entry relay.Entry, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}

	return c.conn.Set(ctx, key, raw, ttl).Err()
}

var _ relay.Cache = (*client)(nil)
