// Package redis stores relay responses in Redis so that several relay
// instances can share one cache.
package redis

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/gabapcia/walletscope/internal/pkg/logger"
	"github.com/gabapcia/walletscope/internal/pkg/resilience/retry"
)

type config struct {
	username string
	password string
	db       int
	retry    retry.Retry
}

// Option configures the Redis client.
type Option func(*config)

// WithCredentials sets the ACL username and password.
func WithCredentials(username, password string) Option {
	return func(c *config) {
		c.username = username
		c.password = password
	}
}

// WithDB selects the logical database.
func WithDB(db int) Option {
	return func(c *config) {
		c.db = db
	}
}

// WithRetry overrides how the startup ping is retried.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

type client struct {
	conn *redis.Client
}

func (c *client) Close() error {
	return c.conn.Close()
}

// NewClient connects to addr and pings it, retrying while the server comes
// up.
func NewClient(ctx context.Context, addr string, opts ...Option) (*client, error) {
	cfg := config{
		retry: retry.New(
			retry.WithAttempts(5),
			retry.WithDelay(200*time.Millisecond),
			retry.WithMaxDelay(2*time.Second),
			retry.WithLastErrorOnly(true),
			retry.WithOnRetry(func(attempt uint, err error) {
				logger.Warn(ctx, "redis ping failed", "addr", addr, "attempt", attempt, "error", err)
			}),
		),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})

	if err := cfg.retry.Execute(ctx, func() error { return conn.Ping(ctx).Err() }); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	return &client{
		conn: conn,
	}, nil
}
