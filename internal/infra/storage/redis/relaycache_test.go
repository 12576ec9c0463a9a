package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabapcia/walletscope/internal/pkg/resilience/retry"
	"github.com/gabapcia/walletscope/internal/relay"
)

func newTestClient(t *testing.T) (*client, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	c, err := NewClient(t.Context(), srv.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, srv
}

func TestNewClient(t *testing.T) {
	t.Run("should connect with credentials and db", func(t *testing.T) {
		// Arrange
		srv := miniredis.RunT(t)
		srv.RequireUserAuth("relay", "secret")

		// Act
		c, err := NewClient(t.Context(), srv.Addr(), WithCredentials("relay", "secret"), WithDB(2))

		// Assert
		require.NoError(t, err)
		assert.NoError(t, c.Close())
	})

	t.Run("should fail after retries when the server is unreachable", func(t *testing.T) {
		// Arrange
		srv := miniredis.RunT(t)
		addr := srv.Addr()
		srv.Close()

		// Act
		_, err := NewClient(t.Context(), addr, WithRetry(retry.New(retry.WithAttempts(2), retry.WithDelay(time.Millisecond))))

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ping redis at "+addr)
	})
}

func TestClient_RelayCache(t *testing.T) {
	t.Run("should report a miss for unknown keys", func(t *testing.T) {
		// Arrange
		c, _ := newTestClient(t)

		// Act
		_, ok, err := c.Get(t.Context(), relay.CacheKey("https://lcd.osmosis.zone/x"))

		// Assert
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("should round trip an entry with ttl", func(t *testing.T) {
		// Arrange
		c, srv := newTestClient(t)
		key := relay.CacheKey("https://lcd.osmosis.zone/x")
		entry := relay.Entry{ContentType: "application/json", Body: []byte(`{"ok":true}`)}

		// Act
		require.NoError(t, c.Set(t.Context(), key, entry, 30*time.Second))
		got, ok, err := c.Get(t.Context(), key)

		// Assert
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, entry, got)
		assert.Equal(t, 30*time.Second, srv.TTL(key))
	})

	t.Run("should expire entries", func(t *testing.T) {
		// Arrange
		c, srv := newTestClient(t)
		key := relay.CacheKey("https://lcd.osmosis.zone/y")
		require.NoError(t, c.Set(t.Context(), key, relay.Entry{Body: []byte(`{}`)}, time.Second))

		// Act
		srv.FastForward(2 * time.Second)
		_, ok, err := c.Get(t.Context(), key)

		// Assert
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("should fail on a corrupted entry", func(t *testing.T) {
		// Arrange
		c, srv := newTestClient(t)
		key := relay.CacheKey("https://lcd.osmosis.zone/z")
		require.NoError(t, srv.Set(key, "not json"))

		// Act
		_, ok, err := c.Get(t.Context(), key)

		// Assert
		require.Error(t, err)
		assert.False(t, ok)
	})

	t.Run("should surface connection errors", func(t *testing.T) {
		// Arrange
		c, srv := newTestClient(t)
		srv.Close()

		// Act
		_, _, getErr := c.Get(t.Context(), "k")
		setErr := c.Set(t.Context(), "k", relay.Entry{}, time.Second)

		// Assert
		assert.Error(t, getErr)
		assert.Error(t, setErr)
	})
}
