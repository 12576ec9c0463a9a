package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fast(opts ...Option) Retry {
	return New(append([]Option{WithDelay(time.Millisecond), WithMaxDelay(2 * time.Millisecond)}, opts...)...)
}

func TestRetry_Execute(t *testing.T) {
	t.Run("succeeds on the first attempt", func(t *testing.T) {
		calls := 0

		err := fast().Execute(t.Context(), func() error {
			calls++
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0

		err := fast(WithAttempts(3)).Execute(t.Context(), func() error {
			calls++
			if calls < 2 {
				return errors.New("connection refused")
			}
			return nil
		})

		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("returns the last error when attempts are exhausted", func(t *testing.T) {
		calls := 0
		expected := errors.New("redis unavailable")

		err := fast(WithAttempts(3)).Execute(t.Context(), func() error {
			calls++
			return expected
		})

		assert.ErrorIs(t, err, expected)
		assert.Equal(t, 3, calls)
	})

	t.Run("combines all errors when last error only is disabled", func(t *testing.T) {
		first := errors.New("first")
		second := errors.New("second")
		calls := 0

		err := fast(WithAttempts(2), WithLastErrorOnly(false)).Execute(t.Context(), func() error {
			calls++
			if calls == 1 {
				return first
			}
			return second
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, first)
		assert.ErrorIs(t, err, second)
	})

	t.Run("stops on errors that are not retryable", func(t *testing.T) {
		retryable := errors.New("rate limited")
		fatal := errors.New("bad request")
		calls := 0

		err := fast(
			WithAttempts(5),
			WithRetryIf(func(err error) bool { return errors.Is(err, retryable) }),
		).Execute(t.Context(), func() error {
			calls++
			if calls == 1 {
				return retryable
			}
			return fatal
		})

		assert.ErrorIs(t, err, fatal)
		assert.Equal(t, 2, calls)
	})

	t.Run("reports each failed attempt", func(t *testing.T) {
		var attempts []uint

		_ = fast(
			WithAttempts(3),
			WithOnRetry(func(n uint, _ error) { attempts = append(attempts, n) }),
		).Execute(t.Context(), func() error {
			return errors.New("nope")
		})

		assert.Equal(t, []uint{0, 1, 2}, attempts)
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		calls := 0

		err := New(WithAttempts(5), WithDelay(50*time.Millisecond)).Execute(ctx, func() error {
			calls++
			cancel()
			return errors.New("temporary")
		})

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}
