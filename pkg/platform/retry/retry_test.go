package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func countingSleep(slept *[]time.Duration) Option {
	return withSleep(func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	})
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	var slept []time.Duration
	policy := New(countingSleep(&slept))

	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestDo_RetriesWithFixedDelay(t *testing.T) {
	var slept []time.Duration
	policy := New(countingSleep(&slept))

	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{DefaultDelay, DefaultDelay}, slept)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	var slept []time.Duration
	policy := New(countingSleep(&slept))

	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	})

	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, DefaultMaxAttempts, calls)
	// No sleep after the final attempt.
	assert.Len(t, slept, DefaultMaxAttempts-1)
}

func TestDo_NonRetryableReturnsImmediately(t *testing.T) {
	var slept []time.Duration
	policy := New(
		countingSleep(&slept),
		WithRetryable(func(err error) bool { return !errors.Is(err, errBoom) }),
	)

	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	})

	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestDo_CancelledContextStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := New(withSleep(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	calls := 0
	err := policy.Do(ctx, func(context.Context) error {
		calls++
		return errBoom
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_CancelledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	policy := New(WithDelay(0))
	calls := 0
	err := policy.Do(ctx, func(context.Context) error {
		calls++
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestDo_AttemptBoundOverride(t *testing.T) {
	policy := New(WithMaxAttempts(2), WithDelay(0))

	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		return errBoom
	})

	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, calls)
}
