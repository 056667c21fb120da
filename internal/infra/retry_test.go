package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errDup = errors.New("duplicate")

func isDup(err error) bool { return errors.Is(err, errDup) }

func noBackoff(t *testing.T) {
	t.Helper()
	prev := RetryBackoff
	RetryBackoff = func(int) time.Duration { return 0 }
	t.Cleanup(func() { RetryBackoff = prev })
}

func TestWithRetries_SuccessFirstAttempt(t *testing.T) {
	calls := 0
	err := WithRetries(context.Background(), func(int) error { calls++; return nil }, 3, isDup)
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetries_NonRetryableStopsImmediately(t *testing.T) {
	other := errors.New("storage down")
	calls := 0
	err := WithRetries(context.Background(), func(int) error { calls++; return other }, 3, isDup)
	assert.ErrorIs(t, err, other)
	assert.Equal(t, 1, calls)
}

func TestWithRetries_RecoversAfterDuplicates(t *testing.T) {
	noBackoff(t)
	var attempts []int
	err := WithRetries(context.Background(), func(a int) error {
		attempts = append(attempts, a)
		if a < 2 {
			return errDup
		}
		return nil
	}, 3, isDup)
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, attempts)
}

func TestWithRetries_ExhaustsRetries(t *testing.T) {
	noBackoff(t)
	calls := 0
	err := WithRetries(context.Background(), func(int) error { calls++; return errDup }, 2, isDup)
	assert.ErrorIs(t, err, errDup)
	assert.Equal(t, 3, calls)
}

func TestWithRetries_CancelledContextStopsWaiting(t *testing.T) {
	prev := RetryBackoff
	RetryBackoff = func(int) time.Duration { return time.Hour }
	t.Cleanup(func() { RetryBackoff = prev })

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	start := time.Now()
	err := WithRetries(ctx, func(int) error {
		calls++
		cancel()
		return errDup
	}, 3, isDup)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, errDup)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Minute)
}
