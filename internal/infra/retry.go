package infra

import (
	"context"
	"fmt"
	"time"
)

// Operation is one attempt of a retryable unit of work.
type Operation func(attempt int) error

// RetryBackoff is the pause before retry n (1-based). Tests can shorten it.
var RetryBackoff = func(n int) time.Duration {
	return time.Duration(50*n) * time.Millisecond
}

// WithRetries runs op once and then up to maxRetries more times while
// isRetryable(err) holds. Any other error is returned immediately. The last
// error is returned when every attempt fails. Cancelling ctx stops the wait
// between attempts and returns ctx.Err().
func WithRetries(ctx context.Context, op Operation, maxRetries int, isRetryable func(error) bool) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = op(attempt)
		if err == nil {
			return nil
		}
		if attempt == maxRetries || !isRetryable(err) {
			return err
		}

		timer := time.NewTimer(RetryBackoff(attempt + 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry stopped after %d attempts: %w", attempt+1, ctx.Err())
		case <-timer.C:
		}
	}
	return err
}
