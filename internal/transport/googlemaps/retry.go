package googlemaps

import (
	"context"
	"time"
)

// retryConfig defines the backoff schedule for transient provider failures.
// Only the nearby-search and text-search calls are retried; geocode and
// find-place run once, matching the upstream asymmetry.
type retryConfig struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

var searchRetry = retryConfig{
	maxAttempts: 3,
	baseDelay:   500 * time.Millisecond,
	maxDelay:    2 * time.Second,
}

// backoff returns the delay before the given retry attempt (attempt 1 is the
// first retry): baseDelay doubled per attempt, capped at maxDelay.
func (rc retryConfig) backoff(attempt int) time.Duration {
	d := rc.baseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= rc.maxDelay {
			return rc.maxDelay
		}
	}
	if d > rc.maxDelay {
		return rc.maxDelay
	}
	return d
}

// sleep waits for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
