package util

import (
	"context"
	"fmt"
	"time"
)

// retryBaseDelay is the wait before the second attempt. Each further
// attempt doubles it.
const retryBaseDelay = 500 * time.Millisecond

// RetryWithBackoff runs fn up to maxRetries+1 times, doubling the wait
// between attempts. The attempt index passed to fn starts at zero. A
// cancelled context stops the loop between attempts; the context error
// is returned instead of the last attempt's error.
func RetryWithBackoff(ctx context.Context, maxRetries int, fn func(attempt int) error) error {
	for attempt := 0; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		if attempt == maxRetries {
			return fmt.Errorf("gave up after %d attempts: %w", attempt+1, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBaseDelay << attempt):
		}
	}
}
