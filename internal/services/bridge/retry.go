// File: internal/services/bridge/retry.go
package bridge

import (
	"context"
	"time"
)

// RetryConfig defines fixed-delay retry behavior
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

// Retry calls fn until it succeeds or MaxAttempts is reached, sleeping Delay
// between attempts. It returns the last error.
func Retry(ctx context.Context, config *RetryConfig, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		// Don't wait after last attempt
		if attempt < config.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(config.Delay):
			}
		}
	}

	return lastErr
}
