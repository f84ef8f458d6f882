package connection

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Retry runs op up to maxAttempts times, waiting interval × attemptNumber
// between attempts (linear backoff). Every non-final failure is logged at
// warn level with the attempt number; once attempts are exhausted the last
// error is returned unchanged. The helper is stateless and reentrant.
func Retry(ctx context.Context, logger *zap.Logger, maxAttempts int, interval time.Duration, op func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if lastErr = op(ctx); lastErr == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}

		delay := time.Duration(attempt) * interval
		logger.Warn("operation failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("delay", delay),
			zap.Error(lastErr))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
