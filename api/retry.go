package api

import (
	"context"
	"errors"
	"net/http"
	"time"
)

type retryConfig struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
}

func defaultRetryConfig() retryConfig {
	return retryConfig{
		maxAttempts:  3,
		initialDelay: 100 * time.Millisecond,
		maxDelay:     5 * time.Second,
		multiplier:   2.0,
	}
}

// withRetry executes fn with exponential backoff. Only transport failures
// (ConnectError) are retried; anything else, context cancellation included,
// fails immediately.
func withRetry(ctx context.Context, cfg retryConfig, fn func() error) error {
	var lastErr error
	delay := cfg.initialDelay

	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		var connectErr *ConnectError
		if !errors.As(err, &connectErr) {
			return err
		}

		if attempt == cfg.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * cfg.multiplier)
		if delay > cfg.maxDelay {
			delay = cfg.maxDelay
		}
	}

	return lastErr
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		statusCode >= 500
}
