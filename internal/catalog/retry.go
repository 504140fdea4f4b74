package catalog

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"time"
)

// permanentError marks failures that must not be retried (4xx responses).
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// retryWithBackoff retries fn with exponential backoff and jitter.
// Stops immediately on a permanentError.
//
// maxRetries: number of retry attempts (0 = single try)
// initialDelay: delay before the first retry
//
// Backoff formula: delay = initialDelay * 2^attempt ± 25% jitter
func retryWithBackoff(ctx context.Context, maxRetries int, initialDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var permErr *permanentError
		if errors.As(err, &permErr) {
			return permErr.Unwrap()
		}

		if attempt == maxRetries {
			break
		}

		delay := time.Duration(float64(initialDelay) * math.Pow(2, float64(attempt)))

		// Add jitter (±25%)
		halfDelay := int64(delay) / 2
		if halfDelay == 0 {
			halfDelay = 1
		}
		jitterBig, err := rand.Int(rand.Reader, big.NewInt(halfDelay))
		if err != nil {
			jitterBig = big.NewInt(0)
		}
		jitter := time.Duration(jitterBig.Int64())
		delay = delay - delay/4 + jitter

		select {
		case <-time.After(delay):
			continue
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
