package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a requested item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBackend is returned for backend failures (timeouts, connection
	// errors, a Redis server going away).
	ErrBackend = errors.New("cache backend error")
)

// RetryableError marks an error as transient. RetryWithBackoff retries only
// errors carrying this marker; everything else fails fast.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as transient. A nil err stays nil, so call sites can
// wrap unconditionally.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err carries the transient marker.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff runs fn up to three times, doubling the delay between
// attempts starting from one second. Non-retryable errors and context
// cancellation end the loop immediately.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt, delay := 0, time.Second; attempt < 3; attempt, delay = attempt+1, delay*2 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay / 2):
			}
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
