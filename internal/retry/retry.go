// Package retry implements bounded retry with exponential backoff and jitter
// for read-path fetches. Mutations are never wrapped: list fetches are
// idempotent, creations are not.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"
)

// Defaults for read-path fetches.
const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = 1000 * time.Millisecond
)

// Config controls the retry loop.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultConfig returns the standard read-path policy.
func DefaultConfig() Config {
	return Config{MaxAttempts: DefaultMaxAttempts, InitialDelay: DefaultInitialDelay}
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so Do fails fast instead of retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsAuthError reports whether err looks like a credential/session failure.
// Authentication errors are excluded from retry: repeating the call cannot
// succeed until the caller re-authenticates.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "JWT") ||
		strings.Contains(msg, "token has expired") ||
		strings.Contains(msg, "authentication failed")
}

func retryable(err error) bool {
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	return !IsAuthError(err)
}

// Backoff computes the delay before the given zero-based attempt is retried:
// initialDelay * 2^attempt * uniform(0.5, 1.0).
func Backoff(initialDelay time.Duration, attempt int) time.Duration {
	factor := float64(int64(1) << uint(attempt))
	jitter := 0.5 + rand.Float64()*0.5
	return time.Duration(float64(initialDelay) * factor * jitter)
}

// Do runs op up to cfg.MaxAttempts times. The context bounds the overall
// deadline; cancellation between attempts aborts the loop immediately.
func Do[T any](ctx context.Context, cfg Config, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultInitialDelay
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable(err) {
			var perm *permanentError
			if errors.As(err, &perm) {
				return zero, perm.err
			}
			return zero, err
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(Backoff(cfg.InitialDelay, attempt)):
		}
	}
	return zero, lastErr
}
