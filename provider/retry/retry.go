/*
Copyright 2026 Apex Labs, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package retry implements bounded exponential backoff for the outbound
// calls the pipeline makes: provider completions, source fetches, and
// mirror writes. Exhausting the attempt ceiling returns the last error
// wrapped; callers convert that into a recorded stage failure rather than
// an unhandled fault.
package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/chainguard-dev/clog"
)

// Config bounds the retry loop.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 are treated as 1 (no retry).
	MaxAttempts int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the exponential growth of the delay.
	MaxDelay time.Duration
	// MaxJitter is the maximum random addition to each delay, spreading
	// out concurrent workers that hit the same rate limit together.
	MaxJitter time.Duration
}

// Validate checks the configuration for negative values.
func (c Config) Validate() error {
	if c.BaseDelay < 0 || c.MaxDelay < 0 || c.MaxJitter < 0 {
		return errors.New("retry delays cannot be negative")
	}
	return nil
}

// Default returns the retry configuration used for provider and scraper
// calls. Delays are on the long side because quota-based rate limits
// recover slowly.
func Default() Config {
	return Config{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    60 * time.Second,
		MaxJitter:   500 * time.Millisecond,
	}
}

// WithBackoff runs fn until it succeeds, returns a non-retryable error,
// the attempt ceiling is reached, or the context is canceled. The
// retryable classifier decides which errors are worth another attempt.
func WithBackoff[T any](ctx context.Context, cfg Config, op string, retryable func(error) bool, fn func() (T, error)) (T, error) {
	attempts := max(cfg.MaxAttempts, 1)

	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !retryable(err) {
			return zero, err
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		delay := min(cfg.BaseDelay<<(attempt-1), cfg.MaxDelay)
		delay += jitter(cfg.MaxJitter)

		clog.FromContext(ctx).With("operation", op).
			With("attempt", attempt).
			With("max_attempts", attempts).
			With("delay", delay).
			With("error", err.Error()).
			Warn("Transient error, retrying")

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}
	return zero, fmt.Errorf("%s failed after %d attempts: %w", op, attempts, lastErr)
}

func jitter(maxJitter time.Duration) time.Duration {
	if maxJitter <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(maxJitter)))
	if err != nil {
		return 0
	}
	return time.Duration(n.Int64())
}
