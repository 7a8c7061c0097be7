package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

type Config struct {
	MaxAttempts int
	Delay       time.Duration
	Jitter      bool // add up to one Delay of random extra wait
}

// Do runs fn until it succeeds or attempts are exhausted.
func Do(ctx context.Context, config Config, fn func() error) error {
	var lastErr error

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err

			if attempt == config.MaxAttempts {
				return fmt.Errorf("failed after %d attempts: %w", config.MaxAttempts, err)
			}

			delay := config.Delay
			if config.Jitter {
				delay += time.Duration(rand.Int63n(int64(config.Delay) + 1))
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
		return nil
	}

	return lastErr
}

// DoWithFallback runs fn until it yields a value, and substitutes the
// caller-supplied fallback once attempts are exhausted. The fallback is an
// explicit parameter: callers own the degraded shape, the wrapper never
// guesses it.
func DoWithFallback[T any](ctx context.Context, config Config, fallback T, fn func() (T, error)) T {
	var result T
	err := Do(ctx, config, func() error {
		var innerErr error
		result, innerErr = fn()
		return innerErr
	})
	if err != nil {
		return fallback
	}
	return result
}
