// Package retry runs an operation a bounded number of times with a fixed delay
// between attempts. There is no backoff growth: every wait is the same length.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/strategy"
)

// Default policy values used when a caller does not configure its own.
const (
	DefaultAttempts = 3
	DefaultDelay    = 5 * time.Second
)

// Policy describes how many times an operation is attempted and how long to
// wait between attempts.
type Policy struct {
	// Attempts is the total number of attempts, including the first one.
	Attempts uint
	// Delay is the fixed wait between consecutive attempts.
	Delay time.Duration
	// OnFailure is called after every failed attempt (attempt is 1-based).
	OnFailure func(attempt uint, err error)
}

// DefaultPolicy returns the policy used for registry inspection.
func DefaultPolicy() Policy {
	return Policy{Attempts: DefaultAttempts, Delay: DefaultDelay}
}

// ExhaustedError is returned when every attempt failed. It wraps the error of
// the last attempt.
type ExhaustedError struct {
	Attempts uint
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do runs op until it succeeds, the policy's attempts are used up or ctx is
// done. Waits between attempts end early when ctx is cancelled.
func Do(ctx context.Context, p Policy, op func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	attempts := p.Attempts
	if attempts == 0 {
		attempts = 1
	}

	var made uint
	err := retry.Retry(func(attempt uint) error {
		made = attempt
		err := op()
		if err != nil && p.OnFailure != nil {
			p.OnFailure(attempt, err)
		}
		return err
	}, strategy.Limit(attempts), wait(ctx, p.Delay))
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("stopped after %d attempts: %w: %w", made, ctxErr, err)
	}
	return &ExhaustedError{Attempts: made, Err: err}
}

// wait sleeps for d before every attempt but the first. It reports false
// when ctx is done, which ends the retries.
func wait(ctx context.Context, d time.Duration) strategy.Strategy {
	return func(attempt uint) bool {
		if attempt == 0 {
			return true
		}
		if d <= 0 {
			return ctx.Err() == nil
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			return true
		}
	}
}
