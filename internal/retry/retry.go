// Package retry runs bounded polling and retry loops with escalating waits.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is returned when every attempt ran without success
var ErrExhausted = errors.New("retry attempts exhausted")

// Escalation computes the wait before the given attempt (attempt >= 1 is the first retry)
type Escalation func(base time.Duration, attempt int) time.Duration

// Linear waits base, 2*base, 3*base...
func Linear(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(attempt)
}

// Exponential waits base, 2*base, 4*base...
func Exponential(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(1<<uint(attempt-1))
}

// Constant always waits base
func Constant(base time.Duration, _ int) time.Duration {
	return base
}

// Policy bounds a retry loop
type Policy struct {
	// Attempts is the total number of tries, including the first one
	Attempts int
	// Delay is the base wait between tries
	Delay time.Duration
	// Escalate derives the actual wait from Delay; Linear when nil
	Escalate Escalation
	// Reset runs after the wait and before every retry, e.g. a page reload
	Reset func(ctx context.Context) error
}

func (p Policy) attempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

func (p Policy) wait(ctx context.Context, attempt int) error {
	escalate := p.Escalate
	if escalate == nil {
		escalate = Linear
	}
	d := escalate(p.Delay, attempt)
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p Policy) between(ctx context.Context, attempt int) error {
	if err := p.wait(ctx, attempt); err != nil {
		return err
	}
	if p.Reset != nil {
		if err := p.Reset(ctx); err != nil {
			return fmt.Errorf("reset before attempt %d: %w", attempt+1, err)
		}
	}
	return nil
}

// Until polls check until it reports true or the attempt budget is spent.
// Check errors count as a miss. It returns true iff any attempt matched; the
// error is ErrExhausted (wrapping the last check error, if any), a reset
// failure, or the context error.
func Until(ctx context.Context, p Policy, check func(ctx context.Context) (bool, error)) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < p.attempts(); attempt++ {
		if attempt > 0 {
			if err := p.between(ctx, attempt); err != nil {
				return false, err
			}
		}

		ok, err := check(ctx)
		if err != nil {
			lastErr = err
			continue
		}
		if ok {
			return true, nil
		}
	}

	if lastErr != nil {
		return false, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, p.attempts(), lastErr)
	}
	return false, fmt.Errorf("%w after %d attempts", ErrExhausted, p.attempts())
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err so that Do stops retrying and returns it unchanged
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, or the attempt
// budget is spent.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < p.attempts(); attempt++ {
		if attempt > 0 {
			if err := p.between(ctx, attempt); err != nil {
				return err
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, p.attempts(), lastErr)
}
