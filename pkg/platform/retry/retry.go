// Package retry provides a fixed-backoff retry policy shared by the store,
// queue, and cache clients. One policy abstraction keeps attempt counts and
// delays consistent across every external boundary.
package retry

import (
	"context"
	"time"
)

const (
	// DefaultMaxAttempts bounds how often an operation is tried before the
	// failure is surfaced.
	DefaultMaxAttempts = 5
	// DefaultDelay is the fixed pause between attempts.
	DefaultDelay = 5 * time.Second
)

// Policy describes how an operation is retried. The zero value is not usable;
// construct with New.
type Policy struct {
	maxAttempts int
	delay       time.Duration
	retryable   func(error) bool
	sleep       func(ctx context.Context, d time.Duration) error
}

// Option configures a Policy.
type Option func(*Policy)

// WithMaxAttempts overrides the attempt bound.
func WithMaxAttempts(n int) Option {
	return func(p *Policy) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithDelay overrides the fixed pause between attempts.
func WithDelay(d time.Duration) Option {
	return func(p *Policy) {
		if d >= 0 {
			p.delay = d
		}
	}
}

// WithRetryable restricts retries to errors the predicate accepts. Errors the
// predicate rejects are returned immediately.
func WithRetryable(fn func(error) bool) Option {
	return func(p *Policy) {
		if fn != nil {
			p.retryable = fn
		}
	}
}

// withSleep replaces the sleep function. Tests use this to avoid real delays.
func withSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Policy) {
		if fn != nil {
			p.sleep = fn
		}
	}
}

// New builds a retry policy with the default 5 attempts and 5s fixed delay.
func New(opts ...Option) Policy {
	p := Policy{
		maxAttempts: DefaultMaxAttempts,
		delay:       DefaultDelay,
		retryable:   func(error) bool { return true },
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&p)
		}
	}
	return p
}

// Do runs op until it succeeds, the attempt bound is reached, the error is
// not retryable, or ctx is cancelled. The last error is returned.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !p.retryable(lastErr) {
			return lastErr
		}
		if attempt == p.maxAttempts {
			break
		}
		if err := p.sleep(ctx, p.delay); err != nil {
			return err
		}
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
