// Package retry defines the wait policy used between prediction status
// polls.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Strategy produces a fresh wait-duration sequence. A new sequence is
// started for every polling loop, so strategies with internal state
// (exponential growth) never leak progress between loops.
type Strategy func() backoff.BackOff

// ConstantDelay waits the same duration between every poll.
func ConstantDelay(d time.Duration) Strategy {
	return func() backoff.BackOff {
		return backoff.NewConstantBackOff(d)
	}
}

// Exponential grows the delay from initial up to max, with the backoff
// library's default multiplier. Jitter is disabled so tests and polling
// cadence stay predictable.
func Exponential(initial, max time.Duration) Strategy {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = initial
		b.MaxInterval = max
		b.RandomizationFactor = 0
		b.MaxElapsedTime = 0
		return b
	}
}

// Policy pairs a wait strategy with an attempt budget. MaxAttempts of
// zero means unbounded.
type Policy struct {
	MaxAttempts int
	strategy    Strategy
}

// NewPolicy builds a Policy. A nil strategy defaults to a one second
// constant delay.
func NewPolicy(maxAttempts int, strategy Strategy) Policy {
	if strategy == nil {
		strategy = ConstantDelay(time.Second)
	}
	return Policy{MaxAttempts: maxAttempts, strategy: strategy}
}

// Start begins one wait sequence.
func (p Policy) Start() *Waiter {
	return &Waiter{b: p.strategy()}
}

// Waiter is a single polling loop's wait state.
type Waiter struct {
	b backoff.BackOff
}

// Wait blocks for the next delay of the sequence, or returns early with
// the context's error when it is canceled.
func (w *Waiter) Wait(ctx context.Context) error {
	d := w.b.NextBackOff()
	if d == backoff.Stop {
		d = 0
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
