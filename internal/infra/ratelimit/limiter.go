// Package ratelimit smooths calls to a quota constrained API towards a
// steady rate. Calls are never rejected; once a second's burst allowance is
// used up, each further call in that second is pushed back by 1/rate more
// than the previous one.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const DefaultRate = 5

type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time                         { return time.Now() }
func (wallClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

type Limiter struct {
	clock   Clock
	rate    int
	burst   int
	observe func(time.Duration)

	mu     sync.Mutex
	second int64
	count  int
}

type Option func(*Limiter)

func WithClock(clock Clock) Option {
	return func(l *Limiter) {
		l.clock = clock
	}
}

// WithBurst sets how many calls per second run without delay. A burst of 2
// reproduces the historical behaviour of the rdio throttle.
func WithBurst(burst int) Option {
	return func(l *Limiter) {
		l.burst = burst
	}
}

// WithDelayObserver registers fn to be called with every computed delay.
func WithDelayObserver(fn func(time.Duration)) Option {
	return func(l *Limiter) {
		l.observe = fn
	}
}

// New returns a limiter aiming at rate calls per second. The burst defaults
// to rate.
func New(rate int, opts ...Option) *Limiter {
	if rate <= 0 {
		rate = DefaultRate
	}

	l := &Limiter{
		clock: wallClock{},
		rate:  rate,
		burst: rate,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.burst < 1 {
		l.burst = 1
	}

	return l
}

// Reserve accounts for one call and returns how long it must wait. The k-th
// call of a wall-clock second waits max(0, k-burst)/rate seconds.
//
// The clock is read under the lock so readings are ordered with the count;
// a reading older than the current window counts towards that window.
func (l *Limiter) Reserve() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now().Unix()
	if now > l.second {
		l.second = now
		l.count = 1
		return l.record(0)
	}

	l.count++
	excess := l.count - l.burst
	if excess <= 0 {
		return l.record(0)
	}

	return l.record(time.Duration(excess) * time.Second / time.Duration(l.rate))
}

func (l *Limiter) record(d time.Duration) time.Duration {
	if l.observe != nil {
		l.observe(d)
	}

	return d
}

// Schedule waits for the call's slot and runs fn. The context only bounds
// the wait; fn's own error is returned unchanged.
func (l *Limiter) Schedule(ctx context.Context, fn func(ctx context.Context) error) error {
	if d := l.Reserve(); d > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.clock.After(d):
		}
	}

	return fn(ctx)
}

// Do is Schedule for functions returning a value.
func Do[T any](ctx context.Context, l *Limiter, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := l.Schedule(ctx, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})

	return result, err
}
