// Package ratelimit enforces a minimum spacing between outbound API calls.
//
// Every physical call acquires a dispatch slot first. A slot is granted no
// earlier than one interval (60000/requestsPerMinute ms) after the previously
// granted slot, so consecutive dispatches through one limiter are always at
// least one interval apart. Slots are handed out in reservation order.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"lead-pipeline/internal/common/clock"
	"lead-pipeline/internal/common/metrics"
)

// DefaultRequestsPerMinute applies when a non-positive rate is configured.
const DefaultRequestsPerMinute = 10

// Limiter is the contract the transport depends on.
type Limiter interface {
	// Acquire blocks until the caller may dispatch, or ctx is done.
	Acquire(ctx context.Context) error
}

// Interval converts a requests-per-minute budget into the minimum spacing,
// rounded up to the nanosecond so the spacing never undershoots.
func Interval(requestsPerMinute int) time.Duration {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}
	rpm := time.Duration(requestsPerMinute)
	return (time.Minute + rpm - 1) / rpm
}

// roundingPad is added to the token-bucket interval so float rounding inside
// rate.Limiter can never grant a slot before a full interval has passed.
const roundingPad = time.Microsecond

// LocalLimiter paces dispatches with a burst-1 token bucket held in process memory.
type LocalLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	bucket   *rate.Limiter
	clock    clock.Clock
}

// New returns an in-process limiter. A nil clock means the wall clock.
func New(requestsPerMinute int, clk clock.Clock) *LocalLimiter {
	if clk == nil {
		clk = clock.Real{}
	}
	interval := Interval(requestsPerMinute)
	return &LocalLimiter{
		interval: interval,
		bucket:   rate.NewLimiter(rate.Every(interval+roundingPad), 1),
		clock:    clk,
	}
}

func (l *LocalLimiter) Interval() time.Duration {
	return l.interval
}

func (l *LocalLimiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Reservation times must never go backwards, so reading the clock and
	// reserving happen under one lock. The wait does not.
	l.mu.Lock()
	now := l.clock.Now()
	r := l.bucket.ReserveN(now, 1)
	l.mu.Unlock()
	if !r.OK() {
		return fmt.Errorf("rate limiter cannot grant a dispatch slot")
	}

	wait := r.DelayFrom(now)
	metrics.RateLimitWait.WithLabelValues("memory").Observe(wait.Seconds())
	if wait <= 0 {
		return nil
	}
	// A cancelled waiter keeps its slot; later callers queue behind it.
	return l.clock.Sleep(ctx, wait)
}
