package ingest

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// limiter bounds the number of simultaneously in-flight batches. Acquire
// blocks the calling goroutine until a slot frees up, which is the
// processor's sole backpressure mechanism.
//
// The in-flight counter is tracked separately from the semaphore so callers
// can read a best-effort snapshot without touching semaphore internals.
type limiter struct {
	sem      *semaphore.Weighted
	capacity int
	inFlight atomic.Int64
}

func newLimiter(capacity int) *limiter {
	return &limiter{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: capacity,
	}
}

// Acquire blocks until a slot is available or the context is cancelled.
// On cancellation no slot is consumed and the context's error is returned.
func (l *limiter) Acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	l.inFlight.Add(1)
	return nil
}

// Release returns a slot to the pool. Must be called exactly once per
// successful Acquire.
func (l *limiter) Release() {
	l.inFlight.Add(-1)
	l.sem.Release(1)
}

// InFlight returns a snapshot of the number of held slots.
func (l *limiter) InFlight() int {
	return int(l.inFlight.Load())
}

// Capacity returns the configured slot count.
func (l *limiter) Capacity() int {
	return l.capacity
}
