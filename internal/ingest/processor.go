// Package ingest implements the bounded-concurrency bulk ingest processor.
//
// The Processor accumulates index/delete operations into a buffer and
// dispatches them as batches once a count or volume threshold is reached,
// while capping the number of batches in flight. Producers that trigger a
// dispatch when all concurrency slots are taken block until a slot frees up.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/bulkship/internal/buffer"
	"github.com/bft-labs/bulkship/internal/bulkformat"
	"github.com/bft-labs/bulkship/internal/domain"
	"github.com/bft-labs/bulkship/internal/ports"
)

// Processor accumulates operations and dispatches them in batches.
//
// All buffer access and threshold evaluation happens under one mutex, so
// concurrent producers never observe partially evaluated state. Listener
// BeforeBulk callbacks and concurrency-slot waits also happen under this
// mutex; listeners must not call back into the processor from BeforeBulk.
type Processor struct {
	cfg       Config
	transport ports.Transport
	listener  ports.Listener
	logger    ports.Logger

	limiter *limiter
	batchID atomic.Int64

	mu     sync.Mutex
	buf    *buffer.Accumulator
	closed bool

	// drainPoll is the WaitForDrain polling granularity.
	drainPoll time.Duration
}

// Option configures optional behavior of a Processor.
type Option func(*Processor)

// WithListener sets the listener notified around every dispatched batch.
//
// Without a listener the processor silently discards batches at dispatch
// time instead of sending them. That degenerate mode is preserved
// deliberately; virtually every caller wants a listener.
func WithListener(l ports.Listener) Option {
	return func(p *Processor) {
		p.listener = l
	}
}

// WithLogger sets a structured logger. If not provided, logging is disabled.
func WithLogger(logger ports.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// New creates a Processor that dispatches batches through the given
// transport. Configuration values are sanitized, never rejected: see Config.
func New(transport ports.Transport, cfg Config, opts ...Option) *Processor {
	cfg.sanitize()

	p := &Processor{
		cfg:       cfg,
		transport: transport,
		logger:    noopLogger{},
		limiter:   newLimiter(cfg.Concurrency),
		buf:       buffer.New(),
		drainPoll: time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Add appends one operation to the buffer and evaluates the flush policy.
//
// If a threshold fires and all concurrency slots are taken, Add blocks until
// a slot frees up or ctx is cancelled. Cancellation while waiting is not
// returned to the caller: the affected batch is reported to the listener as
// failed and dropped.
//
// Returns ErrClosed after Close.
func (p *Processor) Add(ctx context.Context, op domain.Operation) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return domain.ErrClosed
	}

	p.buf.Append(op)
	p.flushIfNeeded(ctx)
	return nil
}

// AddRaw parses raw bulk-format input (newline-delimited action and source
// lines) into operations, appends them all, and evaluates the flush policy
// once for the whole fragment.
//
// If contentUnsafe is true the caller may reuse data after the call returns
// and source payloads are copied out of it.
//
// Returns ErrClosed after Close, or a parse error describing the offending
// line; a parse error means no operations from the fragment were accepted.
func (p *Processor) AddRaw(ctx context.Context, data []byte, contentUnsafe bool, defaults bulkformat.Defaults) error {
	ops, err := bulkformat.Parse(data, contentUnsafe, defaults)
	if err != nil {
		return fmt.Errorf("parse bulk input: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return domain.ErrClosed
	}

	for _, op := range ops {
		p.buf.Append(op)
	}
	p.flushIfNeeded(ctx)
	return nil
}

// flushIfNeeded evaluates the flush policy. Called with p.mu held,
// immediately after buffer mutation.
//
// The count threshold is checked first and takes precedence when both
// thresholds are satisfied. A count-triggered dispatch takes exactly Actions
// of the oldest operations, leaving any surplus buffered; a volume-triggered
// dispatch takes the entire buffer even if its size exceeds the threshold.
func (p *Processor) flushIfNeeded(ctx context.Context) {
	switch {
	case p.cfg.Actions > 0 && p.buf.Count() >= p.cfg.Actions:
		p.dispatch(ctx, p.buf.TakeFirstN(p.cfg.Actions))
	case p.cfg.MaxVolumeBytes > 0 && p.buf.EstimatedBytes() >= p.cfg.MaxVolumeBytes:
		p.dispatch(ctx, p.buf.TakeAll())
	}
}

// Flush dispatches the entire current buffer, bypassing thresholds. It is a
// no-op if the buffer is empty. Returns ErrClosed after Close.
func (p *Processor) Flush(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return domain.ErrClosed
	}

	p.flushLocked(ctx)
	return nil
}

// flushLocked dispatches the buffer remainder. Called with p.mu held.
func (p *Processor) flushLocked(ctx context.Context) {
	if p.buf.Count() > 0 {
		p.dispatch(ctx, p.buf.TakeAll())
	}
}

// Close flushes any buffered operations and waits up to the configured drain
// budget for all in-flight batches to complete. It reports whether the
// processor fully drained in time; a false result is a signal, not an error,
// and dispatches may still be outstanding.
//
// Close is idempotent: the flush-and-drain sequence runs only once, and
// subsequent calls return immediately with the current drain state. After
// Close, Add, AddRaw and Flush return ErrClosed.
func (p *Processor) Close(ctx context.Context) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return p.limiter.InFlight() == 0
	}
	p.closed = true
	p.flushLocked(ctx)
	p.mu.Unlock()

	return p.WaitForDrain(p.cfg.DrainBudget)
}

// WaitForDrain polls once per second until no batches are in flight or the
// budget is exhausted, and reports whether the processor fully drained.
func (p *Processor) WaitForDrain(budget time.Duration) bool {
	for p.limiter.InFlight() > 0 && budget > 0 {
		time.Sleep(p.drainPoll)
		budget -= p.drainPoll
	}
	return p.limiter.InFlight() == 0
}

// InFlight returns a best-effort snapshot of the number of dispatched but
// not yet completed batches.
func (p *Processor) InFlight() int {
	return p.limiter.InFlight()
}

// noopLogger discards all log messages.
type noopLogger struct{}

func (noopLogger) Debug(msg string, fields ...ports.Field) {}
func (noopLogger) Info(msg string, fields ...ports.Field)  {}
func (noopLogger) Warn(msg string, fields ...ports.Field)  {}
func (noopLogger) Error(msg string, fields ...ports.Field) {}
