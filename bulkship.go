// Package bulkship provides a bounded-concurrency batching layer for bulk
// index/delete operations.
//
// A Processor accumulates operations from many producers into a shared
// buffer and dispatches them as batches to a remote storage cluster once a
// count or volume threshold fires, keeping at most Concurrency batches in
// flight. Producers that trigger a dispatch while every slot is taken block
// until one frees up; that blocking is the only backpressure mechanism.
//
// Example usage:
//
//	transport := bulkshiphttp.NewTransport(httpClient, "http://localhost:9200", apiKey, logger)
//	cfg := bulkship.DefaultConfig()
//	cfg.Actions = 500
//	p := bulkship.New(transport, cfg, bulkship.WithListener(listener))
//	if err := p.Add(ctx, op); err != nil {
//	    log.Fatal(err)
//	}
//	drained := p.Close(ctx)
//
// Delivery is at-most-once: failed or interrupted batches are reported to
// the listener and dropped, never retried.
package bulkship

import (
	"github.com/bft-labs/bulkship/internal/bulkformat"
	"github.com/bft-labs/bulkship/internal/domain"
	"github.com/bft-labs/bulkship/internal/ingest"
	"github.com/bft-labs/bulkship/internal/ports"
)

// Processor accumulates operations and dispatches them in batches.
// Use New() to create one.
type Processor = ingest.Processor

// Config controls batching thresholds and concurrency.
// Use DefaultConfig() to get a Config with the standard thresholds.
type Config = ingest.Config

// Operation is a single index or delete write intent.
type Operation = domain.Operation

// Action identifies the kind of write an Operation performs.
type Action = domain.Action

// Operation kinds.
const (
	ActionIndex  = domain.ActionIndex
	ActionDelete = domain.ActionDelete
)

// Batch is an ordered group of operations dispatched together.
type Batch = domain.Batch

// DeliveryOptions carries pass-through delivery settings forwarded
// unmodified to the transport.
type DeliveryOptions = domain.DeliveryOptions

// Defaults supplies fallback index/routing values for raw bulk input.
type Defaults = bulkformat.Defaults

// Transport executes batch requests against the remote storage cluster.
type Transport = ports.Transport

// BatchRequest is one dispatch unit handed to the transport.
type BatchRequest = ports.BatchRequest

// BatchResponse summarizes the cluster's reply to a batch request.
type BatchResponse = ports.BatchResponse

// Listener receives callbacks around every dispatched batch.
type Listener = ports.Listener

// Logger is the structured logging abstraction used across bulkship.
type Logger = ports.Logger

// ErrClosed is returned by Add, AddRaw and Flush after Close.
var ErrClosed = domain.ErrClosed

// Option configures optional behavior of a Processor.
type Option = ingest.Option

// New creates a Processor that dispatches batches through the given
// transport. Configuration values are sanitized, never rejected.
func New(transport Transport, cfg Config, opts ...Option) *Processor {
	return ingest.New(transport, cfg, opts...)
}

// DefaultConfig returns a Config with the standard thresholds: 1000 actions,
// 5 MB volume, 4x available parallelism concurrency, 60s drain budget.
func DefaultConfig() Config {
	return ingest.DefaultConfig()
}

// WithListener sets the listener notified around every dispatched batch.
// Without a listener, batches are silently discarded at dispatch time.
func WithListener(l Listener) Option {
	return ingest.WithListener(l)
}

// WithLogger sets a structured logger. If not provided, logging is disabled.
func WithLogger(logger Logger) Option {
	return ingest.WithLogger(logger)
}
