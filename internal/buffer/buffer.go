// Package buffer provides the pending-operation accumulator used by the
// ingest processor.
//
// The accumulator performs no locking of its own. All methods must be called
// while holding the processor's lock; the processor is its sole owner.
package buffer

import "github.com/bft-labs/bulkship/internal/domain"

// Accumulator holds pending operations in insertion order together with a
// running estimate of their cumulative size. The estimate is maintained
// incrementally on Append and decremented on TakeFirstN/TakeAll, never
// recomputed.
type Accumulator struct {
	ops            []domain.Operation
	estimatedBytes int
}

// New creates an empty accumulator.
func New() *Accumulator {
	return &Accumulator{ops: make([]domain.Operation, 0)}
}

// Append adds an operation to the end of the buffer.
func (a *Accumulator) Append(op domain.Operation) {
	a.ops = append(a.ops, op)
	a.estimatedBytes += op.EstimatedSize()
}

// TakeFirstN removes and returns the n oldest operations as a batch,
// preserving order. Any remainder stays buffered. If fewer than n operations
// are buffered, all of them are taken.
func (a *Accumulator) TakeFirstN(n int) *domain.Batch {
	if n > len(a.ops) {
		n = len(a.ops)
	}

	batch := domain.NewBatch()
	for _, op := range a.ops[:n] {
		batch.Add(op)
	}

	a.ops = a.ops[n:]
	a.estimatedBytes -= batch.TotalBytes
	return batch
}

// TakeAll removes and returns every buffered operation as a batch,
// leaving the buffer empty.
func (a *Accumulator) TakeAll() *domain.Batch {
	return a.TakeFirstN(len(a.ops))
}

// Count returns the number of buffered operations.
func (a *Accumulator) Count() int {
	return len(a.ops)
}

// EstimatedBytes returns the running cumulative size estimate.
func (a *Accumulator) EstimatedBytes() int {
	return a.estimatedBytes
}
