package ports

import "github.com/bft-labs/bulkship/internal/domain"

// Listener receives callbacks around every dispatched batch. It is provided
// by the embedding application and only referenced, never owned, by the
// processor.
//
// For each dispatched batch the processor invokes exactly one BeforeBulk and
// exactly one AfterBulk, correlated by id. Ids are strictly increasing in
// dispatch order, starting at 1. AfterBulk calls for different batches may
// arrive in any order.
//
// If no listener is configured, batches are silently discarded at dispatch
// time without being sent. This degenerate mode is intentional.
type Listener interface {
	// BeforeBulk is called synchronously before a concurrency slot is
	// acquired. inFlight is a best-effort snapshot of the number of
	// outstanding batches at call time.
	BeforeBulk(id int64, inFlight int, batch *domain.Batch)

	// AfterBulk is called exactly once when the batch completes. On
	// success resp is non-nil and err is nil. On transport failure, or
	// when slot acquisition was cancelled before the batch could be sent,
	// resp is nil and err describes the failure.
	AfterBulk(id int64, inFlight int, resp *BatchResponse, err error)
}
