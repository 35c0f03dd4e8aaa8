package ingest

import (
	"context"

	"github.com/bft-labs/bulkship/internal/domain"
	"github.com/bft-labs/bulkship/internal/ports"
)

// dispatch assigns the next batch id, notifies the listener, acquires a
// concurrency slot and hands the batch to the transport on its own
// goroutine. Called with p.mu held, so batch ids are strictly increasing in
// dispatch order.
//
// A batch taken from the buffer is never re-inserted: if no listener is
// configured, or slot acquisition is cancelled, its operations are dropped.
func (p *Processor) dispatch(ctx context.Context, batch *domain.Batch) {
	if batch.Empty() {
		return
	}
	if p.listener == nil {
		p.logger.Debug("no listener configured, discarding batch",
			ports.Int("operations", batch.Size()))
		return
	}

	id := p.batchID.Add(1)
	p.listener.BeforeBulk(id, p.limiter.InFlight(), batch)

	if err := p.limiter.Acquire(ctx); err != nil {
		p.logger.Warn("cancelled while waiting for slot, dropping batch",
			ports.Int64("batch_id", id),
			ports.Int("operations", batch.Size()),
			ports.Err(err))
		p.listener.AfterBulk(id, p.limiter.InFlight(), nil, err)
		return
	}

	req := &ports.BatchRequest{
		Operations: batch.Operations,
		Delivery:   p.cfg.Delivery,
	}
	go p.execute(id, batch, req)
}

// execute runs one batch request to completion. The slot is released exactly
// once via defer, even if a listener callback panics. The transport context
// is independent of any producer: cancelling the context passed to Add never
// cancels a batch that already holds a slot.
func (p *Processor) execute(id int64, batch *domain.Batch, req *ports.BatchRequest) {
	defer p.limiter.Release()

	resp, err := p.transport.Execute(context.Background(), req)
	if err != nil {
		p.logger.Error("bulk request failed",
			ports.Int64("batch_id", id),
			ports.Int("operations", batch.Size()),
			ports.Int("bytes", batch.TotalBytes),
			ports.Err(err))
		p.listener.AfterBulk(id, p.limiter.InFlight(), nil, err)
		return
	}

	p.logger.Debug("bulk request complete",
		ports.Int64("batch_id", id),
		ports.Int("operations", batch.Size()),
		ports.Int("bytes", batch.TotalBytes),
		ports.Duration("took", resp.Took))
	p.listener.AfterBulk(id, p.limiter.InFlight(), resp, nil)
}
