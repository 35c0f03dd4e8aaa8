package ports

import (
	"context"
	"time"

	"github.com/bft-labs/bulkship/internal/domain"
)

// Transport executes batch requests against the remote storage cluster.
// Implementations handle serialization, communication, and authentication.
//
// Execute is called at most once per batch, on a goroutine owned by the
// dispatcher, so implementations may block until the cluster responds.
// The context is not tied to any producer; it is cancelled only when the
// process exits.
type Transport interface {
	// Execute sends one batch request and returns the cluster's response,
	// or an error if the request failed. Errors are reported to the
	// configured Listener, never to the producer that triggered the flush.
	Execute(ctx context.Context, req *BatchRequest) (*BatchResponse, error)
}

// BatchRequest is one dispatch unit handed to the transport.
type BatchRequest struct {
	// Operations are the batch contents in insertion order.
	Operations []domain.Operation

	// Delivery carries pass-through delivery settings, forwarded unmodified.
	Delivery domain.DeliveryOptions
}

// BatchResponse summarizes the cluster's reply to a batch request.
type BatchResponse struct {
	// Took is the server-reported processing time.
	Took time.Duration

	// Items is the number of operations the cluster acknowledged.
	Items int

	// Errors is true if any individual operation failed on the cluster.
	Errors bool
}
