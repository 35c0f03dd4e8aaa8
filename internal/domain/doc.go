// Package domain contains the core domain entities and value objects for bulkship.
//
// This package represents the innermost layer of the architecture. It has no
// dependencies on infrastructure concerns (HTTP, file system, logging) and
// contains only pure data and business rules.
//
// # Entities
//
//   - [Operation]: A single index or delete write intent with an estimated size
//   - [Batch]: An ordered group of operations dispatched together
//   - [DeliveryOptions]: Opaque delivery settings forwarded to the transport
package domain
