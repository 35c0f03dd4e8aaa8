// Package ports defines the interfaces (ports) that connect the ingest
// processor to infrastructure adapters and to the embedding application.
//
// Ports are the boundaries between the application core and the outside
// world. They define what the processor needs from external systems without
// specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [Transport]: Executes a batch request against the remote storage cluster
//   - [Listener]: Receives before/after callbacks for every dispatched batch
//   - [Logger]: Structured logging abstraction
//
// The processor (internal/ingest) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (HTTP, zerolog, etc.).
package ports
