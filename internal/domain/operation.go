package domain

// Action identifies the kind of write an Operation performs.
type Action string

const (
	// ActionIndex indexes (creates or replaces) a record.
	ActionIndex Action = "index"

	// ActionDelete removes a record.
	ActionDelete Action = "delete"
)

// operationOverhead is the fixed per-operation byte estimate added on top of
// the source payload to account for action metadata on the wire.
const operationOverhead = 50

// Operation is a single write intent. Operations are immutable once added to
// the processor; Source must not be modified by the caller after Add.
type Operation struct {
	// Action is the kind of write (index or delete).
	Action Action

	// Index is the target index name.
	Index string

	// ID is the record identifier. May be empty for index operations, in
	// which case the cluster assigns one.
	ID string

	// Routing optionally pins the operation to a shard.
	Routing string

	// Source is the record payload. Nil for delete operations.
	Source []byte
}

// EstimatedSize returns the byte contribution of this operation to a batch,
// used by the volume threshold. It is an estimate, not a wire-exact size.
func (o Operation) EstimatedSize() int {
	return len(o.Source) + operationOverhead
}

// DeliveryOptions carries pass-through delivery settings. The processor never
// interprets these; they are forwarded unmodified to the transport with every
// batch request.
type DeliveryOptions struct {
	// Threaded requests that the cluster invoke response listeners on a
	// separate thread pool.
	Threaded bool

	// Replication selects the replication mode (e.g. "sync", "async").
	Replication string

	// Consistency selects the write consistency level (e.g. "one",
	// "quorum", "all").
	Consistency string
}
