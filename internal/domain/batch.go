package domain

// Batch is an ordered group of operations dispatched together in one call to
// the transport. It maintains TotalBytes incrementally so size checks are O(1).
type Batch struct {
	// Operations holds the batch contents in insertion order.
	Operations []Operation

	// TotalBytes is the sum of estimated sizes of all operations.
	TotalBytes int
}

// NewBatch creates a new empty batch.
func NewBatch() *Batch {
	return &Batch{Operations: make([]Operation, 0)}
}

// Add appends an operation to the batch.
func (b *Batch) Add(op Operation) {
	b.Operations = append(b.Operations, op)
	b.TotalBytes += op.EstimatedSize()
}

// Size returns the number of operations in the batch.
func (b *Batch) Size() int {
	return len(b.Operations)
}

// Empty returns true if the batch has no operations.
func (b *Batch) Empty() bool {
	return len(b.Operations) == 0
}
