package buffer

import (
	"testing"

	"github.com/bft-labs/bulkship/internal/domain"
)

func op(id string, sourceLen int) domain.Operation {
	return domain.Operation{
		Action: domain.ActionIndex,
		Index:  "test",
		ID:     id,
		Source: make([]byte, sourceLen),
	}
}

func TestAppendTracksCountAndSize(t *testing.T) {
	a := New()

	if a.Count() != 0 || a.EstimatedBytes() != 0 {
		t.Fatalf("new accumulator not empty: count=%d size=%d", a.Count(), a.EstimatedBytes())
	}

	a.Append(op("1", 100))
	a.Append(op("2", 200))

	if a.Count() != 2 {
		t.Errorf("Count() = %d, want 2", a.Count())
	}
	want := op("1", 100).EstimatedSize() + op("2", 200).EstimatedSize()
	if a.EstimatedBytes() != want {
		t.Errorf("EstimatedBytes() = %d, want %d", a.EstimatedBytes(), want)
	}
}

func TestTakeFirstNPreservesOrderAndRemainder(t *testing.T) {
	a := New()
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		a.Append(op(id, 10))
	}

	batch := a.TakeFirstN(3)

	if batch.Size() != 3 {
		t.Fatalf("batch size = %d, want 3", batch.Size())
	}
	for i, want := range []string{"1", "2", "3"} {
		if batch.Operations[i].ID != want {
			t.Errorf("batch op %d id = %s, want %s", i, batch.Operations[i].ID, want)
		}
	}

	if a.Count() != 2 {
		t.Errorf("remainder count = %d, want 2", a.Count())
	}
	rest := a.TakeAll()
	for i, want := range []string{"4", "5"} {
		if rest.Operations[i].ID != want {
			t.Errorf("remainder op %d id = %s, want %s", i, rest.Operations[i].ID, want)
		}
	}
}

func TestTakeFirstNMoreThanBuffered(t *testing.T) {
	a := New()
	a.Append(op("1", 10))

	batch := a.TakeFirstN(5)

	if batch.Size() != 1 {
		t.Errorf("batch size = %d, want 1", batch.Size())
	}
	if a.Count() != 0 {
		t.Errorf("count after take = %d, want 0", a.Count())
	}
}

func TestTakeAllEmptiesBuffer(t *testing.T) {
	a := New()
	a.Append(op("1", 100))
	a.Append(op("2", 100))

	batch := a.TakeAll()

	if batch.Size() != 2 {
		t.Errorf("batch size = %d, want 2", batch.Size())
	}
	if a.Count() != 0 || a.EstimatedBytes() != 0 {
		t.Errorf("buffer not empty after TakeAll: count=%d size=%d", a.Count(), a.EstimatedBytes())
	}
}

func TestSizeDecrementsIncrementally(t *testing.T) {
	a := New()
	a.Append(op("1", 100))
	a.Append(op("2", 200))
	a.Append(op("3", 300))

	batch := a.TakeFirstN(1)

	want := op("2", 200).EstimatedSize() + op("3", 300).EstimatedSize()
	if a.EstimatedBytes() != want {
		t.Errorf("EstimatedBytes() after take = %d, want %d", a.EstimatedBytes(), want)
	}
	if batch.TotalBytes != op("1", 100).EstimatedSize() {
		t.Errorf("batch TotalBytes = %d, want %d", batch.TotalBytes, op("1", 100).EstimatedSize())
	}
}
