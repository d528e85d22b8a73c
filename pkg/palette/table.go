package palette

import (
	"sync"

	"github.com/plotkit/plotkit/pkg/errors"
	"github.com/plotkit/plotkit/pkg/memo"
	"github.com/plotkit/plotkit/pkg/plot"
)

// DefaultPoolSize is the number of color slots a table hands out by default.
const DefaultPoolSize = 1024

// Table maps color definitions to numeric slots drawn from a finite pool.
//
// Define is memoized: identical components reuse the already-allocated slot,
// which is what keeps repeated definitions of the same color from draining
// the pool. The memo capacity matches the pool size, so a mapping can never
// be evicted while its slot is still allocated. An exhausted pool is an
// explicit POOL_EXHAUSTED error rather than silent misbehavior.
type Table struct {
	mu    sync.Mutex
	next  int
	size  int
	first int
	cache *memo.Cache[plot.Color, int]
}

// NewTable creates a slot table handing out indices [first, first+size).
// A size <= 0 selects DefaultPoolSize.
func NewTable(first, size int) *Table {
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &Table{
		next:  first,
		size:  size,
		first: first,
		cache: memo.New[plot.Color, int](size, memo.WithKeyType("color-slot")),
	}
}

// Define returns the slot for the given color, allocating one on first use.
func (t *Table) Define(c plot.Color) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if slot, ok := t.cache.Get(c); ok {
		return slot, nil
	}
	if t.next >= t.first+t.size {
		return 0, errors.New(errors.ErrCodePoolExhausted,
			"color slot pool exhausted (%d slots)", t.size)
	}
	slot := t.next
	t.next++
	t.cache.Put(c, slot)
	return slot, nil
}

// DefineAll defines every color of a ramp, in order.
func (t *Table) DefineAll(colors []plot.Color) ([]int, error) {
	slots := make([]int, len(colors))
	for i, c := range colors {
		slot, err := t.Define(c)
		if err != nil {
			return nil, err
		}
		slots[i] = slot
	}
	return slots, nil
}

// Used returns the number of allocated slots.
func (t *Table) Used() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.next - t.first
}

// Free returns the number of slots still available.
func (t *Table) Free() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.first + t.size - t.next
}
