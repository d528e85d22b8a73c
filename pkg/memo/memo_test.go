package memo

import (
	"fmt"
	"testing"
)

func TestCacheGetPut(t *testing.T) {
	c := New[string, int](4)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache should miss")
	}

	c.Put("a", 1)
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v; want 1, true", v, ok)
	}

	// Replacing an existing key keeps a single entry.
	c.Put("a", 2)
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) after replace = %d, want 2", v)
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](3)
	c.Put(1, 10)
	c.Put(2, 20)
	c.Put(3, 30)

	// Touch 1 so 2 becomes the LRU entry.
	c.Get(1)

	c.Put(4, 40)

	if _, ok := c.Get(2); ok {
		t.Error("entry 2 should have been evicted")
	}
	for _, k := range []int{1, 3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("entry %d should survive eviction", k)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len = %d, want 3", c.Len())
	}
}

func TestCacheDefaultCapacity(t *testing.T) {
	c := New[int, int](0)
	if c.Cap() != DefaultCapacity {
		t.Errorf("Cap = %d, want %d", c.Cap(), DefaultCapacity)
	}
}

func TestMemoizeReturnsIdenticalObject(t *testing.T) {
	type params struct {
		x, y float64
	}
	calls := 0
	build := Memoize(8, func(p params) *params {
		calls++
		cp := p
		return &cp
	})

	a := build(params{1, 2})
	b := build(params{1, 2})
	if a != b {
		t.Error("repeated call with identical parameters should return the identical object")
	}
	if calls != 1 {
		t.Errorf("constructor ran %d times, want 1", calls)
	}

	if c := build(params{3, 4}); c == a {
		t.Error("distinct parameters should construct a distinct object")
	}
	if calls != 2 {
		t.Errorf("constructor ran %d times, want 2", calls)
	}
}

func TestMemoizeEvictionForcesReconstruction(t *testing.T) {
	const capacity = 8
	calls := make(map[int]int)
	build := Memoize(capacity, func(k int) *int {
		calls[k]++
		v := k
		return &v
	})

	first := build(0)

	// Fill the cache with capacity further keys; key 0 is now least recently
	// used and must be evicted by the last insert.
	recent := make([]*int, 0, capacity)
	for k := 1; k <= capacity; k++ {
		recent = append(recent, build(k))
	}

	// The most recent keys are retrieved, not reconstructed.
	for i, k := 1, 0; k < capacity; i, k = i+1, k+1 {
		if got := build(i); got != recent[k] {
			t.Errorf("key %d was reconstructed while still resident", i)
		}
	}

	if got := build(0); got == first {
		t.Error("key 0 should have been evicted and reconstructed")
	}
	if calls[0] != 2 {
		t.Errorf("key 0 constructed %d times, want 2", calls[0])
	}
}

func TestCacheStress(t *testing.T) {
	c := New[string, int](DefaultCapacity)
	for i := 0; i < 3*DefaultCapacity; i++ {
		c.Put(fmt.Sprintf("key-%d", i), i)
	}
	if c.Len() != DefaultCapacity {
		t.Errorf("Len = %d, want %d", c.Len(), DefaultCapacity)
	}
}
