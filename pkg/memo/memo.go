// Package memo provides a bounded memoization cache with strict LRU eviction.
//
// The cache is keyed by exact parameter equality and retains the constructed
// value itself, so repeated lookups return the identical stored object rather
// than a freshly constructed equivalent. This identity guarantee is what makes
// the cache usable as a lifetime anchor: as long as an entry survives, the
// object it holds cannot be reclaimed.
//
// Eviction is silent. When more distinct keys than the capacity are used, the
// least recently used entries are dropped and their values become collectable
// again. Callers that need guaranteed retention for a whole rendering session
// should use an explicit registry (see the session package) instead of relying
// on cache residency.
package memo

import (
	"container/list"
	"context"
	"sync"

	"github.com/plotkit/plotkit/pkg/observability"
)

// DefaultCapacity is the entry bound used when no explicit capacity is given.
const DefaultCapacity = 1024

// Cache is a bounded key-value cache with strict least-recently-used eviction.
// Both Get and Put count as use for eviction ordering. The zero value is not
// usable; construct with New.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	items    map[K]*list.Element
	keyType  string // label reported to cache hooks
}

type entry[K comparable, V any] struct {
	key K
	val V
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	keyType string
}

// WithKeyType sets the label under which cache events are reported to
// observability hooks. Defaults to "memo".
func WithKeyType(s string) Option {
	return func(o *options) { o.keyType = s }
}

// New creates a cache holding at most capacity entries.
// A capacity <= 0 selects DefaultCapacity.
func New[K comparable, V any](capacity int, opts ...Option) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	o := options{keyType: "memo"}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[K, V]{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[K]*list.Element, capacity),
		keyType:  o.keyType,
	}
}

// Get returns the stored value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		observability.Cache().OnCacheMiss(context.Background(), c.keyType)
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	observability.Cache().OnCacheHit(context.Background(), c.keyType)
	return el.Value.(*entry[K, V]).val, true
}

// Put stores a value under key, evicting the least recently used entry if the
// cache is full. Storing an existing key replaces its value and marks it most
// recently used.
func (c *Cache[K, V]) Put(key K, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		el.Value.(*entry[K, V]).val = val
		return
	}

	el := c.order.PushFront(&entry[K, V]{key: key, val: val})
	c.items[key] = el

	if c.order.Len() > c.capacity {
		c.evictOldest()
	}
}

// Len returns the number of entries currently held.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Cap returns the capacity bound.
func (c *Cache[K, V]) Cap() int {
	return c.capacity
}

// evictOldest drops the least recently used entry. Caller must hold c.mu.
func (c *Cache[K, V]) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry[K, V]).key)
	observability.Cache().OnCacheEvict(context.Background(), c.keyType)
}

// Memoize wraps a pure constructor so that identical keys return the identical
// stored result. The wrapper is backed by a Cache with the given capacity
// (DefaultCapacity if <= 0).
//
// Construction is assumed infallible; constructors that can fail should be
// memoized manually around a Cache so the error path stays outside the cache.
func Memoize[K comparable, V any](capacity int, fn func(K) V, opts ...Option) func(K) V {
	c := New[K, V](capacity, opts...)
	return func(key K) V {
		if v, ok := c.Get(key); ok {
			return v
		}
		v := fn(key)
		c.Put(key, v)
		return v
	}
}
