// Package dedupe tracks idempotency keys for client submissions.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen keys and the outcome stored against them.
type Deduper[V any] interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Complete stores the outcome for a recorded key so replays can return it.
	Complete(ctx context.Context, key string, value V)

	// Lookup returns the outcome for key. ok is false while the first
	// submission is still in flight or when key is unknown.
	Lookup(ctx context.Context, key string) (value V, ok bool)

	// Unrecord forgets key so a failed submission can be retried.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

type entry[V any] struct {
	key   string
	value V
	done  bool
}

type inMemoryDeduper[V any] struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List // front is the oldest key
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates an in-memory deduper. The default bound is
// 50000 keys.
func NewInMemoryDeduper[V any](opts ...Option) Deduper[V] {
	s := settings{maxSize: 50000}
	for _, opt := range opts {
		opt(&s)
	}
	return &inMemoryDeduper[V]{
		seen:    make(map[string]*list.Element),
		order:   list.New(),
		maxSize: s.maxSize,
	}
}

func (d *inMemoryDeduper[V]) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.seen[key] = d.order.PushBack(&entry[V]{key: key})
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper[V]) Complete(_ context.Context, key string, value V) {
	d.mu.Lock()
	defer d.mu.Unlock()

	el, ok := d.seen[key]
	if !ok {
		return
	}
	e := el.Value.(*entry[V])
	e.value = value
	e.done = true
}

func (d *inMemoryDeduper[V]) Lookup(_ context.Context, key string) (V, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var zero V
	el, ok := d.seen[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[V])
	if !e.done {
		return zero, false
	}
	return e.value, true
}

func (d *inMemoryDeduper[V]) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
		d.size.Add(-1)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper[V]) evictOldest() {
	el := d.order.Front()
	if el == nil {
		return
	}
	d.order.Remove(el)
	delete(d.seen, el.Value.(*entry[V]).key)
	d.size.Add(-1)
}

func (d *inMemoryDeduper[V]) Size() int64 {
	return d.size.Load()
}
