// Package barrier implements a keyed join barrier: it collects exactly one
// result per expected key and fires a continuation exactly once when the
// last result arrives.
package barrier

import (
	"fmt"
	"sync"
)

// Barrier joins on one delivery per key. The zero value is not usable; use New.
type Barrier[K comparable, V any] struct {
	mu          sync.Mutex
	outstanding int
	expected    map[K]bool
	results     map[K]V
	joined      bool

	exec         Executor
	continuation func(map[K]V)
	done         chan struct{}
}

// New creates a barrier pending on every key in keys. When the last key is
// delivered, continuation runs once on exec with the complete result map.
// With no keys the barrier joins immediately. Duplicate keys are collapsed.
func New[K comparable, V any](keys []K, exec Executor, continuation func(map[K]V)) *Barrier[K, V] {
	if exec == nil {
		exec = Inline{}
	}
	b := &Barrier[K, V]{
		expected:     make(map[K]bool, len(keys)),
		results:      make(map[K]V, len(keys)),
		exec:         exec,
		continuation: continuation,
		done:         make(chan struct{}),
	}
	for _, k := range keys {
		b.expected[k] = true
	}
	b.outstanding = len(b.expected)

	if b.outstanding == 0 {
		b.joined = true
		b.fire()
	}
	return b
}

// Deliver records the result for key. It panics if key was not expected or
// was already delivered: a second completion is a programming error.
func (b *Barrier[K, V]) Deliver(key K, value V) {
	b.mu.Lock()
	if b.joined {
		b.mu.Unlock()
		panic(fmt.Errorf("%w: %v delivered after join", ErrDoubleDelivery, key))
	}
	if !b.expected[key] {
		b.mu.Unlock()
		panic(fmt.Errorf("%w: %v", ErrUnknownKey, key))
	}
	if _, seen := b.results[key]; seen {
		b.mu.Unlock()
		panic(fmt.Errorf("%w: %v", ErrDoubleDelivery, key))
	}
	b.results[key] = value
	b.outstanding--
	last := b.outstanding == 0
	if last {
		b.joined = true
	}
	b.mu.Unlock()

	if last {
		b.fire()
	}
}

// Outstanding returns how many keys are still pending.
func (b *Barrier[K, V]) Outstanding() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outstanding
}

// Joined reports whether every key has been delivered.
func (b *Barrier[K, V]) Joined() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.joined
}

// Done is closed after the continuation has returned.
func (b *Barrier[K, V]) Done() <-chan struct{} {
	return b.done
}

// fire is reached exactly once, by whichever goroutine flipped joined.
func (b *Barrier[K, V]) fire() {
	// results is no longer written once joined, so handing it over is safe.
	results := b.results
	b.exec.Execute(func() {
		defer close(b.done)
		if b.continuation != nil {
			b.continuation(results)
		}
	})
}
