package greenblue

import "sync"

type entry[K comparable, V any] struct {
	Key   K
	Value V
	Seq   uint64
}

// pendingLog holds accepted writes not yet present in both buffers, in append order.
// Mutations happen under the cache write mutex; mu only makes length and
// snapshot reads safe from Status.
type pendingLog[K comparable, V any] struct {
	mu      sync.Mutex
	entries []entry[K, V]
	seq     uint64
	hint    int
}

func newPendingLog[K comparable, V any](capacity int) *pendingLog[K, V] {
	return &pendingLog[K, V]{
		entries: make([]entry[K, V], 0, capacity),
		hint:    capacity,
	}
}

func (l *pendingLog[K, V]) append(key K, value V) uint64 {
	l.mu.Lock()
	l.seq++
	l.entries = append(l.entries, entry[K, V]{Key: key, Value: value, Seq: l.seq})
	s := l.seq
	l.mu.Unlock()
	return s
}

// drain returns every entry and leaves the log empty.
func (l *pendingLog[K, V]) drain() []entry[K, V] {
	l.mu.Lock()
	out := l.entries
	l.entries = make([]entry[K, V], 0, l.hint)
	l.mu.Unlock()
	return out
}

// snapshot returns a copy of the current entries without clearing them.
func (l *pendingLog[K, V]) snapshot() []entry[K, V] {
	l.mu.Lock()
	out := make([]entry[K, V], len(l.entries))
	copy(out, l.entries)
	l.mu.Unlock()
	return out
}

func (l *pendingLog[K, V]) len() int {
	l.mu.Lock()
	n := len(l.entries)
	l.mu.Unlock()
	return n
}
