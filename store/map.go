package store

import (
	"context"
	"hash/maphash"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const defaultShards = 32

// MapOptions configures NewMap.
type MapOptions[K comparable] struct {
	Shards   int            // rounded up to a power of two; 0 => 32
	Capacity int            // total preallocation hint, split across shards
	Hasher   func(K) uint64 // nil => hash/maphash over the comparable key
}

// Map is a sharded in-memory store. Each shard is guarded by its own RWMutex,
// so a writer only blocks readers of the shard it is updating.
type Map[K comparable, V any] struct {
	shards []mapShard[K, V]
	mask   uint64
	hash   func(K) uint64
}

type mapShard[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
	_  [32]byte // pad to a 64-byte stride (24-byte RWMutex + map pointer)
}

var _ Store[string, int] = (*Map[string, int])(nil)

func NewMap[K comparable, V any](opts MapOptions[K]) *Map[K, V] {
	n := opts.Shards
	if n <= 0 {
		n = defaultShards
	}
	n = nextPow2(n)

	per := 0
	if opts.Capacity > 0 {
		per = opts.Capacity/n + 1
	}

	m := &Map[K, V]{
		shards: make([]mapShard[K, V], n),
		mask:   uint64(n - 1),
		hash:   opts.Hasher,
	}
	if m.hash == nil {
		seed := maphash.MakeSeed()
		m.hash = func(k K) uint64 { return maphash.Comparable(seed, k) }
	}
	for i := range m.shards {
		m.shards[i].m = make(map[K]V, per)
	}
	return m
}

// StringHasher is an xxhash based Hasher for string keys.
func StringHasher(s string) uint64 { return xxhash.Sum64String(s) }

func (m *Map[K, V]) shard(k K) *mapShard[K, V] {
	return &m.shards[m.hash(k)&m.mask]
}

func (m *Map[K, V]) Load(_ context.Context, key K) (V, bool, error) {
	s := m.shard(key)
	s.mu.RLock()
	v, ok := s.m[key]
	s.mu.RUnlock()
	return v, ok, nil
}

func (m *Map[K, V]) Store(_ context.Context, key K, value V) error {
	s := m.shard(key)
	s.mu.Lock()
	s.m[key] = value
	s.mu.Unlock()
	return nil
}

func (m *Map[K, V]) Len(context.Context) (int, error) {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		n += len(s.m)
		s.mu.RUnlock()
	}
	return n, nil
}

// Range calls fn for every entry, one shard at a time, until fn returns false.
// fn must not call back into m.
func (m *Map[K, V]) Range(fn func(K, V) bool) {
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		for k, v := range s.m {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

func (m *Map[K, V]) Close(context.Context) error { return nil }

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
