package store

import (
	"context"
	"sync"
	"sync/atomic"
)

// SyncMap is a sync.Map backed store. Reads of stable keys take no lock,
// which suits buffers that are written once per flush and read many times.
type SyncMap[K comparable, V any] struct {
	m sync.Map
	n atomic.Int64
}

var _ Store[string, int] = (*SyncMap[string, int])(nil)

func NewSyncMap[K comparable, V any]() *SyncMap[K, V] { return &SyncMap[K, V]{} }

func (s *SyncMap[K, V]) Load(_ context.Context, key K) (V, bool, error) {
	v, ok := s.m.Load(key)
	if !ok {
		var zero V
		return zero, false, nil
	}
	val, _ := v.(V) // nil interface values are stored as-is
	return val, true, nil
}

func (s *SyncMap[K, V]) Store(_ context.Context, key K, value V) error {
	if _, loaded := s.m.Swap(key, value); !loaded {
		s.n.Add(1)
	}
	return nil
}

func (s *SyncMap[K, V]) Len(context.Context) (int, error) { return int(s.n.Load()), nil }

func (s *SyncMap[K, V]) Range(fn func(K, V) bool) {
	s.m.Range(func(k, v any) bool {
		val, _ := v.(V)
		return fn(k.(K), val)
	})
}

func (s *SyncMap[K, V]) Close(context.Context) error { return nil }
