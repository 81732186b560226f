// Package store defines the backing stores used as greenblue buffers.
//
// A cache owns exactly two stores. While one is served to readers the other
// receives writes, so every implementation must tolerate many concurrent
// Load calls running alongside one Store caller. The engine never issues two
// concurrent Store calls against the same instance.
//
// Implementations:
//   - Map: sharded map with a RWMutex per shard (the default).
//   - SyncMap: sync.Map based, lock-free reads.
//   - Bytes: adapts a byte-oriented Backend (BigCache, Ristretto, Redis) with a codec.
package store

import (
	"context"
	"fmt"
)

// Store is a mutable key/value buffer.
type Store[K comparable, V any] interface {
	// Load returns (value, true, nil) on hit and (zero, false, nil) on miss.
	// An error is reserved for I/O or decode failures of remote/encoded stores.
	Load(ctx context.Context, key K) (V, bool, error)

	// Store inserts or replaces key. It must be fully applied when it returns nil.
	Store(ctx context.Context, key K, value V) error

	// Len reports the number of keys (diagnostics only, may be approximate).
	Len(ctx context.Context) (int, error)

	// Close releases resources.
	Close(ctx context.Context) error
}

// Pair builds the two buffers of a cache with newFn(0) and newFn(1).
// If the second call fails the first store is closed.
func Pair[K comparable, V any](ctx context.Context, newFn func(i int) (Store[K, V], error)) ([2]Store[K, V], error) {
	var out [2]Store[K, V]
	for i := range out {
		s, err := newFn(i)
		if err != nil {
			if i > 0 {
				_ = out[0].Close(ctx)
			}
			return [2]Store[K, V]{}, fmt.Errorf("store: build buffer %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}
