package greenblue

import (
	"context"
	"time"

	"github.com/unkn0wn-root/greenblue/store"
)

// Cache is the double-buffered cache API.
// K is the key type, V the value type. All methods are safe for concurrent use.
type Cache[K comparable, V any] interface {
	// Put stages a write. It becomes visible to readers after the next Flush.
	Put(ctx context.Context, key K, value V) error

	// Get reads from the active buffer. A miss (or a backend read error) yields ok=false.
	Get(ctx context.Context, key K) (v V, ok bool)
	// GetMany reads all keys against a single generation. Results follow the order of keys.
	GetMany(ctx context.Context, keys []K) []Result[V]
	// Lookup is Get in result form: a miss returns ErrNotFound.
	Lookup(ctx context.Context, key K) (V, error)

	// Flush publishes staged writes. Only one Flush runs at a time; a concurrent
	// call fails fast with ErrCannotSwitch.
	Flush(ctx context.Context) error

	// Status is a side-effect free diagnostic snapshot.
	Status(ctx context.Context) Status
	Close(ctx context.Context) error
}

// Result is one slot of a GetMany answer.
type Result[V any] struct {
	Value V
	Found bool
}

// Options tune the cache. The zero value is usable.
type Options[K comparable, V any] struct {
	// Buffers are the two backing stores. Either both are set or both are nil
	// (nil => two store.Map instances). The cache owns them and closes them on Close.
	Buffers [2]store.Store[K, V]

	Name         string        // log/metric label; "" => "greenblue"
	Capacity     int           // preallocation hint for default buffers and the pending log
	DrainTimeout time.Duration // 0 => 5s; negative => wait until ctx is done
	Logger       Logger        // nil => NopLogger
	Hooks        Hooks         // nil => NopHooks
}

func New[K comparable, V any](opts Options[K, V]) (Cache[K, V], error) {
	return newCache[K, V](opts)
}
