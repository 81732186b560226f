// Package ristretto backs a greenblue buffer with dgraph-io/ristretto.
//
// Ristretto is an admission cache: Set may drop an item, and writes become
// visible asynchronously. Backend makes both explicit by waiting for the
// write buffers after every Set and verifying the key landed. MaxCost is
// counted in items (every entry costs 1) and must exceed the number of keys
// a buffer will ever hold, otherwise Set fails with ErrRejected.
package ristretto

import (
	"context"
	"errors"
	"fmt"
	"sync"

	rc "github.com/dgraph-io/ristretto"
	"github.com/dgraph-io/ristretto/z"

	"github.com/unkn0wn-root/greenblue/store"
)

var (
	ErrInvalidConfig = errors.New("ristretto: invalid config")
	ErrRejected      = errors.New("ristretto: write rejected")
)

const setAttempts = 3

type Backend struct {
	c *rc.Cache

	mu   sync.Mutex // serializes Set+Wait so the key count stays exact
	keys map[string]struct{}
}

var _ store.Backend = (*Backend)(nil)

type Config struct {
	MaxItems    int64 // upper bound on keys per buffer
	NumCounters int64 // 0 = 10 * MaxItems
	BufferItems int64 // 0 = 64
	Metrics     bool
}

func New(cfg Config) (*Backend, error) {
	return newBackend(cfg, keyToHash)
}

func newBackend(cfg Config, hash func(interface{}) (uint64, uint64)) (*Backend, error) {
	if cfg.MaxItems <= 0 || cfg.NumCounters < 0 || cfg.BufferItems < 0 {
		return nil, ErrInvalidConfig
	}
	if cfg.NumCounters == 0 {
		cfg.NumCounters = 10 * cfg.MaxItems
	}
	if cfg.BufferItems == 0 {
		cfg.BufferItems = 64
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters:        cfg.NumCounters,
		MaxCost:            cfg.MaxItems,
		BufferItems:        cfg.BufferItems,
		Metrics:            cfg.Metrics,
		IgnoreInternalCost: true,
		KeyToHash:          hash,
	})
	if err != nil {
		return nil, err
	}
	return &Backend{c: c, keys: make(map[string]struct{})}, nil
}

// keyToHash returns ristretto's (key, conflict) pair. The conflict hash is
// independent of the key hash so colliding keys are told apart on Get.
func keyToHash(key interface{}) (uint64, uint64) {
	s := key.(string)
	return store.StringHasher(s), z.MemHashString(s)
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := b.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	raw, _ := v.([]byte)
	if raw == nil {
		return nil, false, fmt.Errorf("ristretto: unexpected value type %T", v)
	}
	return raw, true, nil
}

func (b *Backend) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := 0; i < setAttempts; i++ {
		// Set drops items when its buffers are contended; retry after draining them
		if b.c.Set(key, value, 1) {
			b.c.Wait()
			if _, ok := b.c.Get(key); ok {
				b.keys[key] = struct{}{}
				return nil
			}
		}
		b.c.Wait()
	}
	return fmt.Errorf("%w: key %q", ErrRejected, key)
}

func (b *Backend) Len(context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.keys), nil
}

// Metrics exposes ristretto's counters when Config.Metrics is set.
func (b *Backend) Metrics() *rc.Metrics { return b.c.Metrics }

func (b *Backend) Close(context.Context) error {
	b.c.Wait()
	b.c.Close()
	return nil
}
