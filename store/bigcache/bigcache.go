// Package bigcache backs a greenblue buffer with allegro/bigcache.
package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/greenblue/store"
)

// lifeWindow keeps bigcache from expiring entries on the write path.
const lifeWindow = 100 * 365 * 24 * time.Hour

type Backend struct {
	c *bc.BigCache
}

var _ store.Backend = (*Backend)(nil)

type Config struct {
	Shards             int // power of two; 0 = 64
	MaxEntriesInWindow int // initial sizing hint; 0 = 4096
	MaxEntrySize       int // initial sizing hint in bytes; 0 = 256
	Hasher             bc.Hasher
}

// hasher routes bigcache key hashing through xxhash.
type hasher struct{}

func (hasher) Sum64(s string) uint64 { return store.StringHasher(s) }

// New builds a non-evicting bigcache: no clean window, no hard size limit.
// Keys whose 64-bit hashes collide replace each other, so Hasher must be
// well distributed.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	conf := bc.DefaultConfig(lifeWindow)
	conf.CleanWindow = 0
	conf.HardMaxCacheSize = 0
	conf.Verbose = false
	// bigcache preallocates about MaxEntriesInWindow*MaxEntrySize bytes.
	// Its own defaults reserve ~300MB per buffer.
	conf.Shards = orDefault(cfg.Shards, 64)
	conf.MaxEntriesInWindow = orDefault(cfg.MaxEntriesInWindow, 4096)
	conf.MaxEntrySize = orDefault(cfg.MaxEntrySize, 256)
	conf.Hasher = cfg.Hasher
	if conf.Hasher == nil {
		conf.Hasher = hasher{}
	}
	c, err := bc.New(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &Backend{c: c}, nil
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, err := b.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (b *Backend) Set(_ context.Context, key string, value []byte) error {
	return b.c.Set(key, value)
}

func (b *Backend) Len(context.Context) (int, error) { return b.c.Len(), nil }

func (b *Backend) Close(context.Context) error { return b.c.Close() }

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
