// Package redis backs a greenblue buffer with a Redis keyspace.
//
// Both buffers may share one client: each Backend owns the keys under
// "gb:<namespace>:<buffer>:". Keys are written without TTL. The server must
// not run an eviction policy that covers them (use noeviction or volatile-*).
package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/greenblue/internal/util"
	"github.com/unkn0wn-root/greenblue/store"
)

var ErrNilClient = errors.New("redis backend: nil client")

const scanCount = 512

type Backend struct {
	rdb         goredis.UniversalClient
	prefix      string
	closeClient bool
}

var _ store.Backend = (*Backend)(nil)

type Config struct {
	Client    goredis.UniversalClient
	Namespace string
	Buffer    int // 0 or 1
	// CloseClient closes Client on Close. Set it on at most one of the two
	// buffers sharing a client.
	CloseClient bool
}

func New(cfg Config) (*Backend, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Backend{
		rdb:         cfg.Client,
		prefix:      util.BufferPrefix(cfg.Namespace, cfg.Buffer),
		closeClient: cfg.CloseClient,
	}, nil
}

func (b *Backend) key(k string) string { return util.StorageKey(b.prefix, k) }

func (b *Backend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := b.rdb.Get(ctx, b.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (b *Backend) Set(ctx context.Context, key string, value []byte) error {
	return b.rdb.Set(ctx, b.key(key), value, 0).Err()
}

// Len counts the buffer's keys with SCAN. It is O(keyspace) and only meant
// for status reporting.
func (b *Backend) Len(ctx context.Context) (int, error) {
	var (
		n      int
		cursor uint64
	)
	match := b.prefix + "*"
	for {
		keys, next, err := b.rdb.Scan(ctx, cursor, match, scanCount).Result()
		if err != nil {
			return 0, err
		}
		n += len(keys)
		if next == 0 {
			return n, nil
		}
		cursor = next
	}
}

// Close releases the client only when this backend owns it.
// Repeated calls are no-ops.
func (b *Backend) Close(context.Context) error {
	if b.closeClient {
		if err := b.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
