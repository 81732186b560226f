package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/unkn0wn-root/greenblue/codec"
	"github.com/unkn0wn-root/greenblue/internal/wire"
)

// Backend is a byte-oriented key/value store. Implementations live in the
// bigcache, ristretto and redis subpackages.
//
// Backends must not evict: a buffer that silently drops keys would make the
// two buffers diverge after a flush. Each subpackage documents how it is
// configured to honor that.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Len(ctx context.Context) (int, error)
	Close(ctx context.Context) error
}

// KeyFunc maps a cache key to a backend key. It must be injective.
type KeyFunc[K comparable] func(K) string

var (
	ErrNilBackend = errors.New("store: nil backend")
	ErrNilCodec   = errors.New("store: nil codec")
)

type BytesConfig[K comparable, V any] struct {
	Backend Backend
	Codec   codec.Codec[V]
	// Key defaults to fmt.Sprint, which is injective for strings and integers.
	Key KeyFunc[K]
}

// Bytes adapts a Backend to Store by framing codec output.
type Bytes[K comparable, V any] struct {
	be    Backend
	codec codec.Codec[V]
	key   KeyFunc[K]
	rev   atomic.Uint64
}

var _ Store[string, []byte] = (*Bytes[string, []byte])(nil)

func NewBytes[K comparable, V any](cfg BytesConfig[K, V]) (*Bytes[K, V], error) {
	if cfg.Backend == nil {
		return nil, ErrNilBackend
	}
	if cfg.Codec == nil {
		return nil, ErrNilCodec
	}
	kf := cfg.Key
	if kf == nil {
		kf = func(k K) string { return fmt.Sprint(k) }
	}
	return &Bytes[K, V]{be: cfg.Backend, codec: cfg.Codec, key: kf}, nil
}

func (s *Bytes[K, V]) Load(ctx context.Context, key K) (V, bool, error) {
	var zero V
	raw, ok, err := s.be.Get(ctx, s.key(key))
	if err != nil || !ok {
		return zero, false, err
	}
	_, payload, err := wire.Decode(raw)
	if err != nil {
		return zero, false, err
	}
	v, err := s.codec.Decode(payload)
	if err != nil {
		return zero, false, fmt.Errorf("store: decode: %w", err)
	}
	return v, true, nil
}

func (s *Bytes[K, V]) Store(ctx context.Context, key K, value V) error {
	payload, err := s.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	return s.be.Set(ctx, s.key(key), wire.Encode(s.rev.Add(1), payload))
}

// Rev reports the revision stamped on the latest write.
func (s *Bytes[K, V]) Rev() uint64 { return s.rev.Load() }

func (s *Bytes[K, V]) Len(ctx context.Context) (int, error) { return s.be.Len(ctx) }

func (s *Bytes[K, V]) Close(ctx context.Context) error { return s.be.Close(ctx) }
