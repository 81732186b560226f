package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/greenblue/codec"
	"github.com/unkn0wn-root/greenblue/internal/wire"
)

type memBackend struct {
	mu     sync.Mutex
	m      map[string][]byte
	getErr error
	setErr error
}

var _ Backend = (*memBackend)(nil)

func newMemBackend() *memBackend { return &memBackend{m: make(map[string][]byte)} }

func (b *memBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.getErr != nil {
		return nil, false, b.getErr
	}
	v, ok := b.m[key]
	return v, ok, nil
}

func (b *memBackend) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.setErr != nil {
		return b.setErr
	}
	b.m[key] = value
	return nil
}

func (b *memBackend) Len(context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.m), nil
}

func (b *memBackend) Close(context.Context) error { return nil }

type item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestBytesRoundTrip(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	s, err := NewBytes(BytesConfig[int, item]{Backend: newMemBackend(), Codec: codec.JSON[item]{}})
	require.NoError(err)

	require.NoError(s.Store(ctx, 7, item{ID: 7, Name: "seven"}))
	require.NoError(s.Store(ctx, 7, item{ID: 7, Name: "SEVEN"}))
	require.Equal(uint64(2), s.Rev())

	v, ok, err := s.Load(ctx, 7)
	require.NoError(err)
	require.True(ok)
	require.Equal(item{ID: 7, Name: "SEVEN"}, v)

	_, ok, err = s.Load(ctx, 8)
	require.NoError(err)
	require.False(ok)

	n, err := s.Len(ctx)
	require.NoError(err)
	require.Equal(1, n)
}

func TestBytesCustomKeyFunc(t *testing.T) {
	ctx := context.Background()
	be := newMemBackend()
	s, err := NewBytes(BytesConfig[string, string]{
		Backend: be,
		Codec:   codec.String{},
		Key:     func(k string) string { return "u/" + k },
	})
	require.NoError(t, err)
	require.NoError(t, s.Store(ctx, "x", "y"))
	_, ok := be.m["u/x"]
	require.True(t, ok)
}

func TestBytesForeignBytesAreAnError(t *testing.T) {
	ctx := context.Background()
	be := newMemBackend()
	be.m["1"] = []byte("not framed")

	s, err := NewBytes(BytesConfig[int, string]{Backend: be, Codec: codec.String{}})
	require.NoError(t, err)

	_, ok, err := s.Load(ctx, 1)
	require.ErrorIs(t, err, wire.ErrCorrupt)
	require.False(t, ok)
}

func TestBytesCodecErrors(t *testing.T) {
	ctx := context.Background()
	lim := codec.Limit[string]{Inner: codec.String{}, MaxEncode: 3}
	s, err := NewBytes(BytesConfig[int, string]{Backend: newMemBackend(), Codec: lim})
	require.NoError(t, err)

	require.ErrorIs(t, s.Store(ctx, 1, "toolong"), codec.ErrTooLarge)
	_, ok, _ := s.Load(ctx, 1)
	require.False(t, ok)
}

func TestBytesBackendErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("down")
	be := newMemBackend()
	s, err := NewBytes(BytesConfig[int, string]{Backend: be, Codec: codec.String{}})
	require.NoError(t, err)

	be.setErr = boom
	require.ErrorIs(t, s.Store(ctx, 1, "v"), boom)

	be.getErr = boom
	_, _, err = s.Load(ctx, 1)
	require.ErrorIs(t, err, boom)
}

func TestNewBytesValidates(t *testing.T) {
	_, err := NewBytes(BytesConfig[int, string]{Codec: codec.String{}})
	require.ErrorIs(t, err, ErrNilBackend)
	_, err = NewBytes(BytesConfig[int, string]{Backend: newMemBackend()})
	require.ErrorIs(t, err, ErrNilCodec)
}
