package bigcache

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/greenblue/codec"
	"github.com/unkn0wn-root/greenblue/store"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(context.Background(), Config{Shards: 8, MaxEntriesInWindow: 128, MaxEntrySize: 64})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close(context.Background()) })
	return b
}

func TestBackendGetSetLen(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	b := newTestBackend(t)

	_, ok, err := b.Get(ctx, "nope")
	require.NoError(err)
	require.False(ok)

	require.NoError(b.Set(ctx, "k", []byte("v1")))
	require.NoError(b.Set(ctx, "k", []byte("v2")))
	v, ok, err := b.Get(ctx, "k")
	require.NoError(err)
	require.True(ok)
	require.Equal([]byte("v2"), v)

	n, err := b.Len(ctx)
	require.NoError(err)
	require.Equal(1, n)
}

func TestBackendAsBuffer(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewBytes(store.BytesConfig[int, string]{Backend: newTestBackend(t), Codec: codec.String{}})
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		require.NoError(t, s.Store(ctx, i, fmt.Sprintf("@%d", 100*i)))
	}
	for i := 0; i < 1000; i++ {
		v, ok, err := s.Load(ctx, i)
		require.NoError(t, err)
		require.True(t, ok, "key %d evicted", i)
		require.Equal(t, fmt.Sprintf("@%d", 100*i), v)
	}
}
