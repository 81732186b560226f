package ristretto

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/greenblue/codec"
	"github.com/unkn0wn-root/greenblue/store"
)

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{})
	require.ErrorIs(t, err, ErrInvalidConfig)
	_, err = New(Config{MaxItems: 10, NumCounters: -1})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestBackendWritesAreImmediatelyVisible(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	b, err := New(Config{MaxItems: 1 << 12, Metrics: true})
	require.NoError(err)
	defer b.Close(ctx)

	for i := 0; i < 500; i++ {
		k := fmt.Sprintf("k%d", i)
		require.NoError(b.Set(ctx, k, []byte(k)))
		v, ok, err := b.Get(ctx, k)
		require.NoError(err)
		require.True(ok, "key %s not visible after Set", k)
		require.Equal([]byte(k), v)
	}
	require.NoError(b.Set(ctx, "k0", []byte("again")))

	n, err := b.Len(ctx)
	require.NoError(err)
	require.Equal(500, n)
	require.NotNil(b.Metrics())
}

func TestBackendAsBuffer(t *testing.T) {
	ctx := context.Background()
	be, err := New(Config{MaxItems: 1024})
	require.NoError(t, err)
	s, err := store.NewBytes(store.BytesConfig[int, string]{Backend: be, Codec: codec.String{}})
	require.NoError(t, err)
	defer s.Close(ctx)

	require.NoError(t, s.Store(ctx, 1, "one"))
	v, ok, err := s.Load(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "one", v)
}

func TestCollidingKeysAreNotAliased(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	// every key lands on the same primary hash; only the conflict hash differs
	collide := func(key interface{}) (uint64, uint64) {
		_, conflict := keyToHash(key)
		return 1, conflict
	}
	b, err := newBackend(Config{MaxItems: 16}, collide)
	require.NoError(err)
	defer b.Close(ctx)

	require.NoError(b.Set(ctx, "a", []byte("A")))
	require.ErrorIs(b.Set(ctx, "b", []byte("B")), ErrRejected)

	_, ok, err := b.Get(ctx, "b")
	require.NoError(err)
	require.False(ok, "b resolved to a's entry")

	v, ok, err := b.Get(ctx, "a")
	require.NoError(err)
	require.True(ok)
	require.Equal([]byte("A"), v)
}

func TestKeyToHashConflictIsIndependent(t *testing.T) {
	k1, c1 := keyToHash("user:1")
	k2, c2 := keyToHash("user:2")
	require.NotZero(t, c1)
	require.NotEqual(t, k1, c1)
	require.NotEqual(t, c1, c2)
	require.NotEqual(t, k1, k2)
}
