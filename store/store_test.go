package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func storesUnderTest() map[string]func() Store[string, int] {
	return map[string]func() Store[string, int]{
		"map":         func() Store[string, int] { return NewMap[string, int](MapOptions[string]{Shards: 4}) },
		"map/xxhash":  func() Store[string, int] { return NewMap[string, int](MapOptions[string]{Hasher: StringHasher}) },
		"syncmap":     func() Store[string, int] { return NewSyncMap[string, int]() },
		"map/oddsize": func() Store[string, int] { return NewMap[string, int](MapOptions[string]{Shards: 5, Capacity: 100}) },
	}
}

func TestStoreLoadStoreLen(t *testing.T) {
	ctx := context.Background()
	for name, mk := range storesUnderTest() {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			s := mk()

			_, ok, err := s.Load(ctx, "missing")
			require.NoError(err)
			require.False(ok)

			require.NoError(s.Store(ctx, "a", 1))
			require.NoError(s.Store(ctx, "b", 2))
			require.NoError(s.Store(ctx, "a", 3))

			v, ok, err := s.Load(ctx, "a")
			require.NoError(err)
			require.True(ok)
			require.Equal(3, v)

			n, err := s.Len(ctx)
			require.NoError(err)
			require.Equal(2, n)

			require.NoError(s.Close(ctx))
		})
	}
}

func TestStoreConcurrentReadersOneWriter(t *testing.T) {
	ctx := context.Background()
	for name, mk := range storesUnderTest() {
		t.Run(name, func(t *testing.T) {
			s := mk()
			const keys = 256

			var wg sync.WaitGroup
			stop := make(chan struct{})
			for r := 0; r < 4; r++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for {
						select {
						case <-stop:
							return
						default:
						}
						for i := 0; i < keys; i++ {
							if v, ok, _ := s.Load(ctx, fmt.Sprint(i)); ok && v != i {
								t.Errorf("key %d read %d", i, v)
								return
							}
						}
					}
				}()
			}
			for i := 0; i < keys; i++ {
				_ = s.Store(ctx, fmt.Sprint(i), i)
			}
			close(stop)
			wg.Wait()

			n, _ := s.Len(ctx)
			require.Equal(t, keys, n)
		})
	}
}

func TestMapRangeStopsEarly(t *testing.T) {
	ctx := context.Background()
	m := NewMap[int, int](MapOptions[int]{})
	for i := 0; i < 10; i++ {
		require.NoError(t, m.Store(ctx, i, i*i))
	}
	seen := 0
	m.Range(func(k, v int) bool {
		require.Equal(t, k*k, v)
		seen++
		return seen < 3
	})
	require.Equal(t, 3, seen)
}

func TestSyncMapNilInterfaceValue(t *testing.T) {
	ctx := context.Background()
	s := NewSyncMap[string, error]()
	require.NoError(t, s.Store(ctx, "k", nil))
	v, ok, err := s.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Nil(t, v)
}

func TestNextPow2(t *testing.T) {
	for in, want := range map[int]int{1: 1, 2: 2, 3: 4, 31: 32, 32: 32, 33: 64} {
		require.Equal(t, want, nextPow2(in), "nextPow2(%d)", in)
	}
}

func TestPairClosesFirstOnError(t *testing.T) {
	closed := false
	boom := errors.New("boom")
	_, err := Pair[string, int](context.Background(), func(i int) (Store[string, int], error) {
		if i == 1 {
			return nil, boom
		}
		return &closeSpy{SyncMap: NewSyncMap[string, int](), closed: &closed}, nil
	})
	require.ErrorIs(t, err, boom)
	require.True(t, closed)
}

func TestPairBuildsTwoDistinctStores(t *testing.T) {
	pair, err := Pair[string, int](context.Background(), func(int) (Store[string, int], error) {
		return NewMap[string, int](MapOptions[string]{}), nil
	})
	require.NoError(t, err)
	require.NotSame(t, pair[0], pair[1])
}

type closeSpy struct {
	*SyncMap[string, int]
	closed *bool
}

func (c *closeSpy) Close(ctx context.Context) error {
	*c.closed = true
	return c.SyncMap.Close(ctx)
}

func TestMapShardStride(t *testing.T) {
	if unsafe.Sizeof(uintptr(0)) != 8 {
		t.Skip("stride is sized for 64-bit platforms")
	}
	require.EqualValues(t, 64, unsafe.Sizeof(mapShard[string, int]{}))
	require.EqualValues(t, 64, unsafe.Sizeof(mapShard[int, []byte]{}))
}
