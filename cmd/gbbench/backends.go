package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/greenblue/codec"
	"github.com/unkn0wn-root/greenblue/store"
	"github.com/unkn0wn-root/greenblue/store/bigcache"
	"github.com/unkn0wn-root/greenblue/store/redis"
	"github.com/unkn0wn-root/greenblue/store/ristretto"
)

func newBuffers(ctx context.Context, kind, addr string, capacity int) ([2]store.Store[string, string], error) {
	switch kind {
	case "map":
		return store.Pair(ctx, func(int) (store.Store[string, string], error) {
			return store.NewMap[string, string](store.MapOptions[string]{Capacity: capacity, Hasher: store.StringHasher}), nil
		})
	case "syncmap":
		return store.Pair(ctx, func(int) (store.Store[string, string], error) {
			return store.NewSyncMap[string, string](), nil
		})
	case "bigcache":
		return bytesPair(ctx, func(int) (store.Backend, error) {
			return bigcache.New(ctx, bigcache.Config{MaxEntriesInWindow: capacity, MaxEntrySize: 64})
		})
	case "ristretto":
		return bytesPair(ctx, func(int) (store.Backend, error) {
			return ristretto.New(ristretto.Config{MaxItems: int64(capacity) + 1})
		})
	case "redis":
		rdb := goredis.NewClient(&goredis.Options{Addr: addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return [2]store.Store[string, string]{}, fmt.Errorf("redis %s: %w", addr, err)
		}
		return bytesPair(ctx, func(i int) (store.Backend, error) {
			return redis.New(redis.Config{Client: rdb, Namespace: "gbbench", Buffer: i, CloseClient: i == 1})
		})
	default:
		return [2]store.Store[string, string]{}, fmt.Errorf("unknown backend %q", kind)
	}
}

func bytesPair(ctx context.Context, newBackend func(i int) (store.Backend, error)) ([2]store.Store[string, string], error) {
	return store.Pair(ctx, func(i int) (store.Store[string, string], error) {
		be, err := newBackend(i)
		if err != nil {
			return nil, err
		}
		return store.NewBytes(store.BytesConfig[string, string]{
			Backend: be,
			Codec:   codec.String{},
			Key:     func(k string) string { return k },
		})
	})
}
