// Package greenblue implements a double-buffered ("green/blue") in-process cache
// for read-heavy workloads with infrequent, batched writes. Readers never block
// on writers and never observe a buffer while it is being republished.
//
// Components:
//   - Buffers: two store.Store[K,V] instances (sharded map by default; sync.Map,
//     BigCache, Ristretto or Redis through store.Bytes).
//   - Generation pointer: atomic index of the active buffer. Only Flush moves it.
//   - Pending log: writes accepted since the last publish, in append order.
//   - Drain barrier: per-buffer reader leases. Flush waits for the leases on the
//     buffer it repurposes to reach zero before replaying into it.
//
// Lifecycle:
//
//	c, _ := greenblue.New[string, string](greenblue.Options[string, string]{})
//	_ = c.Put(ctx, "k", "v")   // staged, not yet visible
//	_ = c.Flush(ctx)           // publish: swap, drain, replay
//	v, ok := c.Get(ctx, "k")   // "v", true
//
// Readers must not hold on to anything derived from a buffer beyond a single Get
// call. A reader that never returns keeps its lease and Flush fails with
// ErrDrainTimeout once Options.DrainTimeout elapses.
package greenblue
