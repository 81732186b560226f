package greenblue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/greenblue/store"
)

type cache[K comparable, V any] struct {
	name         string
	buffers      [2]store.Store[K, V]
	ptr          pointer
	bar          *barrier
	pending      *pendingLog[K, V]
	log          Logger
	hooks        Hooks
	drainTimeout time.Duration

	// writeMu serializes Put, the swap+cut step and replay.
	// Readers never take it.
	writeMu sync.Mutex

	// flushMu is the flush permit; it is only ever TryLock'ed.
	flushMu sync.Mutex
	// A flush that swapped but could not drain leaves its cut batch here;
	// the next Flush resumes it instead of swapping again. Guarded by flushMu.
	unsettled *flushBatch[K, V]
	// length of unsettled.entries, readable without the permit
	inFlight atomic.Int64

	poison    atomic.Pointer[poisonState]
	closed    atomic.Bool
	closeOnce sync.Once
}

// flushBatch is the part of the pending log that was cut at swap time and
// still has to be replayed into stale.
type flushBatch[K comparable, V any] struct {
	stale   uint32
	epoch   uint64
	entries []entry[K, V]
}

type poisonState struct{ err error }

func newCache[K comparable, V any](opts Options[K, V]) (*cache[K, V], error) {
	if opts.Capacity < 0 {
		return nil, fmt.Errorf("greenblue: negative capacity %d", opts.Capacity)
	}
	b0, b1 := opts.Buffers[0], opts.Buffers[1]
	if (b0 == nil) != (b1 == nil) {
		return nil, fmt.Errorf("greenblue: both buffers must be set, or neither")
	}
	if b0 == nil {
		mo := store.MapOptions[K]{Capacity: opts.Capacity}
		b0, b1 = store.NewMap[K, V](mo), store.NewMap[K, V](mo)
	}

	c := &cache[K, V]{
		buffers: [2]store.Store[K, V]{b0, b1},
		bar:     newBarrier(),
		pending: newPendingLog[K, V](opts.Capacity),
	}

	// defaults
	c.name = coalesce(opts.Name, defaultName)
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.drainTimeout = coalesce(opts.DrainTimeout, defaultDrainTimeout)
	if c.drainTimeout < 0 {
		c.drainTimeout = 0 // unbounded; only ctx ends the wait
	}

	return c, nil
}

func (c *cache[K, V]) Put(ctx context.Context, key K, value V) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := c.poisoned(); err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	defer c.recoverPoison("put")

	// Close or a failed replay may have run while we were queued on the mutex
	if c.closed.Load() {
		return ErrClosed
	}
	if err := c.poisoned(); err != nil {
		return err
	}

	i := c.ptr.staging()
	if err := c.buffers[i].Store(ctx, key, value); err != nil {
		c.hooks.StoreError("put", int(i), err)
		return fmt.Errorf("greenblue: put into buffer %d: %w", i, err)
	}
	c.pending.append(key, value)
	return nil
}

func (c *cache[K, V]) Get(ctx context.Context, key K) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	i := c.bar.acquire(&c.ptr)
	defer c.bar.release(i)
	return c.load(ctx, i, key)
}

func (c *cache[K, V]) GetMany(ctx context.Context, keys []K) []Result[V] {
	out := make([]Result[V], len(keys))
	if len(keys) == 0 || c.closed.Load() {
		return out
	}
	i := c.bar.acquire(&c.ptr)
	defer c.bar.release(i)
	for n, k := range keys {
		v, ok := c.load(ctx, i, k)
		out[n] = Result[V]{Value: v, Found: ok}
	}
	return out
}

func (c *cache[K, V]) Lookup(ctx context.Context, key K) (V, error) {
	v, ok := c.Get(ctx, key)
	if !ok {
		return v, ErrNotFound
	}
	return v, nil
}

// load reads key from buffer i. The caller holds a lease on i.
func (c *cache[K, V]) load(ctx context.Context, i uint32, key K) (V, bool) {
	v, ok, err := c.buffers[i].Load(ctx, key)
	if err != nil {
		c.hooks.StoreError("get", int(i), err)
		c.log.Warn("buffer read failed, reporting miss", Fields{"cache": c.name, "buffer": i, "err": err})
		var zero V
		return zero, false
	}
	return v, ok
}

// Flush publishes staged writes:
//  1. take the flush permit or fail with ErrCannotSwitch
//  2. under the write mutex, swap the generation and cut the pending log
//  3. wait until no reader leases the stale buffer
//  4. under the write mutex, replay the cut batch into stale, then re-apply
//     writes that arrived after the swap so stale keeps the newest values
//
// Writes racing with a Flush stay in the log and are published by the next one.
func (c *cache[K, V]) Flush(ctx context.Context) error {
	if c.closed.Load() {
		c.hooks.FlushRejected("closed")
		return ErrClosed
	}
	if !c.flushMu.TryLock() {
		c.hooks.FlushRejected("in_progress")
		c.log.Debug("flush rejected, another flush in progress", Fields{"cache": c.name})
		return ErrCannotSwitch
	}
	defer c.flushMu.Unlock()

	if err := c.poisoned(); err != nil {
		c.hooks.FlushRejected("poisoned")
		return err
	}

	start := time.Now()
	batch := c.unsettled
	if batch == nil {
		batch = c.swapAndCut()
		c.unsettled = batch
		c.inFlight.Store(int64(len(batch.entries)))
	} else {
		c.log.Debug("resuming unsettled flush", Fields{"cache": c.name, "buffer": batch.stale, "entries": len(batch.entries)})
	}

	if err := c.bar.wait(ctx, batch.stale, c.drainTimeout); err != nil {
		waited := time.Since(start)
		readers := c.bar.readers(batch.stale)
		if errors.Is(err, ErrDrainTimeout) {
			c.hooks.DrainTimeout(int(batch.stale), readers, waited)
			c.log.Warn("flush drain timed out", Fields{"cache": c.name, "buffer": batch.stale, "readers": readers, "waited": waited})
		}
		return fmt.Errorf("greenblue: drain buffer %d (%d readers): %w", batch.stale, readers, err)
	}
	drain := time.Since(start)

	replayed, err := c.replay(ctx, batch)
	if err != nil {
		if errors.Is(err, ErrClosed) {
			c.hooks.FlushRejected("closed")
		}
		return err
	}
	c.unsettled = nil
	c.inFlight.Store(0)

	c.hooks.FlushCompleted(batch.epoch, replayed, drain)
	c.log.Debug("flush completed", Fields{
		"cache":    c.name,
		"epoch":    batch.epoch,
		"stale":    batch.stale,
		"replayed": replayed,
		"drain":    drain,
		"took":     time.Since(start),
	})
	return nil
}

func (c *cache[K, V]) swapAndCut() *flushBatch[K, V] {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	entries := c.pending.drain()
	stale := c.ptr.swap()
	return &flushBatch[K, V]{stale: stale, epoch: c.ptr.generation(), entries: entries}
}

func (c *cache[K, V]) replay(ctx context.Context, b *flushBatch[K, V]) (n int, err error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	defer c.recoverPoison("replay")

	if c.closed.Load() {
		return 0, ErrClosed
	}

	// a cancelled flush must not leave a half-replayed buffer behind
	ctx = context.WithoutCancel(ctx)

	// writes made after the swap already sit in stale; re-applying them after the
	// cut batch restores last-write-wins for keys written on both sides of the swap
	racing := c.pending.snapshot()
	total := len(b.entries) + len(racing)
	dst := c.buffers[b.stale]
	for _, set := range [][]entry[K, V]{b.entries, racing} {
		for _, e := range set {
			if err := dst.Store(ctx, e.Key, e.Value); err != nil {
				c.hooks.StoreError("replay", int(b.stale), err)
				rerr := &ReplayError{Buffer: int(b.stale), Applied: n, Total: total, Err: err}
				c.setPoison(rerr)
				return n, rerr
			}
			n++
		}
	}
	return len(b.entries), nil
}

func (c *cache[K, V]) poisoned() error {
	if p := c.poison.Load(); p != nil {
		return p.err
	}
	return nil
}

func (c *cache[K, V]) setPoison(err error) {
	if c.poison.CompareAndSwap(nil, &poisonState{err: err}) {
		c.hooks.Poisoned(err)
		c.log.Error("cache poisoned, writes are rejected from now on", Fields{"cache": c.name, "err": err})
	}
}

// recoverPoison must be deferred directly. It poisons the cache on panic and
// re-panics so the failure still surfaces in the calling goroutine.
func (c *cache[K, V]) recoverPoison(op string) {
	if r := recover(); r != nil {
		c.setPoison(&PoisonedError{Op: op, Cause: r})
		panic(r)
	}
}

func (c *cache[K, V]) Close(ctx context.Context) error {
	var errs []error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		// wait out an in-progress Put or replay
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		for i, b := range c.buffers {
			if err := b.Close(ctx); err != nil {
				errs = append(errs, fmt.Errorf("greenblue: close buffer %d: %w", i, err))
			}
		}
	})
	return errors.Join(errs...)
}
