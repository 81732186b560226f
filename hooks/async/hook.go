// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    StoreErrorEvery: 100, // a failing remote buffer errors on every read
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := greenblue.New[string, User](greenblue.Options[string, User]{
//	    Name:  "users",
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/greenblue"
)

type Hooks struct {
	inner   greenblue.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards q against send-after-close
	closed  bool
	dropped atomic.Uint64
}

var _ greenblue.Hooks = (*Hooks)(nil)

func New(inner greenblue.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close stops accepting events and waits for queued ones to run.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports events discarded because the queue was full or closed.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) FlushRejected(r string) { h.try(func() { h.inner.FlushRejected(r) }) }
func (h *Hooks) Poisoned(err error)     { h.try(func() { h.inner.Poisoned(err) }) }
func (h *Hooks) FlushCompleted(epoch uint64, n int, d time.Duration) {
	h.try(func() { h.inner.FlushCompleted(epoch, n, d) })
}
func (h *Hooks) DrainTimeout(buf int, readers int64, d time.Duration) {
	h.try(func() { h.inner.DrainTimeout(buf, readers, d) })
}
func (h *Hooks) StoreError(op string, buf int, err error) {
	h.try(func() { h.inner.StoreError(op, buf, err) })
}
