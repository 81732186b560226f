package greenblue

import (
	"context"
	"sync/atomic"
	"time"
)

// barrier tracks reader leases per buffer so Flush can tell when the buffer it is
// about to repurpose has no reader left.
//
// Readers only touch atomics. A waiting drainer is woken through a one-slot
// channel when the lease count of its buffer drops to zero.
type barrier struct {
	leases  [2]atomic.Int64
	waiting [2]atomic.Bool
	notify  [2]chan struct{}
}

func newBarrier() *barrier {
	b := &barrier{}
	for i := range b.notify {
		b.notify[i] = make(chan struct{}, 1)
	}
	return b
}

// acquire leases the active buffer and returns its index.
// The index is re-read after the increment: if a swap slipped in between, the
// lease may already be invisible to the drainer, so it is dropped and retried.
func (b *barrier) acquire(p *pointer) uint32 {
	for {
		i := p.current()
		b.leases[i].Add(1)
		if p.current() == i {
			return i
		}
		b.release(i)
	}
}

func (b *barrier) release(i uint32) {
	if b.leases[i].Add(-1) == 0 && b.waiting[i].Load() {
		select {
		case b.notify[i] <- struct{}{}:
		default:
		}
	}
}

func (b *barrier) readers(i uint32) int64 { return b.leases[i].Load() }

// wait blocks until buffer i has no outstanding lease.
// timeout <= 0 waits until ctx is done.
func (b *barrier) wait(ctx context.Context, i uint32, timeout time.Duration) error {
	if b.leases[i].Load() == 0 {
		return nil
	}

	b.waiting[i].Store(true)
	defer b.waiting[i].Store(false)

	// discard a wakeup left over from an earlier drain
	select {
	case <-b.notify[i]:
	default:
	}

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	for {
		if b.leases[i].Load() == 0 {
			return nil
		}
		select {
		case <-b.notify[i]:
		case <-expired:
			if b.leases[i].Load() == 0 {
				return nil
			}
			return ErrDrainTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
