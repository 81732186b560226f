package greenblue

import "sync/atomic"

// pointer selects the active buffer. idx is always 0 or 1; the staging buffer is 1-idx.
// swap is only called with the flush permit and the write mutex held.
type pointer struct {
	idx   atomic.Uint32
	epoch atomic.Uint64 // completed swaps
}

func (p *pointer) current() uint32 { return p.idx.Load() }

func (p *pointer) staging() uint32 { return 1 - p.idx.Load() }

// swap flips the active buffer and returns the index that stopped being active.
// Calls already holding the old index keep using it.
func (p *pointer) swap() uint32 {
	for {
		old := p.idx.Load()
		if p.idx.CompareAndSwap(old, 1-old) {
			p.epoch.Add(1)
			return old
		}
	}
}

func (p *pointer) generation() uint64 { return p.epoch.Load() }
