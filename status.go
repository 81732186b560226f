package greenblue

import (
	"context"
	"fmt"
)

// Status is a point-in-time diagnostic view. Fields are read independently and
// may be mutually inconsistent under concurrent writes.
type Status struct {
	Name     string
	Active   int      // index of the buffer served to readers
	Epoch    uint64   // swaps performed so far
	Items    [2]int   // per-buffer entry count; -1 when the store could not report
	Readers  [2]int64 // outstanding reader leases per buffer
	Pending  int      // log entries not yet cut by a flush
	InFlight int      // entries cut by a flush still waiting for its drain
	Poisoned bool
}

func (s Status) String() string {
	return fmt.Sprintf("%s: green %d items %d readers // blue %d items %d readers // pending %d in-flight %d active %d epoch %d poisoned %t",
		s.Name, s.Items[0], s.Readers[0], s.Items[1], s.Readers[1],
		s.Pending, s.InFlight, s.Active, s.Epoch, s.Poisoned)
}

// Status never leases a buffer, so calling it cannot delay a drain.
func (c *cache[K, V]) Status(ctx context.Context) Status {
	s := Status{
		Name:     c.name,
		Active:   int(c.ptr.current()),
		Epoch:    c.ptr.generation(),
		Pending:  c.pending.len(),
		InFlight: int(c.inFlight.Load()),
		Poisoned: c.poisoned() != nil,
	}
	for i := range c.buffers {
		s.Readers[i] = c.bar.readers(uint32(i))
		if c.closed.Load() {
			s.Items[i] = -1
			continue
		}
		n, err := c.buffers[i].Len(ctx)
		if err != nil {
			c.hooks.StoreError("len", i, err)
			n = -1
		}
		s.Items[i] = n
	}
	return s
}
