package greenblue

import "time"

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking: FlushRejected and StoreError
// may fire on hot paths.
type Hooks interface {
	// A Flush finished. epoch is the generation count after the swap,
	// replayed the number of log entries applied to the stale buffer.
	FlushCompleted(epoch uint64, replayed int, drain time.Duration)

	// A Flush was refused. reason ∈ {"in_progress", "poisoned", "closed"}
	FlushRejected(reason string)

	// Readers kept a lease on buffer past the drain timeout.
	DrainTimeout(buffer int, readers int64, waited time.Duration)

	// A backing store returned an error. op ∈ {"get", "put", "replay", "len"}
	StoreError(op string, buffer int, err error)

	// The cache was poisoned and will reject writes from now on.
	Poisoned(err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) FlushCompleted(uint64, int, time.Duration) {}
func (NopHooks) FlushRejected(string)                      {}
func (NopHooks) DrainTimeout(int, int64, time.Duration)    {}
func (NopHooks) StoreError(string, int, error)             {}
func (NopHooks) Poisoned(error)                            {}
