package greenblue

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Lookup when the key is absent from the active buffer.
	ErrNotFound = errors.New("greenblue: not found")
	// ErrCannotSwitch is returned by Flush while another Flush is in progress.
	// It is expected under contention; retry later.
	ErrCannotSwitch = errors.New("greenblue: flush already in progress")
	// ErrCannotWrite means the cache is poisoned (a panic or failed replay inside a
	// write critical section). The instance must be rebuilt.
	ErrCannotWrite = errors.New("greenblue: cache poisoned, writes rejected")
	// ErrDrainTimeout is returned by Flush when readers still hold the buffer being
	// repurposed after Options.DrainTimeout. The next Flush resumes the drain.
	ErrDrainTimeout = errors.New("greenblue: drain timeout")
	ErrClosed       = errors.New("greenblue: cache closed")
)

// ErrWriteRejected is the same condition as ErrCannotWrite.
var ErrWriteRejected = ErrCannotWrite

// ReplayError reports a backend write failure while republishing the pending log.
// The target buffer is left partially replayed, so the cache is poisoned.
type ReplayError struct {
	Buffer  int
	Applied int
	Total   int
	Err     error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("greenblue: replay into buffer %d failed after %d/%d entries: %v",
		e.Buffer, e.Applied, e.Total, e.Err)
}

func (e *ReplayError) Unwrap() error { return e.Err }

func (e *ReplayError) Is(target error) bool { return target == ErrCannotWrite }

// PoisonedError carries the value recovered from a panic inside a write critical section.
type PoisonedError struct {
	Op    string
	Cause any
}

func (e *PoisonedError) Error() string {
	return fmt.Sprintf("greenblue: cache poisoned by panic during %s: %v", e.Op, e.Cause)
}

func (e *PoisonedError) Is(target error) bool { return target == ErrCannotWrite }

// Unwrap exposes the cause when the panic value was itself an error.
func (e *PoisonedError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}
