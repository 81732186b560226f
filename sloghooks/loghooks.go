// Package sloghooks reports greenblue.Hooks events through log/slog.
package sloghooks

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/greenblue"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	StoreErrorEvery    uint64
	FlushRejectedEvery uint64
	// Log every completed flush at Debug. Off by default.
	FlushCompleted bool
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	storeErrCtr atomic.Uint64
	rejectCtr   atomic.Uint64
}

var _ greenblue.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) FlushCompleted(epoch uint64, replayed int, drain time.Duration) {
	if h.l == nil || !h.opts.FlushCompleted {
		return
	}
	h.l.Debug("greenblue.flush_completed",
		"epoch", epoch,
		"replayed", replayed,
		"drain", drain)
}

func (h *Hooks) FlushRejected(reason string) {
	if h.l == nil || !sample(h.opts.FlushRejectedEvery, &h.rejectCtr) {
		return
	}
	h.l.Info("greenblue.flush_rejected", "reason", reason)
}

func (h *Hooks) DrainTimeout(buffer int, readers int64, waited time.Duration) {
	if h.l == nil {
		return
	}
	h.l.Warn("greenblue.drain_timeout",
		"buffer", buffer,
		"readers", readers,
		"waited", waited)
}

func (h *Hooks) StoreError(op string, buffer int, err error) {
	if h.l == nil || !sample(h.opts.StoreErrorEvery, &h.storeErrCtr) {
		return
	}
	h.l.Warn("greenblue.store_error",
		"op", op,
		"buffer", buffer,
		"err", err)
}

func (h *Hooks) Poisoned(err error) {
	if h.l == nil {
		return
	}
	h.l.Error("greenblue.poisoned", "err", err)
}
