package greenblue

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type recordingHooks struct {
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) add(s string) {
	h.mu.Lock()
	h.events = append(h.events, s)
	h.mu.Unlock()
}

func (h *recordingHooks) snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.events...)
}

func (h *recordingHooks) count(prefix string) int {
	n := 0
	for _, e := range h.snapshot() {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

func (h *recordingHooks) FlushCompleted(epoch uint64, replayed int, _ time.Duration) {
	h.add(fmt.Sprintf("completed:%d:%d", epoch, replayed))
}
func (h *recordingHooks) FlushRejected(reason string) { h.add("rejected:" + reason) }
func (h *recordingHooks) DrainTimeout(buffer int, readers int64, _ time.Duration) {
	h.add(fmt.Sprintf("drain_timeout:%d:%d", buffer, readers))
}
func (h *recordingHooks) StoreError(op string, buffer int, _ error) {
	h.add(fmt.Sprintf("store:%s:%d", op, buffer))
}
func (h *recordingHooks) Poisoned(error) { h.add("poisoned") }

type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *recordingLogger) rec(msg string) {
	l.mu.Lock()
	l.msgs = append(l.msgs, msg)
	l.mu.Unlock()
}

func (l *recordingLogger) has(prefix string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.msgs {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

func (l *recordingLogger) Debug(msg string, _ Fields) { l.rec(msg) }
func (l *recordingLogger) Info(msg string, _ Fields)  { l.rec(msg) }
func (l *recordingLogger) Warn(msg string, _ Fields)  { l.rec(msg) }
func (l *recordingLogger) Error(msg string, _ Fields) { l.rec(msg) }
