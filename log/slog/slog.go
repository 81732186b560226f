// Package slog adapts log/slog to greenblue.Logger.
package slog

import (
	"context"
	stdslog "log/slog"
	"sort"

	"github.com/unkn0wn-root/greenblue"
)

var _ greenblue.Logger = Logger{}

type Logger struct{ l *stdslog.Logger }

// New wraps l; nil uses slog.Default().
func New(l *stdslog.Logger) Logger {
	if l == nil {
		l = stdslog.Default()
	}
	return Logger{l: l}
}

func (s Logger) Debug(msg string, f greenblue.Fields) { s.log(stdslog.LevelDebug, msg, f) }
func (s Logger) Info(msg string, f greenblue.Fields)  { s.log(stdslog.LevelInfo, msg, f) }
func (s Logger) Warn(msg string, f greenblue.Fields)  { s.log(stdslog.LevelWarn, msg, f) }
func (s Logger) Error(msg string, f greenblue.Fields) { s.log(stdslog.LevelError, msg, f) }

func (s Logger) log(lvl stdslog.Level, msg string, f greenblue.Fields) {
	ctx := context.Background()
	if !s.l.Enabled(ctx, lvl) {
		return
	}
	s.l.LogAttrs(ctx, lvl, msg, attrs(f)...)
}

func attrs(f greenblue.Fields) []stdslog.Attr {
	if len(f) == 0 {
		return nil
	}
	out := make([]stdslog.Attr, 0, len(f))
	for k, v := range f {
		out = append(out, stdslog.Any(k, v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
