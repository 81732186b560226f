// Package zap adapts a *zap.Logger to greenblue.Logger.
package zap

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/greenblue"
)

type Logger struct{ l *zap.Logger }

var _ greenblue.Logger = Logger{}

// New wraps l; caller annotations point at the cache, not this adapter.
func New(l *zap.Logger) Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return Logger{l: l.WithOptions(zap.AddCallerSkip(1))}
}

func (z Logger) Debug(msg string, f greenblue.Fields) { z.log(zapcore.DebugLevel, msg, f) }
func (z Logger) Info(msg string, f greenblue.Fields)  { z.log(zapcore.InfoLevel, msg, f) }
func (z Logger) Warn(msg string, f greenblue.Fields)  { z.log(zapcore.WarnLevel, msg, f) }
func (z Logger) Error(msg string, f greenblue.Fields) { z.log(zapcore.ErrorLevel, msg, f) }

func (z Logger) log(lvl zapcore.Level, msg string, f greenblue.Fields) {
	ce := z.l.Check(lvl, msg)
	if ce == nil {
		return
	}
	ce.Write(fields(f)...)
}

// fields are emitted in key order so output is stable across runs.
func fields(f greenblue.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
