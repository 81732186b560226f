// Package logrus adapts logrus to greenblue.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/unkn0wn-root/greenblue"
)

// Logger accepts a *logrus.Logger or a pre-populated *logrus.Entry.
type Logger struct{ l logrus.FieldLogger }

var _ greenblue.Logger = Logger{}

func New(l logrus.FieldLogger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return Logger{l: l}
}

func (l Logger) with(f greenblue.Fields) logrus.FieldLogger {
	if len(f) == 0 {
		return l.l
	}
	return l.l.WithFields(logrus.Fields(f))
}

func (l Logger) Debug(msg string, f greenblue.Fields) { l.with(f).Debug(msg) }
func (l Logger) Info(msg string, f greenblue.Fields)  { l.with(f).Info(msg) }
func (l Logger) Warn(msg string, f greenblue.Fields)  { l.with(f).Warn(msg) }
func (l Logger) Error(msg string, f greenblue.Fields) { l.with(f).Error(msg) }
