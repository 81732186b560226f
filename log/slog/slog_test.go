package slog

import (
	"bytes"
	stdslog "log/slog"
	"strings"
	"testing"

	"github.com/unkn0wn-root/greenblue"
)

func TestLoggerRespectsLevelAndOrdersAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := stdslog.NewTextHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelInfo})
	l := New(stdslog.New(h))

	l.Debug("hidden", greenblue.Fields{"x": 1})
	l.Info("flush completed", greenblue.Fields{"replayed": 3, "epoch": 2})

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked: %s", out)
	}
	if !strings.Contains(out, `msg="flush completed" epoch=2 replayed=3`) {
		t.Fatalf("unexpected output: %s", out)
	}
}
