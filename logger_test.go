package tvg

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSetLoggerNilRestoresSilent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, nil))
	SetLogger(custom)
	if Logger() != custom {
		t.Error("Logger() did not return the logger set via SetLogger")
	}

	SetLogger(nil)
	l := Logger()
	if l == nil {
		t.Fatal("SetLogger(nil) left a nil logger")
	}
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should produce a disabled logger")
	}
}

func TestEngineUsesPackageLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	e := NewEngine()
	e.Term()
	if !strings.Contains(buf.String(), "engine started") || !strings.Contains(buf.String(), "engine stopped") {
		t.Errorf("engine lifecycle not logged: %s", buf.String())
	}
}

func TestWithLoggerOverridesPackageLogger(t *testing.T) {
	var pkg, own bytes.Buffer
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	SetLogger(slog.New(slog.NewTextHandler(&pkg, nil)))

	e := NewEngine(WithLogger(slog.New(slog.NewTextHandler(&own, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	defer e.Term()

	c := e.NewSwCanvas()
	c.SetTarget(make([]uint32, 4), 2, 2, 2, ARGB8888)
	c.Push(NewShape())
	c.Update()

	if pkg.Len() != 0 {
		t.Errorf("package logger received engine output: %s", pkg.String())
	}
	if !strings.Contains(own.String(), "canvas updated") {
		t.Errorf("engine logger missing update record: %s", own.String())
	}
}

func TestGPUTargetLogsAdapter(t *testing.T) {
	var buf bytes.Buffer
	e := NewEngine(WithLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	defer e.Term()

	c := e.NewWgCanvas()
	if err := c.SetTarget(newMockProvider(), 0, 8, 8, ARGB8888S); err != nil {
		t.Fatalf("SetTarget: %v", err)
	}
	if !strings.Contains(buf.String(), "adapter=mock") {
		t.Errorf("adapter not logged: %s", buf.String())
	}
}
