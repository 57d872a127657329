package logger

import (
	"testing"

	"go.uber.org/zap"
)

func TestDefaultLoggerIsUsable(t *testing.T) {
	Info("hello", zap.String("k", "v"))
	Warn("warn")
	Error("error")
	Debug("debug")
	if With(zap.Int("n", 1)) == nil {
		t.Fatal("expected child logger")
	}
}

func TestInitRelease(t *testing.T) {
	orig := Log
	t.Cleanup(func() { Log = orig })

	t.Setenv("GIN_MODE", "release")
	if err := Init(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Log == orig {
		t.Fatal("expected global logger to be replaced")
	}
}

func TestInitDevelopment(t *testing.T) {
	orig := Log
	t.Cleanup(func() { Log = orig })

	t.Setenv("GIN_MODE", "")
	if err := Init(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Log.Core().Enabled(zap.DebugLevel) {
		t.Fatal("development logger should enable debug level")
	}
}
