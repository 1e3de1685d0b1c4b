package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("chatty", false); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewLevels(t *testing.T) {
	l, err := New("", false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if l.Zap().Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled by default")
	}
	if !l.Zap().Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled by default")
	}

	l, err = New("", true)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !l.Zap().Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should be enabled when verbose")
	}
}

func TestErrorAddsErrorField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Wrap(zap.New(core)).With(zap.String("stack", "s1"))

	l.Error("delete failed", errors.New("boom"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["error"] != "boom" {
		t.Errorf("expected error field boom, got %v", fields["error"])
	}
	if fields["stack"] != "s1" {
		t.Errorf("expected stack field s1, got %v", fields["stack"])
	}
}
