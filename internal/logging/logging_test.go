package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStageAddsField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromCore(core).Stage("export")

	logger.Infow("Encoding video", "fps", 30)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["stage"] != "export" {
		t.Errorf("stage = %v, want export", fields["stage"])
	}
	if fields["fps"] != int64(30) {
		t.Errorf("fps = %v (%T), want 30", fields["fps"], fields["fps"])
	}
}

func TestNewLoggerLevels(t *testing.T) {
	quiet := NewLogger(false)
	if quiet.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("non-verbose logger should not enable debug")
	}

	verbose := NewLogger(true)
	if !verbose.Desugar().Core().Enabled(zapcore.DebugLevel) {
		t.Error("verbose logger should enable debug")
	}
}

func TestNopDiscards(t *testing.T) {
	logger := Nop()
	logger.Warnw("ignored", "key", "value")
	if logger.Desugar().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("nop logger should not enable any level")
	}
}
