package core

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevels(t *testing.T) {
	cfg := DefaultConfig(PipelineRibbon)
	cfg.Environment = "production"
	cfg.LogLevel = "warn"
	logger, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) || !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("expected warn threshold")
	}

	cfg.Environment = "development"
	cfg.LogLevel = ""
	dev, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if !dev.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("development logger should log debug")
	}

	cfg.LogLevel = "loud"
	if _, err := NewLogger(cfg); err == nil {
		t.Fatalf("expected invalid level error")
	}
}
