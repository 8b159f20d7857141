package cli

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLoggerContextRoundTrip(t *testing.T) {
	logger := newLogger(io.Discard, log.DebugLevel)
	ctx := withLogger(context.Background(), logger)

	if got := loggerFromContext(ctx); got != logger {
		t.Error("loggerFromContext did not return the attached logger")
	}
}

func TestLoggerFromContextFallback(t *testing.T) {
	if got := loggerFromContext(context.Background()); got != log.Default() {
		t.Error("bare context should fall back to the default logger")
	}
}

func TestNewLoggerLevel(t *testing.T) {
	logger := newLogger(io.Discard, log.DebugLevel)
	if logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", logger.GetLevel())
	}
}
