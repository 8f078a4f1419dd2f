// File path: internal/common/log_test.go
package common

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoggerCapturesHistory(t *testing.T) {
	logger := Logger()
	logger.Info("test: history capture works", "key", "value")

	entries := LogEntries()
	if len(entries) == 0 {
		t.Fatalf("expected captured log entries")
	}
	found := false
	for _, entry := range entries {
		if entry.Message == "test: history capture works" {
			found = true
			if entry.Component != "test" {
				t.Fatalf("expected component %q, got %q", "test", entry.Component)
			}
			if entry.Level != "info" {
				t.Fatalf("expected level info, got %q", entry.Level)
			}
			if entry.Attributes["key"] != "value" {
				t.Fatalf("attribute not captured: %+v", entry.Attributes)
			}
			if entry.Time.IsZero() {
				t.Fatalf("entry time not set")
			}
		}
	}
	if !found {
		t.Fatalf("logged message missing from history")
	}
}

func TestLoggerSingleton(t *testing.T) {
	if Logger() != Logger() {
		t.Fatalf("Logger must return the same instance")
	}
}

func TestLogSinkBounded(t *testing.T) {
	sink := newLogSink(3)
	for i := 0; i < 5; i++ {
		sink.capture(slog.NewRecord(time.Now(), slog.LevelInfo, "bounded: entry", 0))
	}
	if got := len(sink.entries()); got != 3 {
		t.Fatalf("expected history capped at 3, got %d", got)
	}
}
