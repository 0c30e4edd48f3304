package logger

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{" INFO ", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"", slog.LevelInfo, false},
		{"verbose", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestInitSetsDefaultLogger(t *testing.T) {
	Init(false, "warn", "")

	if Log == nil {
		t.Fatal("Log is nil after Init")
	}
	if slog.Default() != Log {
		t.Error("Init did not install the default logger")
	}
	if Log.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("info should be disabled when level is warn")
	}
}
