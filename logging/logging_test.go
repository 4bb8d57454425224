package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		expected slog.Level
		ok       bool
	}{
		{"debug", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl, ok := ParseLevel(tt.name)
			if lvl != tt.expected || ok != tt.ok {
				t.Errorf("Expected (%v, %v), got (%v, %v)", tt.expected, tt.ok, lvl, ok)
			}
		})
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Debug("dropped")
	l.Infof("dropped %d", 1)
	if l.With("k", "v") != nil {
		t.Error("Expected With on nil logger to return nil")
	}
}

func TestNewWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, "info")

	l.Debug("hidden")
	l.With("session", "ab12").Info("visible", slog.Int("cursor", 3))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 record, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("Record is not JSON: %v", err)
	}
	if rec["msg"] != "visible" || rec["session"] != "ab12" || rec["cursor"] != float64(3) {
		t.Errorf("Unexpected record %v", rec)
	}
}

func TestNew_WritesToRotatingFile(t *testing.T) {
	dir := t.TempDir()
	l := New("debug", dir, false)
	l.Info("hello")

	data, err := os.ReadFile(l.LogFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("Expected hello record in %s", l.LogFile)
	}
}
