package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		logFn func(l *Logger)
		want  bool // should log
	}{
		{
			name:  "info message",
			logFn: func(l *Logger) { l.Info("test message", Fields{"key": "value"}) },
			want:  true,
		},
		{
			name:  "debug below threshold",
			logFn: func(l *Logger) { l.Debug("debug message", nil) },
			want:  false,
		},
		{
			name:  "warn message",
			logFn: func(l *Logger) { l.Warn("warn message", nil) },
			want:  true,
		},
		{
			name:  "error with err",
			logFn: func(l *Logger) { l.Error("error occurred", nil, errors.New("test error")) },
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(LevelInfo, &buf)
			tt.logFn(l)

			if logged := buf.Len() > 0; logged != tt.want {
				t.Errorf("logged = %v, want %v (output %q)", logged, tt.want, buf.String())
			}
		})
	}
}

func TestLogger_JSONShape(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelDebug, &buf)
	l.Error("fetch failed", Fields{"url": "https://example.com", "attempt": 3}, errors.New("boom"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}

	if entry["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", entry["level"])
	}
	if entry["message"] != "fetch failed" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["error"] != "boom" {
		t.Errorf("error = %v, want boom", entry["error"])
	}
	if entry["url"] != "https://example.com" {
		t.Errorf("url = %v", entry["url"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp missing")
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelError, &buf)
	l.Info("hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("info logged at error level: %q", buf.String())
	}

	l.SetLevel(LevelDebug)
	l.Debug("shown", nil)
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug not logged after SetLevel: %q", buf.String())
	}
}

func TestLogger_WithAndDefault(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := FromZap(zap.New(core))

	prev := Default()
	SetDefault(base.With(Fields{"run_id": "abc"}))
	defer SetDefault(prev)

	Info("started", Fields{"years": 42})
	Warn("slow", nil)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["run_id"] != "abc" {
		t.Errorf("run_id = %v, want abc", ctx["run_id"])
	}
	if ctx["years"] != int64(42) {
		t.Errorf("years = %v (%T), want 42", ctx["years"], ctx["years"])
	}
	if entries[1].Level != zapcore.WarnLevel {
		t.Errorf("second entry level = %v, want warn", entries[1].Level)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
