package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(999), "UNKNOWN"},
	}

	for _, test := range tests {
		result := test.level.String()
		if result != test.expected {
			t.Errorf("LogLevel(%d).String() = %s, expected %s", test.level, result, test.expected)
		}
	}
}

func TestLogLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{LogLevel(999), slog.LevelWarn},
	}

	for _, test := range tests {
		result := test.level.SlogLevel()
		if result != test.expected {
			t.Errorf("LogLevel(%d).SlogLevel() = %v, expected %v", test.level, result, test.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{" warn ", LevelWarn, false},
		{"", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelWarn, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestInitForCLI(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf)

	if defaultLogger == nil {
		t.Fatal("Expected defaultLogger to be set after InitForCLI")
	}

	Info("test-subsystem", "test message %d", 42)

	output := buf.String()
	if !strings.Contains(output, "test message 42") {
		t.Errorf("Expected log message in output, got %q", output)
	}
	if !strings.Contains(output, "test-subsystem") {
		t.Errorf("Expected subsystem in output, got %q", output)
	}
}

func TestCLILevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelInfo, &buf)

	Debug("test", "debug message")
	Info("test", "info message")

	output := buf.String()
	if strings.Contains(output, "debug message") {
		t.Error("Debug message should be filtered out at INFO level")
	}
	if !strings.Contains(output, "info message") {
		t.Error("Info message should appear at INFO level")
	}
}

func TestErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	InitForCLI(LevelWarn, &buf)

	Error("Prober", errors.New("connection refused"), "host %s offline", "http://localhost:1")

	output := buf.String()
	if !strings.Contains(output, "connection refused") {
		t.Errorf("Expected error cause in output, got %q", output)
	}
	if !strings.Contains(output, "host http://localhost:1 offline") {
		t.Errorf("Expected message in output, got %q", output)
	}
}
