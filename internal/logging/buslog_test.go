package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func busLoggerOutput(t *testing.T, level slog.Level, log func(*BusLogger)) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	bl := NewBusLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})))

	log(bl)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func TestBusLogger_Debug(t *testing.T) {
	entry := busLoggerOutput(t, slog.LevelDebug, func(bl *BusLogger) {
		bl.Debug("test message", "key1", "value1", "key2", 42)
	})

	if entry["level"] != "DEBUG" {
		t.Errorf("expected level DEBUG, got %v", entry["level"])
	}
	if entry["msg"] != "test message" {
		t.Errorf("expected msg 'test message', got %v", entry["msg"])
	}
	if entry["key1"] != "value1" {
		t.Errorf("expected key1=value1, got %v", entry["key1"])
	}
	if entry["key2"] != float64(42) {
		t.Errorf("expected key2=42, got %v", entry["key2"])
	}
}

func TestBusLogger_Info(t *testing.T) {
	entry := busLoggerOutput(t, slog.LevelInfo, func(bl *BusLogger) {
		bl.Info("info message", "status", "ok")
	})

	if entry["level"] != "INFO" {
		t.Errorf("expected level INFO, got %v", entry["level"])
	}
	if entry["status"] != "ok" {
		t.Errorf("expected status=ok, got %v", entry["status"])
	}
}

func TestBusLogger_Error(t *testing.T) {
	entry := busLoggerOutput(t, slog.LevelError, func(bl *BusLogger) {
		bl.Error("error occurred", "code", 500)
	})

	if entry["level"] != "ERROR" {
		t.Errorf("expected level ERROR, got %v", entry["level"])
	}
	if entry["code"] != float64(500) {
		t.Errorf("expected code=500, got %v", entry["code"])
	}
}

func TestBusLogger_ImplementsBusInterface(t *testing.T) {
	var buf bytes.Buffer
	bl := NewBusLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	var _ interface {
		Debug(msg string, keysAndValues ...any)
		Info(msg string, keysAndValues ...any)
		Error(msg string, keysAndValues ...any)
	} = bl
}
