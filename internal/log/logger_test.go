package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Component: component,
		Handler:   slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"chatty":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogger_ComponentAttribute(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentApp)

	logger.WithComponent(ComponentStorage).Info("connected", FieldOperation, OpConnect)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	if lines[0][FieldComponent] != ComponentStorage {
		t.Errorf("component = %v, want %s", lines[0][FieldComponent], ComponentStorage)
	}
	if lines[0][FieldOperation] != OpConnect {
		t.Errorf("operation = %v", lines[0][FieldOperation])
	}
	if strings.Count(buf.String(), `"component"`) != 1 {
		t.Errorf("component attribute duplicated: %s", buf.String())
	}
}

func TestStructuredLogger_HTTPEndLevel(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{200, "INFO"},
		{404, "WARN"},
		{500, "ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		sl := NewStructuredLogger(newBufferLogger(&buf, ComponentHTTP))
		r := httptest.NewRequest("GET", "/api/transactions", nil)

		sl.LogHTTPEnd(context.Background(), r, "req_1", tt.status, 3, "127.0.0.1")

		lines := decodeLines(t, &buf)
		if lines[0]["level"] != tt.level {
			t.Errorf("status %d: level = %v, want %s", tt.status, lines[0]["level"], tt.level)
		}
		if lines[0][FieldRequestID] != "req_1" {
			t.Errorf("request id missing: %v", lines[0])
		}
	}
}

func TestStructuredLogger_LogError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf, ComponentService))

	sl.LogError(context.Background(), "List failed", errors.New("boom"), OpList, nil)

	lines := decodeLines(t, &buf)
	if lines[0][FieldError] != "boom" || lines[0][FieldOperation] != OpList {
		t.Errorf("unexpected fields: %v", lines[0])
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Errorf("fallback component = %q", got.Component())
	}
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentHTTP)
	if got := FromContext(WithLogger(context.Background(), logger)); got != logger {
		t.Error("expected stored logger")
	}
}
