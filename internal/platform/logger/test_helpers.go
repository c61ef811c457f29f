package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// TestLogBuffer collects JSON log lines written by concurrent handlers.
type TestLogBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (b *TestLogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *TestLogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Entries decodes one JSON object per non-empty line.
func (b *TestLogBuffer) Entries() ([]map[string]any, error) {
	var entries []map[string]any
	for _, line := range strings.Split(b.String(), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetTestLogger returns a debug-level JSON logger writing into a fresh buffer.
func GetTestLogger(t *testing.T) (*slog.Logger, *TestLogBuffer) {
	t.Helper()
	buf := &TestLogBuffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// AssertLogContains fails the test unless content appears somewhere in the log.
func AssertLogContains(t *testing.T, buf *TestLogBuffer, content string) {
	t.Helper()
	if logs := buf.String(); !strings.Contains(logs, content) {
		t.Errorf("Expected log to contain %q.\nLogs:\n%s", content, logs)
	}
}

// AssertLogField fails the test unless some entry has field set to expected.
func AssertLogField(t *testing.T, buf *TestLogBuffer, field string, expected any) {
	t.Helper()
	AssertEntry(t, buf, "", map[string]any{field: expected})
}

// AssertEntry fails the test unless a single entry carries every field in
// fields. An empty msg matches any message. Use it to check that one log line
// is correlated by both trace_id and request_id.
func AssertEntry(t *testing.T, buf *TestLogBuffer, msg string, fields map[string]any) map[string]any {
	t.Helper()

	entries, err := buf.Entries()
	if err != nil {
		t.Fatalf("Failed to parse log entries: %v", err)
	}
	for _, entry := range entries {
		if msg != "" && entry[slog.MessageKey] != msg {
			continue
		}
		if hasFields(entry, fields) {
			return entry
		}
	}

	t.Errorf("No log entry with msg %q and fields %v.\nLogs:\n%s", msg, fields, buf.String())
	return nil
}

func hasFields(entry map[string]any, fields map[string]any) bool {
	for k, want := range fields {
		if got, ok := entry[k]; !ok || got != want {
			return false
		}
	}
	return true
}
