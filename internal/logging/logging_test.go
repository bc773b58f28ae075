package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "info", FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	log.Debug().Msg("hidden")
	log.Info().Str("run_id", "abc").Msg("run complete")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["message"] != "run complete" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["run_id"] != "abc" {
		t.Errorf("run_id = %v", entry["run_id"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected timestamp field")
	}
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "debug", FormatConsole)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	log.Debug().Msg("visible")

	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("console output missing message: %q", buf.String())
	}
}

func TestNewWithWriter_Invalid(t *testing.T) {
	if _, err := NewWithWriter(&bytes.Buffer{}, "loud", FormatJSON); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := NewWithWriter(&bytes.Buffer{}, "info", "xml"); err == nil {
		t.Error("expected error for invalid format")
	}
}
