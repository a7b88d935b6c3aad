package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"

	"reqtrack/internal/config"
)

func TestNewWithWriter_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	log.Info("hidden")
	log.Warn("shown", zap.String("op", "upsert_media"))
	_ = log.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "shown" || entry["op"] != "upsert_media" || entry["level"] != "warn" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewWithWriter_ConsoleAndBadLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LogConfig{Level: "chatty", Format: "console"}, &buf)

	log.Debug("debug is below the fallback level")
	log.Info("info passes")
	_ = log.Sync()

	out := buf.String()
	if strings.Contains(out, "debug is below") {
		t.Fatalf("debug should be filtered at info: %q", out)
	}
	if !strings.Contains(out, "INFO") || !strings.Contains(out, "info passes") {
		t.Fatalf("expected console info line, got %q", out)
	}
}
