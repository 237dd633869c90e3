package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"airquality-server/internal/config"
)

func TestNewLogger_prodWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo}, "1.2.3", "airquality")

	logger.Debug("hidden")
	logger.Info("dataset loaded", "readings", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1 (debug filtered): %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for key, want := range map[string]any{
		"msg":      "dataset loaded",
		"app":      "airquality",
		"version":  "1.2.3",
		"env":      "prod",
		"readings": float64(3),
	} {
		if rec[key] != want {
			t.Errorf("%s = %v, want %v", key, rec[key], want)
		}
	}
}

func TestNewLogger_devWritesText(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.Config{AppEnv: "dev", LogLevel: slog.LevelDebug}, "dev", "airquality")

	logger.Debug("sql", "op", "query")

	out := buf.String()
	if !strings.Contains(out, "sql") || !strings.Contains(out, "airquality") {
		t.Errorf("dev output = %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("dev output should not be JSON: %q", out)
	}
}
