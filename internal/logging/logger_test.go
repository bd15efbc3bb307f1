package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"turnstile/internal/config"
	"turnstile/internal/logging"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = dir
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	logger.Info("engine ready", logging.String("station", "Charging"))

	data, err := os.ReadFile(filepath.Join(dir, "turnstile.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "engine ready") {
		t.Fatalf("log file missing entry: %s", data)
	}
	if !strings.Contains(string(data), `"station":"Charging"`) {
		t.Fatalf("log file missing attr: %s", data)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("should not panic", logging.Error(nil))
}
