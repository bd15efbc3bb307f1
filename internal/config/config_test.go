package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"turnstile/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Queue.AverageServiceTime != 5 {
		t.Fatalf("expected 5 minute default service time, got %d", cfg.Queue.AverageServiceTime)
	}
	if cfg.Queue.MaxQueueLength != 100 {
		t.Fatalf("expected default capacity 100, got %d", cfg.Queue.MaxQueueLength)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[stations]
names = ["charging", " releasing "]

[queue]
average_service_time = 3
max_queue_length = 4

[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected config to resolve, got exists=%v path=%q", exists, resolved)
	}
	want := []string{"Charging", "Releasing"}
	if len(cfg.Stations.Names) != len(want) {
		t.Fatalf("unexpected stations: %v", cfg.Stations.Names)
	}
	for i, name := range want {
		if cfg.Stations.Names[i] != name {
			t.Fatalf("station %d: expected %q, got %q", i, name, cfg.Stations.Names[i])
		}
	}
	if cfg.AverageServiceTime().Minutes() != 3 {
		t.Fatalf("unexpected service time: %v", cfg.AverageServiceTime())
	}
}

func TestValidateRejectsDuplicateInitials(t *testing.T) {
	cfg := config.Default()
	cfg.Stations.Names = []string{"Charging", "Cleaning"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for shared ticket prefix")
	}
	if !strings.Contains(err.Error(), "prefix") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsEmptyStations(t *testing.T) {
	cfg := config.Default()
	cfg.Stations.Names = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for empty station set")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	cfg, _, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if len(cfg.Stations.Names) == 0 {
		t.Fatal("expected default stations")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[stations]") {
		t.Fatal("sample config missing stations section")
	}
}
