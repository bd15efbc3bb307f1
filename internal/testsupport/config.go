package testsupport

import (
	"path/filepath"
	"testing"

	"turnstile/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Notifications.NtfyTopic = ""

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithStations overrides the configured station set.
func WithStations(names ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Stations.Names = names
	}
}

// WithMaxQueueLength overrides the per-station capacity.
func WithMaxQueueLength(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Queue.MaxQueueLength = limit
	}
}
