package testsupport

import (
	"context"
	"testing"

	"turnstile/internal/config"
	"turnstile/internal/queue"
	"turnstile/internal/snapshot"
)

// MustOpenStore opens a snapshot.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *snapshot.Store {
	t.Helper()

	store, err := snapshot.Open(cfg)
	if err != nil {
		t.Fatalf("snapshot.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewEngine builds an engine wired to a fresh snapshot store, restoring any
// persisted state first.
func NewEngine(t testing.TB, cfg *config.Config, hub queue.Broadcaster) *queue.Engine {
	t.Helper()

	store := MustOpenStore(t, cfg)
	engine := queue.NewEngine(cfg, store, hub, nil)
	snap, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("snapshot.Load: %v", err)
	}
	engine.Restore(snap)
	return engine
}
