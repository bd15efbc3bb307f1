package snapshot_test

import (
	"context"
	"testing"
	"time"

	"turnstile/internal/queue"
	"turnstile/internal/snapshot"
	"turnstile/internal/testsupport"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	issued := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	ticket := queue.Ticket{Number: "C1", Station: "Charging", IssuedAt: issued}
	snap := queue.Snapshot{
		Queues:              map[string][]queue.Ticket{"Charging": {ticket}},
		CurrentServing:      map[string]*queue.Ticket{},
		LastServed:          map[string]*queue.Ticket{"Charging": &ticket},
		QueueNumbers:        map[string]int{"Charging": 1},
		ServedHistory:       []queue.Ticket{ticket},
		TotalServed:         1,
		TotalWaitTime:       5,
		CurrentAnnouncement: "hello",
	}

	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected snapshot, got nil")
	}
	if len(loaded.Queues["Charging"]) != 1 || loaded.Queues["Charging"][0].Number != "C1" {
		t.Fatalf("unexpected queues: %+v", loaded.Queues)
	}
	if loaded.LastServed["Charging"] == nil || loaded.LastServed["Charging"].Number != "C1" {
		t.Fatalf("unexpected last served: %+v", loaded.LastServed)
	}
	if !loaded.Queues["Charging"][0].IssuedAt.Equal(issued) {
		t.Fatalf("issue time mangled: %v", loaded.Queues["Charging"][0].IssuedAt)
	}
	if loaded.CurrentAnnouncement != "hello" || loaded.TotalServed != 1 || loaded.TotalWaitTime != 5 {
		t.Fatalf("unexpected counters: %+v", loaded)
	}
}

func TestSaveOverwrites(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.Save(ctx, queue.Snapshot{TotalServed: 1}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, queue.Snapshot{TotalServed: 2}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.TotalServed != 2 {
		t.Fatalf("expected latest snapshot, got %+v", loaded)
	}
}

func TestLoadMissingReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil for missing snapshot, got %+v", loaded)
	}
}

func TestDeleteRemovesSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.Save(ctx, queue.Snapshot{TotalServed: 1}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Delete(ctx); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded != nil {
		t.Fatal("snapshot survived delete")
	}

	// Deleting again is fine.
	if err := store.Delete(ctx); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
}

func TestReopenKeepsSnapshot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := snapshot.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	ctx := context.Background()
	if err := store.Save(ctx, queue.Snapshot{CurrentAnnouncement: "persisted"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	loaded, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil || loaded.CurrentAnnouncement != "persisted" {
		t.Fatalf("snapshot lost across reopen: %+v", loaded)
	}
}

func TestLegacyPayloadLoadsWithDefaults(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	// An older payload without the announcement or history fields.
	if err := store.Save(ctx, queue.Snapshot{
		Queues:       map[string][]queue.Ticket{"Charging": nil},
		QueueNumbers: map[string]int{"Charging": 7},
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.QueueNumbers["Charging"] != 7 {
		t.Fatalf("lost sequence: %+v", loaded)
	}
	if loaded.CurrentAnnouncement != "" || loaded.TotalServed != 0 {
		t.Fatalf("expected fresh defaults for absent fields: %+v", loaded)
	}
}

func TestSavedAt(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	savedAt, err := store.SavedAt(ctx)
	if err != nil {
		t.Fatalf("SavedAt failed: %v", err)
	}
	if !savedAt.IsZero() {
		t.Fatalf("expected zero time for missing snapshot, got %v", savedAt)
	}

	if err := store.Save(ctx, queue.Snapshot{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	savedAt, err = store.SavedAt(ctx)
	if err != nil {
		t.Fatalf("SavedAt failed: %v", err)
	}
	if savedAt.IsZero() {
		t.Fatal("expected timestamp after save")
	}
}
