package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"turnstile/internal/config"
	"turnstile/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyServing(context.Background(), "Charging", "C1"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceSendsServingMessage(t *testing.T) {
	var gotTitle, gotTags, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyServing(context.Background(), "Charging", "C17"); err != nil {
		t.Fatalf("NotifyServing failed: %v", err)
	}
	if gotTitle != "Turnstile - Now Serving" {
		t.Fatalf("unexpected title: %q", gotTitle)
	}
	if gotTags != "turnstile,serving" {
		t.Fatalf("unexpected tags: %q", gotTags)
	}
	if gotBody != "Now serving C17 at Charging" {
		t.Fatalf("unexpected body: %q", gotBody)
	}
}

func TestNtfyServiceSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic gone", http.StatusGone)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyAnnouncement(context.Background(), "closing early"); err == nil {
		t.Fatal("expected error from failing ntfy endpoint")
	}
}

func TestNtfyServiceForwardsBroadcastVerbatim(t *testing.T) {
	var gotTitle, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyBroadcast(context.Background(), "Now serving C3 at Extraction"); err != nil {
		t.Fatalf("NotifyBroadcast failed: %v", err)
	}
	if gotTitle != "Turnstile" {
		t.Fatalf("unexpected title: %q", gotTitle)
	}
	if gotBody != "Now serving C3 at Extraction" {
		t.Fatalf("unexpected body: %q", gotBody)
	}
}
