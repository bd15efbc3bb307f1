package broadcast_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"turnstile/internal/broadcast"
)

func TestSubscriberReceivesInOrder(t *testing.T) {
	hub := broadcast.NewHub(16)
	sub := hub.Subscribe(8)
	defer sub.Close()

	for i := 1; i <= 3; i++ {
		hub.Publish(fmt.Sprintf("message %d", i))
	}

	for i := 1; i <= 3; i++ {
		select {
		case msg := <-sub.Messages():
			want := fmt.Sprintf("message %d", i)
			if msg.Text != want {
				t.Fatalf("expected %q, got %q", want, msg.Text)
			}
			if msg.Sequence != uint64(i) {
				t.Fatalf("expected sequence %d, got %d", i, msg.Sequence)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	hub := broadcast.NewHub(16)
	sub := hub.Subscribe(8)
	sub.Close()

	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected empty registry, got %d", hub.SubscriberCount())
	}

	hub.Publish("after close")
	select {
	case msg := <-sub.Messages():
		t.Fatalf("unexpected delivery after close: %q", msg.Text)
	default:
	}
}

func TestSlowSubscriberDropsAlone(t *testing.T) {
	hub := broadcast.NewHub(16)
	slow := hub.Subscribe(1)
	defer slow.Close()
	fast := hub.Subscribe(8)
	defer fast.Close()

	for i := 0; i < 4; i++ {
		hub.Publish(fmt.Sprintf("message %d", i))
	}

	// The fast subscriber sees everything.
	for i := 0; i < 4; i++ {
		select {
		case <-fast.Messages():
		case <-time.After(time.Second):
			t.Fatalf("fast subscriber missing message %d", i)
		}
	}

	// The slow subscriber kept only its buffered first message.
	select {
	case msg := <-slow.Messages():
		if msg.Text != "message 0" {
			t.Fatalf("expected oldest buffered message, got %q", msg.Text)
		}
	case <-time.After(time.Second):
		t.Fatal("slow subscriber lost its buffered message")
	}
	select {
	case msg := <-slow.Messages():
		t.Fatalf("slow subscriber should have dropped the rest, got %q", msg.Text)
	default:
	}
}

func TestTailReturnsRecent(t *testing.T) {
	hub := broadcast.NewHub(4)
	for i := 1; i <= 6; i++ {
		hub.Publish(fmt.Sprintf("message %d", i))
	}

	messages, next := hub.Tail(10)
	if next != 6 {
		t.Fatalf("expected cursor 6, got %d", next)
	}
	// Capacity 4: the two oldest rolled off.
	if len(messages) != 4 || messages[0].Text != "message 3" {
		t.Fatalf("unexpected tail: %+v", messages)
	}
}

func TestFetchSince(t *testing.T) {
	hub := broadcast.NewHub(16)
	hub.Publish("one")
	hub.Publish("two")

	messages, next, err := hub.Fetch(context.Background(), 1, 10, false)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(messages) != 1 || messages[0].Text != "two" {
		t.Fatalf("unexpected fetch result: %+v", messages)
	}
	if next != 2 {
		t.Fatalf("expected cursor 2, got %d", next)
	}
}

func TestFetchWaitsForPublish(t *testing.T) {
	hub := broadcast.NewHub(16)

	done := make(chan struct{})
	go func() {
		defer close(done)
		messages, _, err := hub.Fetch(context.Background(), 0, 10, true)
		if err != nil {
			t.Errorf("Fetch failed: %v", err)
			return
		}
		if len(messages) != 1 || messages[0].Text != "wake up" {
			t.Errorf("unexpected messages: %+v", messages)
		}
	}()

	time.Sleep(20 * time.Millisecond)
	hub.Publish("wake up")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Fetch never woke up")
	}
}

func TestFetchHonorsContextCancel(t *testing.T) {
	hub := broadcast.NewHub(16)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := hub.Fetch(ctx, 0, 10, true)
	if err == nil {
		t.Fatal("expected context error")
	}
}
