package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"turnstile/internal/config"
)

const userAgent = "Turnstile/0.1.0"

// Service mirrors broadcast lines to an external push channel.
type Service interface {
	NotifyServing(ctx context.Context, station, number string) error
	NotifyAnnouncement(ctx context.Context, text string) error
	NotifyBroadcast(ctx context.Context, text string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyServing(ctx context.Context, station, number string) error {
	station = strings.TrimSpace(station)
	number = strings.TrimSpace(number)
	data := payload{
		title:   "Turnstile - Now Serving",
		message: fmt.Sprintf("Now serving %s at %s", number, station),
		tags:    []string{"turnstile", "serving"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyAnnouncement(ctx context.Context, text string) error {
	data := payload{
		title:    "Turnstile - Announcement",
		message:  "New Announcement: " + strings.TrimSpace(text),
		tags:     []string{"turnstile", "announcement"},
		priority: "high",
	}
	return n.send(ctx, data)
}

// NotifyBroadcast forwards a raw broadcast line without reformatting it. The
// daemon uses this to mirror the observer stream verbatim.
func (n *ntfyService) NotifyBroadcast(ctx context.Context, text string) error {
	data := payload{
		title:   "Turnstile",
		message: strings.TrimSpace(text),
		tags:    []string{"turnstile"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Turnstile - Test",
		message:  "Notification system test",
		tags:     []string{"turnstile", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyServing(context.Context, string, string) error { return nil }
func (noopService) NotifyAnnouncement(context.Context, string) error    { return nil }
func (noopService) NotifyBroadcast(context.Context, string) error       { return nil }
func (noopService) TestNotification(context.Context) error              { return nil }
