package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/gofrs/flock"

	"turnstile/internal/broadcast"
	"turnstile/internal/config"
	"turnstile/internal/logging"
	"turnstile/internal/notifications"
	"turnstile/internal/queue"
	"turnstile/internal/snapshot"
)

// Daemon coordinates the queue engine, its surfaces, and single-instance
// enforcement.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	engine   *queue.Engine
	store    *snapshot.Store
	hub      *broadcast.Hub
	notifier notifications.Service

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running    atomic.Bool
	ctx        context.Context
	cancel     context.CancelFunc
	mirrorDone chan struct{}
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	SnapshotPath string
	LockFilePath string
	APIAddr      string
	Subscribers  int
	Queue        queue.Summary
}

// New constructs a daemon with initialized dependencies. The snapshot store
// and notifier may be nil.
func New(cfg *config.Config, engine *queue.Engine, store *snapshot.Store, hub *broadcast.Hub, notifier notifications.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || engine == nil || hub == nil {
		return nil, errors.New("daemon requires config, engine, and hub")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "turnstiled.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		engine:   engine,
		store:    store,
		hub:      hub,
		notifier: notifier,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock, starts the HTTP API, and begins mirroring
// broadcast lines to the notification channel.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another turnstile daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	d.mirrorDone = make(chan struct{})
	go d.mirrorBroadcasts(d.ctx, d.mirrorDone)

	d.running.Store(true)
	d.logger.Info("turnstile daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the daemon surfaces and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	if d.mirrorDone != nil {
		<-d.mirrorDone
		d.mirrorDone = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("turnstile daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Engine exposes the queue engine to the IPC surface.
func (d *Daemon) Engine() *queue.Engine {
	return d.engine
}

// Hub exposes the broadcast hub to the IPC surface.
func (d *Daemon) Hub() *broadcast.Hub {
	return d.hub
}

// APIAddr returns the bound HTTP address, or empty when the API is disabled
// or not started.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg.Notifications.NtfyTopic == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	snapshotPath := ""
	if d.store != nil {
		snapshotPath = d.store.Path()
	}
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		SnapshotPath: snapshotPath,
		LockFilePath: d.lockPath,
		APIAddr:      d.api.addr(),
		Subscribers:  d.hub.SubscriberCount(),
		Queue:        d.engine.Summarize(),
	}
}

// mirrorBroadcasts forwards every hub message to the notification channel.
// Delivery is best-effort; a failed push is logged and never retried.
func (d *Daemon) mirrorBroadcasts(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	sub := d.hub.Subscribe(64)
	defer sub.Close()

	log := logging.NewComponentLogger(d.logger, "broadcast-mirror")
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sub.Messages():
			sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			err := d.notifier.NotifyBroadcast(sendCtx, msg.Text)
			cancel()
			if err != nil {
				log.Warn("mirror push failed", logging.Error(err), logging.Uint64("seq", msg.Sequence))
			}
		}
	}
}
