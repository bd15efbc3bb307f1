// Package daemonrun wires the daemon process runtime: signal handling,
// logging, persistence, and the IPC and HTTP surfaces. Both the standalone
// turnstiled binary and the CLI's foreground daemon command call into Run.
package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"turnstile/internal/broadcast"
	"turnstile/internal/config"
	"turnstile/internal/daemon"
	"turnstile/internal/ipc"
	"turnstile/internal/logging"
	"turnstile/internal/notifications"
	"turnstile/internal/queue"
	"turnstile/internal/snapshot"
)

// Broadcast history retained for late-joining observers.
const hubCapacity = 1024

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// SocketPath returns the IPC socket location for the given config.
func SocketPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DataDir, "turnstile.sock")
}

// Run starts the turnstile daemon runtime loop and blocks until the context
// is canceled or a termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, err := logging.New(logging.Options{
		Level:       level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, "turnstile.log")},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.DataDir, "turnstiled.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := snapshot.Open(cfg)
	if err != nil {
		logger.Error("open snapshot store", logging.Error(err))
		return err
	}

	hub := broadcast.NewHub(hubCapacity)
	engine := queue.NewEngine(cfg, store, hub, logger)
	snap, err := store.Load(signalCtx)
	if err != nil {
		logger.Error("load snapshot", logging.Error(err))
		_ = store.Close()
		return err
	}
	engine.Restore(snap)

	notifier := notifications.NewService(cfg)
	d, err := daemon.New(cfg, engine, store, hub, notifier, logger)
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, SocketPath(cfg), d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	logger.Info("turnstile daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
