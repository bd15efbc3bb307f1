package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"turnstile/internal/broadcast"
	"turnstile/internal/daemon"
	"turnstile/internal/ipc"
	"turnstile/internal/logging"
	"turnstile/internal/queue"
	"turnstile/internal/snapshot"
	"turnstile/internal/testsupport"
)

type cliTestEnv struct {
	socketPath string
	configPath string
	engine     *queue.Engine
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStations("Charging", "Releasing"))
	cfg.Paths.APIBind = ""
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	configPath := filepath.Join(t.TempDir(), "config.toml")
	contents := fmt.Sprintf(`[stations]
names = ["Charging", "Releasing"]

[paths]
data_dir = %q
log_dir = %q
api_bind = ""
`, cfg.Paths.DataDir, cfg.Paths.LogDir)
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	logger := logging.NewNop()
	store, err := snapshot.Open(cfg)
	if err != nil {
		t.Fatalf("snapshot.Open: %v", err)
	}
	hub := broadcast.NewHub(64)
	engine := queue.NewEngine(cfg, store, hub, logger)

	d, err := daemon.New(cfg, engine, store, hub, nil, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socketPath := filepath.Join(cfg.Paths.DataDir, "turnstile.sock")
	srv, err := ipc.NewServer(ctx, socketPath, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping CLI test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	time.Sleep(50 * time.Millisecond)

	return &cliTestEnv{
		socketPath: socketPath,
		configPath: configPath,
		engine:     engine,
	}
}

func runCLI(t *testing.T, args []string, socketPath, configPath string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append(args, "--socket", socketPath, "--config", configPath))
	err := cmd.Execute()
	return buf.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}

func TestTakeCallRecallCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, []string{"take", "Charging"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("take: %v", err)
	}
	requireContains(t, out, "Your number is C1")

	out, err = runCLI(t, []string{"call", "Charging"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	requireContains(t, out, "Now serving C1 at Charging")

	out, err = runCLI(t, []string{"recall", "Charging"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	requireContains(t, out, "Now serving C1 at Charging")

	out, err = runCLI(t, []string{"call", "Charging"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("call empty: %v", err)
	}
	requireContains(t, out, "No one waiting at Charging")
}

func TestTakeUnknownStationFails(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := runCLI(t, []string{"take", "Basement"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown station")
	}
	if !strings.Contains(err.Error(), "unknown station") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStatusCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := env.engine.Enqueue(context.Background(), "Releasing"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	out, err := runCLI(t, []string{"status", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var status ipc.StatusResponse
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("decode status JSON: %v", err)
	}
	if len(status.Stations) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(status.Stations))
	}
	if status.TotalWaiting != 1 {
		t.Fatalf("expected 1 waiting, got %d", status.TotalWaiting)
	}
}

func TestAnnounceCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, []string{"announce"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("announce: %v", err)
	}
	requireContains(t, out, "No announcement set")

	out, err = runCLI(t, []string{"announce", "Closing", "early", "today"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("announce set: %v", err)
	}
	requireContains(t, out, "Announcement set: Closing early today")

	out, err = runCLI(t, []string{"announce"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("announce get: %v", err)
	}
	requireContains(t, out, "Closing early today")
}

func TestExportCommandCSV(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := runCLI(t, []string{"export"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected error with nothing waiting")
	}

	if _, err := env.engine.Enqueue(context.Background(), "Charging"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	out, err := runCLI(t, []string{"export"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(out, "Service,Number\n") {
		t.Fatalf("missing csv header: %q", out)
	}
	requireContains(t, out, "Charging,C1")
}

func TestResetCommandRequiresForce(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := env.engine.Enqueue(context.Background(), "Charging"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if _, err := runCLI(t, []string{"reset"}, env.socketPath, env.configPath); err == nil {
		t.Fatal("expected reset without --force to fail")
	}
	if summary := env.engine.Summarize(); summary.TotalWaiting != 1 {
		t.Fatalf("expected queue untouched, got %d waiting", summary.TotalWaiting)
	}

	out, err := runCLI(t, []string{"reset", "--force"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("reset --force: %v", err)
	}
	requireContains(t, out, "All queues reset")
	if summary := env.engine.Summarize(); summary.TotalWaiting != 0 {
		t.Fatalf("expected empty queues, got %d waiting", summary.TotalWaiting)
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, buf.String(), "Wrote sample configuration")

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read generated config: %v", err)
	}
	if !strings.Contains(string(data), "[stations]") {
		t.Fatalf("unexpected sample contents:\n%s", data)
	}

	cmd = newRootCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected second init without --overwrite to fail")
	}
}
