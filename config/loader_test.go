package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testYAML = `
process:
  default_timeout: "30s"
  grace_period: "250ms"
pool:
  max_workers: 4
  spawn_rate: 10
  spawn_burst: 5
signals:
  shutdown: ["terminate"]
`

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "goproc.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, testYAML)

	l, err := NewLoader(dir, "goproc.yaml")
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	cfg, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Process.DefaultTimeout.Duration != 30*time.Second {
		t.Errorf("DefaultTimeout = %v, want 30s", cfg.Process.DefaultTimeout.Duration)
	}
	if cfg.Process.GracePeriod.Duration != 250*time.Millisecond {
		t.Errorf("GracePeriod = %v, want 250ms", cfg.Process.GracePeriod.Duration)
	}
	if cfg.Pool.MaxWorkers != 4 {
		t.Errorf("MaxWorkers = %d, want 4", cfg.Pool.MaxWorkers)
	}
	// Unlisted sections keep their defaults.
	if cfg.Retry.MaxRetries != 3 {
		t.Errorf("Retry.MaxRetries = %d, want default 3", cfg.Retry.MaxRetries)
	}

	if l.Get() != cfg {
		t.Error("Get() does not return the loaded config")
	}
}

func TestLoader_CachesByHash(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, testYAML)

	l, err := NewLoader(dir, "goproc.yaml")
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	changes := 0
	l.onChange = append(l.onChange, func(*Config) { changes++ })

	ctx := context.Background()
	first, err := l.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := l.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if first != second {
		t.Error("unchanged file must return the cached config")
	}
	if changes != 1 {
		t.Errorf("onChange fired %d times, want 1", changes)
	}

	writeConfig(t, dir, testYAML+"retry:\n  max_retries: 7\n")
	third, err := l.Load(ctx)
	if err != nil {
		t.Fatalf("Load after change: %v", err)
	}
	if third.Retry.MaxRetries != 7 {
		t.Errorf("MaxRetries = %d, want reloaded 7", third.Retry.MaxRetries)
	}
	if changes != 2 {
		t.Errorf("onChange fired %d times, want 2", changes)
	}
}

func TestLoader_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "pool: [not a mapping\n")

	l, err := NewLoader(dir, "goproc.yaml")
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	if _, err := l.Load(context.Background()); err == nil {
		t.Error("Load(bad yaml) = nil, want error")
	}
}

func TestLoader_MissingFile(t *testing.T) {
	l, err := NewLoader(t.TempDir(), "absent.yaml")
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	if _, err := l.Load(context.Background()); err == nil {
		t.Error("Load(missing file) = nil, want error")
	}
}

func TestLoader_Watch(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, testYAML)

	l, err := NewLoader(dir, "goproc.yaml")
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l.Watch(ctx, 20*time.Millisecond)
	defer l.StopWatch()

	deadline := time.Now().Add(2 * time.Second)
	for l.Get() == nil && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if l.Get() == nil {
		t.Fatal("Watch never loaded the config")
	}
}
