package backend

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/finchapp/finch/internal/config"
	"github.com/finchapp/finch/internal/secrets"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DataDir:        filepath.Join(dir, "data"),
		SecretsBackend: config.BackendFile,
		AuditLog:       filepath.Join(dir, "audit.log"),
	}
}

func TestNewWiresFileBackend(t *testing.T) {
	b, err := New(testConfig(t), "daemon")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer b.Close()

	if err := b.Secrets.Set("token", "abc123"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	val, err := b.Secrets.Get("token")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != "abc123" {
		t.Errorf("Get = %q", val)
	}

	// The audited decorator fed the ring.
	if entries := b.Audit.Recent(10); len(entries) != 2 {
		t.Errorf("expected 2 audit entries, got %d", len(entries))
	}
}

func TestNewMemoryBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.SecretsBackend = config.BackendMemory

	b, err := New(cfg, "daemon")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer b.Close()

	b.Secrets.Set("k", "v")
	if _, err := b.Secrets.Get("k"); err != nil {
		t.Errorf("Get: %v", err)
	}
}

func TestHealthReportsDataDir(t *testing.T) {
	cfg := testConfig(t)
	b, err := New(cfg, "daemon")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer b.Close()

	report := b.Health()
	if report.DataDir != cfg.DataDir {
		t.Errorf("DataDir = %q, want %q", report.DataDir, cfg.DataDir)
	}
	if report.Status != "ok" {
		t.Errorf("Status = %q, want ok", report.Status)
	}
}

func TestSecretsErrorsSurviveWrapping(t *testing.T) {
	b, err := New(testConfig(t), "daemon")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer b.Close()

	if _, err := b.Secrets.Get("missing"); !errors.Is(err, secrets.ErrNotFound) {
		t.Errorf("expected ErrNotFound through the audited store, got %v", err)
	}
}
