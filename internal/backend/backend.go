// Package backend wires the services the command API exposes to the
// front-end: the secret store, passthrough file I/O, the pick broker, and
// the source-file watcher.
package backend

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/finchapp/finch/internal/audit"
	"github.com/finchapp/finch/internal/config"
	"github.com/finchapp/finch/internal/files"
	"github.com/finchapp/finch/internal/health"
	"github.com/finchapp/finch/internal/picker"
	"github.com/finchapp/finch/internal/secrets"
	"github.com/finchapp/finch/internal/watch"
)

// auditRingSize is how many recent audit entries the daemon keeps in memory
// for the recent-activity endpoint.
const auditRingSize = 256

// Backend holds the constructed services for one daemon instance.
type Backend struct {
	Secrets secrets.Store
	Files   *files.Service
	Picks   *picker.Broker
	Watcher *watch.Watcher
	Audit   *audit.Logger

	dataDir string
	logger  *slog.Logger
}

// New builds a backend from configuration. The actor ("daemon" or "cli")
// attributes audit entries to the process doing the work. The data directory
// and the audit log's parent directory are created if absent.
func New(cfg *config.Config, actor string) (*Backend, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.AuditLog), 0700); err != nil {
		return nil, fmt.Errorf("creating audit log dir: %w", err)
	}

	auditLog, err := audit.NewLogger(cfg.AuditLog, auditRingSize)
	if err != nil {
		return nil, err
	}

	store, err := newStore(cfg)
	if err != nil {
		auditLog.Close()
		return nil, err
	}

	watcher, err := watch.New()
	if err != nil {
		auditLog.Close()
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	return &Backend{
		Secrets: secrets.NewAuditedStore(store, auditLog, actor),
		Files:   files.NewService(auditLog),
		Picks:   picker.New(cfg.PickTimeout.Duration),
		Watcher: watcher,
		Audit:   auditLog,
		dataDir: cfg.DataDir,
		logger:  slog.With("component", "backend"),
	}, nil
}

// Run starts the background loops (currently the file watcher) and blocks
// until the context is cancelled.
func (b *Backend) Run(ctx context.Context) {
	b.Watcher.Run(ctx)
}

// Health probes the storage root.
func (b *Backend) Health() health.Report {
	return health.Check(b.dataDir)
}

// Close releases resources held by the backend.
func (b *Backend) Close() error {
	b.Watcher.Close()
	return b.Audit.Close()
}

func newStore(cfg *config.Config) (secrets.Store, error) {
	switch cfg.SecretsBackend {
	case config.BackendFile, "":
		return secrets.NewFileStore(cfg.DataDir), nil
	case config.BackendKeychain:
		return secrets.NewSystemStore(), nil
	case config.BackendMemory:
		return secrets.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown secrets backend %q", cfg.SecretsBackend)
	}
}
