// Package files implements the passthrough file operations the front-end
// uses to import and export JSON documents: raw read, raw write, and an
// existence check. No JSON validation happens here — the front-end owns the
// document format, the backend only moves bytes.
package files

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/finchapp/finch/internal/audit"
)

// Service performs raw file I/O on caller-supplied paths.
type Service struct {
	audit  *audit.Logger
	logger *slog.Logger
}

// NewService creates a file service. The audit logger may be nil, in which
// case operations are not audited.
func NewService(auditLog *audit.Logger) *Service {
	return &Service{
		audit:  auditLog,
		logger: slog.With("component", "files"),
	}
}

// Read returns the full content of the file at path as a string.
func (s *Service) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	s.logAudit(audit.ActionFileRead, path)
	return string(data), nil
}

// Write replaces the content of the file at path, creating it if absent.
func (s *Service) Write(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	s.logAudit(audit.ActionFileWrite, path)
	return nil
}

// Exists reports whether a file exists at path. Any failure to stat the
// path — missing file, missing parent, permission denied — is reported as
// "does not exist"; this operation never errors.
func (s *Service) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *Service) logAudit(action audit.Action, path string) {
	if s.audit == nil {
		return
	}
	// Best-effort: an audit failure should not fail the file operation.
	if err := s.audit.Log(audit.Entry{Action: action, Path: path, Actor: "daemon"}); err != nil {
		s.logger.Warn("audit log write failed", "error", err)
	}
}
