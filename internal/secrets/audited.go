package secrets

import (
	"errors"
	"fmt"

	"github.com/finchapp/finch/internal/audit"
)

// AuditedStore wraps a Store and records every read, write, and delete to
// the audit log.
type AuditedStore struct {
	inner Store
	audit *audit.Logger
	actor string // "cli" or "daemon"
}

// NewAuditedStore wraps an existing store with audit logging.
func NewAuditedStore(inner Store, auditLog *audit.Logger, actor string) *AuditedStore {
	return &AuditedStore{
		inner: inner,
		audit: auditLog,
		actor: actor,
	}
}

func (s *AuditedStore) Set(key, value string) error {
	if err := s.inner.Set(key, value); err != nil {
		return fmt.Errorf("audited store set: %w", err)
	}

	// Audit logging is best-effort — a failure to log should not block the operation.
	s.audit.Log(audit.Entry{
		Action: audit.ActionSecretWrite,
		Key:    key,
		Actor:  s.actor,
	})
	return nil
}

func (s *AuditedStore) Get(key string) (string, error) {
	val, err := s.inner.Get(key)
	if err != nil {
		// A missing key is an ordinary outcome; everything else is worth a trace.
		if !errors.Is(err, ErrNotFound) {
			s.audit.Log(audit.Entry{
				Action: audit.ActionSecretRead,
				Key:    key,
				Actor:  s.actor,
				Error:  err.Error(),
			})
		}
		return "", fmt.Errorf("audited store get: %w", err)
	}

	// Audit logging is best-effort — a failure to log should not block the operation.
	s.audit.Log(audit.Entry{
		Action: audit.ActionSecretRead,
		Key:    key,
		Actor:  s.actor,
	})
	return val, nil
}

func (s *AuditedStore) List() ([]string, error) {
	return s.inner.List()
}

func (s *AuditedStore) Delete(key string) error {
	if err := s.inner.Delete(key); err != nil {
		return fmt.Errorf("audited store delete: %w", err)
	}

	// Audit logging is best-effort — a failure to log should not block the operation.
	s.audit.Log(audit.Entry{
		Action: audit.ActionSecretDelete,
		Key:    key,
		Actor:  s.actor,
	})
	return nil
}

func (s *AuditedStore) GetMultiple(keys []string) (map[string]string, error) {
	result, err := s.inner.GetMultiple(keys)
	if err != nil {
		return nil, fmt.Errorf("audited store get multiple: %w", err)
	}

	for key := range result {
		// Audit logging is best-effort — a failure to log should not block the operation.
		s.audit.Log(audit.Entry{
			Action: audit.ActionSecretRead,
			Key:    key,
			Actor:  s.actor,
		})
	}
	return result, nil
}
