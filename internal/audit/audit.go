// Package audit provides append-only structured logging for backend
// commands that touch secrets or user files.
//
// Every operation is recorded to ~/.finch/audit.log as newline-delimited
// JSON, and mirrored into an in-memory ring so the front-end can show
// recent activity without tailing the file.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Action describes what happened.
type Action string

const (
	ActionSecretRead   Action = "secret_read"
	ActionSecretWrite  Action = "secret_write"
	ActionSecretDelete Action = "secret_delete"
	ActionFileRead     Action = "file_read"
	ActionFileWrite    Action = "file_write"
)

// Entry is a single audit log record.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	Action    Action    `json:"action"`
	Key       string    `json:"key,omitempty"`
	Path      string    `json:"path,omitempty"`
	Actor     string    `json:"actor,omitempty"` // "cli" or "daemon"
	Error     string    `json:"error,omitempty"`
}

// Logger writes audit entries to an append-only file and keeps the most
// recent entries in memory.
type Logger struct {
	mu     sync.Mutex
	file   *os.File
	path   string
	recent *Ring
}

// NewLogger creates or opens an audit log file for appending. The ring
// retains the last ringSize entries for the recent-activity API.
func NewLogger(path string, ringSize int) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &Logger{file: f, path: path, recent: NewRing(ringSize)}, nil
}

// Log writes an audit entry.
func (l *Logger) Log(entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling audit entry: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.recent.Add(entry)
	if _, err := l.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing audit entry: %w", err)
	}
	return nil
}

// Recent returns up to n of the most recent entries, oldest first.
func (l *Logger) Recent(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.recent.Last(n)
}

// Close closes the audit log file.
func (l *Logger) Close() error {
	return l.file.Close()
}
