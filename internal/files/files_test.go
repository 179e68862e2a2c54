package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/finchapp/finch/internal/audit"
)

func TestReadWriteRoundTrip(t *testing.T) {
	s := NewService(nil)
	path := filepath.Join(t.TempDir(), "doc.json")

	content := `{"sources":[{"name":"demo"}]}`
	if err := s.Write(path, content); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := s.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != content {
		t.Errorf("Read = %q, want %q", got, content)
	}
}

func TestReadMissingFile(t *testing.T) {
	s := NewService(nil)
	if _, err := s.Read(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error reading missing file")
	}
}

func TestWriteOverwrites(t *testing.T) {
	s := NewService(nil)
	path := filepath.Join(t.TempDir(), "doc.json")

	s.Write(path, "first version with more bytes")
	s.Write(path, "second")

	got, err := s.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "second" {
		t.Errorf("Read = %q, want %q", got, "second")
	}
}

func TestNoContentValidation(t *testing.T) {
	// The service is a passthrough: invalid JSON is read and written as-is.
	s := NewService(nil)
	path := filepath.Join(t.TempDir(), "doc.json")

	if err := s.Write(path, "{not json"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != "{not json" {
		t.Errorf("Read = %q", got)
	}
}

func TestExists(t *testing.T) {
	s := NewService(nil)
	path := filepath.Join(t.TempDir(), "doc.json")

	if s.Exists(path) {
		t.Error("Exists true before write")
	}
	if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if !s.Exists(path) {
		t.Error("Exists false after write")
	}
}

func TestExistsNeverErrors(t *testing.T) {
	s := NewService(nil)
	// Paths whose metadata cannot be read report false, not an error.
	for _, path := range []string{"/nonexistent/path", "", filepath.Join(t.TempDir(), "a", "b", "c")} {
		if s.Exists(path) {
			t.Errorf("Exists(%q) = true, want false", path)
		}
	}
}

func TestOperationsAreAudited(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "audit.log")
	logger, err := audit.NewLogger(logPath, 8)
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	s := NewService(logger)
	path := filepath.Join(t.TempDir(), "doc.json")
	s.Write(path, "{}")
	s.Read(path)

	entries := logger.Recent(10)
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	if entries[0].Action != audit.ActionFileWrite || entries[0].Path != path {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Action != audit.ActionFileRead {
		t.Errorf("second entry = %+v", entries[1])
	}
}
