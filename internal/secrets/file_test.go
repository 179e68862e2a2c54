package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreOnDiskFormat(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)

	if err := s.Set("token", "abc123"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	path := filepath.Join(root, ".keys", "token.dat")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading key file: %v", err)
	}
	// base64("abc123")
	if string(data) != "YWJjMTIz" {
		t.Errorf("file content = %q, want %q", data, "YWJjMTIz")
	}

	val, err := s.Get("token")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != "abc123" {
		t.Errorf("Get = %q, want %q", val, "abc123")
	}
}

func TestFileStoreCreatesKeysDir(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)

	// Get on a fresh directory must not crash; the keys dir is created and
	// the key reported missing.
	_, err := s.Get("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on fresh dir, got %v", err)
	}

	info, err := os.Stat(filepath.Join(root, ".keys"))
	if err != nil {
		t.Fatalf("keys dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected .keys to be a directory")
	}
}

func TestFileStoreCorruptBase64(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)

	keysDir := filepath.Join(root, ".keys")
	if err := os.MkdirAll(keysDir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(keysDir, "bad.dat"), []byte("not-valid-base64!!!"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := s.Get("bad")
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode for corrupt payload, got %v", err)
	}
}

func TestFileStoreInvalidUTF8(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)

	keysDir := filepath.Join(root, ".keys")
	if err := os.MkdirAll(keysDir, 0700); err != nil {
		t.Fatal(err)
	}
	// Valid base64 of the bytes 0xff 0xfe — not valid UTF-8 once decoded.
	if err := os.WriteFile(filepath.Join(keysDir, "binary.dat"), []byte("//4="), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := s.Get("binary")
	if !errors.Is(err, ErrEncoding) {
		t.Errorf("expected ErrEncoding for non-UTF-8 payload, got %v", err)
	}
}

func TestFileStoreDirectoryError(t *testing.T) {
	// Root path exists but is a regular file, so MkdirAll of .keys fails.
	dir := t.TempDir()
	blocked := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(blocked, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(blocked)

	if _, err := s.Get("any"); !errors.Is(err, ErrDirectory) {
		t.Errorf("Get: expected ErrDirectory, got %v", err)
	}
	if err := s.Set("any", "v"); !errors.Is(err, ErrDirectory) {
		t.Errorf("Set: expected ErrDirectory, got %v", err)
	}
	if err := s.Delete("any"); !errors.Is(err, ErrDirectory) {
		t.Errorf("Delete: expected ErrDirectory, got %v", err)
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	root := t.TempDir()

	if err := NewFileStore(root).Set("persistent", "survives"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// A new store over the same root sees the value: no process-wide state.
	val, err := NewFileStore(root).Get("persistent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if val != "survives" {
		t.Errorf("expected 'survives', got %q", val)
	}
}

func TestFileStoreListIgnoresForeignFiles(t *testing.T) {
	root := t.TempDir()
	s := NewFileStore(root)

	s.Set("real", "v")
	keysDir := filepath.Join(root, ".keys")
	if err := os.WriteFile(filepath.Join(keysDir, "stray.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(keysDir, "subdir.dat"), 0700); err != nil {
		t.Fatal(err)
	}

	keys, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 1 || keys[0] != "real" {
		t.Errorf("List = %v, want [real]", keys)
	}
}
