package secrets

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// keysDirName is the subdirectory of the data root that holds key files.
	keysDirName = ".keys"

	// keyFileExt is the extension of per-key files.
	keyFileExt = ".dat"
)

// FileStore persists one base64-encoded file per key under <root>/.keys.
//
// The store holds no in-memory state: every operation is a fresh filesystem
// round trip, so values survive process restarts and concurrent daemons see
// each other's writes. Concurrent writes to the same key race at the OS
// level; the last write to complete wins. No locking is provided.
type FileStore struct {
	root string
}

// NewFileStore creates a store rooted at the given data directory. The
// directory itself is created lazily on first use.
func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// dir resolves the keys directory, creating it if absent.
func (s *FileStore) dir() (string, error) {
	path := filepath.Join(s.root, keysDirName)
	if err := os.MkdirAll(path, 0700); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDirectory, err)
	}
	return path, nil
}

func (s *FileStore) keyPath(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	dir, err := s.dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, key+keyFileExt), nil
}

// Get reads and decodes the value for a key.
func (s *FileStore) Get(key string) (string, error) {
	path, err := s.keyPath(key)
	if err != nil {
		return "", err
	}

	encoded, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	decoded, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil {
		return "", fmt.Errorf("%w: key %s: %v", ErrDecode, key, err)
	}
	if !utf8.Valid(decoded) {
		return "", fmt.Errorf("%w: key %s", ErrEncoding, key)
	}
	return string(decoded), nil
}

// Set encodes the value and writes it as the complete content of the key's
// file, overwriting any prior content. A single write call — no temp file,
// no partial-write recovery.
func (s *FileStore) Set(key, value string) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(value))
	if err := os.WriteFile(path, []byte(encoded), 0600); err != nil {
		return fmt.Errorf("%w: key %s: %v", ErrWrite, key, err)
	}
	return nil
}

// Delete removes the key's file. Deleting a key that does not exist is a
// no-op, not an error.
func (s *FileStore) Delete(key string) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: key %s: %v", ErrDelete, key, err)
	}
	return nil
}

// List returns the stored keys in sorted order.
func (s *FileStore) List() ([]string, error) {
	dir, err := s.dir()
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectory, err)
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), keyFileExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), keyFileExt))
	}
	sort.Strings(keys)
	return keys, nil
}

// GetMultiple fetches several keys at once. Missing keys are absent from the
// result rather than failing the whole call.
func (s *FileStore) GetMultiple(keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	for _, key := range keys {
		val, err := s.Get(key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		result[key] = val
	}
	return result, nil
}
