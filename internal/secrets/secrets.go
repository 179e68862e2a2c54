// Package secrets provides key-value storage for small secret and
// configuration values used by the Finch front-end.
//
// The default backend persists each value as an individual base64-encoded
// file under <data-dir>/.keys. "Secret" refers to the storage location
// (the application-private data directory), not cryptographic protection —
// values are encoded, not encrypted. On macOS an alternative backend stores
// values in the system Keychain instead.
package secrets

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for every failure category the store can produce.
// Callers branch with errors.Is rather than parsing message text.
var (
	// ErrNotFound is returned by Get when no value exists for the key.
	ErrNotFound = errors.New("key not found")

	// ErrInvalidKey is returned when a key is empty or would escape the
	// storage directory when used as a file name stem.
	ErrInvalidKey = errors.New("invalid key")

	// ErrDirectory is returned when the storage directory cannot be
	// created or accessed.
	ErrDirectory = errors.New("storage directory unavailable")

	// ErrDecode is returned by Get when the stored payload is not valid base64.
	ErrDecode = errors.New("stored value is not valid base64")

	// ErrEncoding is returned by Get when the decoded bytes are not valid UTF-8.
	ErrEncoding = errors.New("stored value is not valid UTF-8")

	// ErrWrite is returned by Set on an I/O failure.
	ErrWrite = errors.New("write failed")

	// ErrDelete is returned by Delete on an I/O failure.
	ErrDelete = errors.New("delete failed")
)

// Store is the interface for secret storage operations.
type Store interface {
	Set(key, value string) error
	Get(key string) (string, error)
	List() ([]string, error)
	Delete(key string) error
	GetMultiple(keys []string) (map[string]string, error)
}

// ValidateKey rejects keys that are empty or that could escape the storage
// directory when used verbatim as a file name stem.
func ValidateKey(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	case key == "." || key == "..":
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	case strings.ContainsAny(key, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidKey, key)
	}
	return nil
}
