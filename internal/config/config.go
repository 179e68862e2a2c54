// Package config loads persistent backend configuration from
// ~/.finch/config.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend names for the secrets store.
const (
	BackendFile     = "file"
	BackendKeychain = "keychain"
	BackendMemory   = "memory"
)

// Config holds persistent backend configuration.
type Config struct {
	// DataDir is the application-private data root. The key-value store
	// lives in its .keys subdirectory. Defaults to ~/.finch/data.
	DataDir string `yaml:"data_dir"`

	// APIAddr is an optional TCP address for the command API in addition
	// to the Unix socket. "auto" binds 127.0.0.1 on an OS-assigned port
	// and writes it to the port file for the shell to read.
	APIAddr string `yaml:"api_addr"`

	// SecretsBackend selects where secrets live: "file" (default),
	// "keychain" (macOS only), or "memory" (testing).
	SecretsBackend string `yaml:"secrets_backend"`

	// PickTimeout bounds how long a file-pick request may stay open.
	// Zero means a pick waits until the user responds.
	PickTimeout Duration `yaml:"pick_timeout"`

	// AuditLog overrides the audit log path. Defaults to ~/.finch/audit.log.
	AuditLog string `yaml:"audit_log"`
}

// Duration wraps time.Duration for YAML unmarshaling from strings like "10s", "5m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

// DefaultPath returns the default config file path: ~/.finch/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".finch", "config.yaml")
}

// Load reads a YAML config file from path. A missing, empty, or all-comment
// file returns a Config with defaults applied and no error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.SecretsBackend {
	case "", BackendFile, BackendKeychain, BackendMemory:
		return nil
	default:
		return fmt.Errorf("unknown secrets_backend %q (expected file, keychain, or memory)", c.SecretsBackend)
	}
}

func (c *Config) applyDefaults() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	if c.DataDir == "" {
		c.DataDir = filepath.Join(home, ".finch", "data")
	}
	if c.SecretsBackend == "" {
		c.SecretsBackend = BackendFile
	}
	if c.AuditLog == "" {
		c.AuditLog = filepath.Join(home, ".finch", "audit.log")
	}
}
