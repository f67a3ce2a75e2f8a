package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Key store backends.
const (
	KeyStoreFile = "file"
	KeyStoreDB   = "db"
)

// Config holds runtime settings for the actionkeeper CLI.
type Config struct {
	DatabasePath string `json:"database_path" yaml:"database_path" env:"ACTIONKEEPER_DB_PATH"`
	KeyStore     string `json:"key_store"     yaml:"key_store"     env:"ACTIONKEEPER_KEY_STORE"`
	KeyPath      string `json:"key_path"      yaml:"key_path"      env:"ACTIONKEEPER_KEY_PATH"`
	LogLevel     string `json:"log_level"     yaml:"log_level"     env:"ACTIONKEEPER_LOG_LEVEL"`

	Passphrase string `json:"-" yaml:"-" env:"ACTIONKEEPER_PASSPHRASE"`
}

// DefaultDir is the per-user directory holding the database and key file.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "actionkeeper")
	}
	return ".actionkeeper"
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	dir := DefaultDir()
	c.DatabasePath = filepath.Join(dir, "actions.db")
	c.KeyStore = KeyStoreFile
	c.KeyPath = filepath.Join(dir, "device.key")
	c.LogLevel = "info"
}

// Validate checks values that cannot be defaulted away.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is empty")
	}
	switch c.KeyStore {
	case KeyStoreFile:
		if c.KeyPath == "" {
			return fmt.Errorf("key path is empty")
		}
	case KeyStoreDB:
	default:
		return fmt.Errorf("unknown key store %q (want %q or %q)", c.KeyStore, KeyStoreFile, KeyStoreDB)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file at path (if non-empty) and the environment. Later sources
// take precedence over earlier ones.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseFile(cfg, path); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
