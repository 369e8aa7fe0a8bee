// Package config handles the CodeShift configuration directory and
// migration profiles.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvConfigDir overrides the config directory location. Primarily for
// tests.
const EnvConfigDir = "CODESHIFT_CONFIG_DIR"

// overrideDir is set by the CLI --config-dir flag.
var overrideDir string

// SetDir overrides the config directory for this process. The
// CODESHIFT_CONFIG_DIR environment variable still takes priority.
func SetDir(dir string) {
	overrideDir = dir
}

// Config holds the persisted tool configuration (~/.codeshift/config.yaml).
type Config struct {
	Version     string `yaml:"version"`
	DefaultType string `yaml:"default_type,omitempty"`
	AuditLog    bool   `yaml:"audit_log"`
}

// Default returns the configuration written on first run.
func Default() Config {
	return Config{
		Version:  "1.0",
		AuditLog: true,
	}
}

// Dir returns the configuration directory path.
// Priority: 1) CODESHIFT_CONFIG_DIR env var, 2) SetDir override, 3) ~/.codeshift.
func Dir() string {
	if envDir := os.Getenv(EnvConfigDir); envDir != "" {
		return envDir
	}
	if overrideDir != "" {
		return overrideDir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to a relative directory if home cannot be determined.
		return ".codeshift"
	}
	return filepath.Join(homeDir, ".codeshift")
}

// HistoryDBPath returns the path of the run history database.
func HistoryDBPath() string {
	return filepath.Join(Dir(), "codeshift.db")
}

// AuditLogDir returns the directory of the audit log.
func AuditLogDir() string {
	return filepath.Join(Dir(), "logs")
}

// Init ensures the config directory and default config file exist.
func Init() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		data, err := yaml.Marshal(Default())
		if err != nil {
			return fmt.Errorf("failed to marshal default config: %w", err)
		}
		if err := os.WriteFile(configFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write default config: %w", err)
		}
	}
	return nil
}

// Load reads the config file, initializing it first if absent.
func Load() (Config, error) {
	if err := Init(); err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(filepath.Join(Dir(), "config.yaml"))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
