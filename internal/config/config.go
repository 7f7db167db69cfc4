// Package config provides configuration management for manifestlock.
//
// The config file is optional; a bare invocation runs entirely on defaults
// and CLI flags. When present it supplies the scan roots, the ledger
// location, the run-history database and the duplicate-URN policy.
//
// Config file locations (priority order):
//  1. $MANIFESTLOCK_CONFIG
//  2. ./manifestlock.yaml
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"manifestlock/internal/domain"
)

const (
	// EnvConfigPath is the environment variable for an explicit config path.
	EnvConfigPath = "MANIFESTLOCK_CONFIG"
	// ConfigFileName is the default config file name.
	ConfigFileName = "manifestlock.yaml"
)

// Config holds run defaults. CLI flags override every field.
type Config struct {
	// Paths are the scan roots handed to discovery.
	Paths []string `yaml:"paths,omitempty"`
	// Hashlock is the ledger file location.
	Hashlock string `yaml:"hashlock,omitempty"`
	// History is the optional SQLite run-history database path. Empty
	// disables history recording entirely.
	History string `yaml:"history,omitempty"`
	// DuplicateURNs selects the policy when two source files produce the
	// same URN: allow, warn or error.
	DuplicateURNs domain.DuplicatePolicy `yaml:"duplicate_urns,omitempty"`
}

// Load finds and loads the config file, or returns defaults if none found.
func Load() (*Config, string, error) {
	path := FindConfigPath()
	if path == "" {
		return DefaultConfig(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// FindConfigPath searches for a config file in priority order. Returns an
// empty string when none is found.
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if fileExists(path) {
			return path
		}
	}
	if fileExists(ConfigFileName) {
		return ConfigFileName
	}
	return ""
}

// DefaultConfig returns sensible defaults for a bare invocation.
func DefaultConfig() *Config {
	return &Config{
		Paths:         []string{"manifests", "deploy", "k8s"},
		Hashlock:      "hashlock.json",
		DuplicateURNs: domain.DuplicateWarn,
	}
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	if len(c.Paths) == 0 {
		c.Paths = DefaultConfig().Paths
	}
	if c.Hashlock == "" {
		c.Hashlock = DefaultConfig().Hashlock
	}
	c.DuplicateURNs = domain.ParseDuplicatePolicy(string(c.DuplicateURNs))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
