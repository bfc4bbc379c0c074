// Package config provides configuration management for autocommit.
// Configuration is loaded from multiple sources with the following precedence:
// embedded defaults → global file (~/.autocommit/config.yaml) → env vars
package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/config.yaml
var defaultsFS embed.FS

// Config holds all configuration settings for autocommit.
type Config struct {
	// Model is the Ollama model name used for generation.
	Model string `yaml:"model"`

	// Endpoint is the Ollama generate API endpoint.
	Endpoint string `yaml:"endpoint"`

	// Remote is the git remote that commits are pushed to.
	Remote string `yaml:"remote"`

	// Timeout is the model request timeout in seconds.
	Timeout int `yaml:"timeout"`

	// ReadmeFile is the file written by the README regeneration mode.
	ReadmeFile string `yaml:"readme_file"`
}

// DefaultConfigDir returns the global configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".autocommit"
	}
	return filepath.Join(home, ".autocommit")
}

// Load loads configuration from the default locations.
func Load() (*Config, error) {
	return LoadWithDir(DefaultConfigDir())
}

// LoadWithDir loads configuration using the given global config directory.
// Missing files are not an error; embedded defaults always apply first.
func LoadWithDir(globalDir string) (*Config, error) {
	cfg, err := loadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("load embedded defaults: %w", err)
	}

	path := filepath.Join(globalDir, "config.yaml")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// No global config is fine.
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("invalid timeout %d: must be positive", cfg.Timeout)
	}
	return cfg, nil
}

// loadEmbedded parses the embedded default configuration.
func loadEmbedded() (*Config, error) {
	data, err := defaultsFS.ReadFile("defaults/config.yaml")
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides config values from AUTOCOMMIT_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv("AUTOCOMMIT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("AUTOCOMMIT_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("AUTOCOMMIT_REMOTE"); v != "" {
		cfg.Remote = v
	}
	if v := os.Getenv("AUTOCOMMIT_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.Timeout = n
		}
	}
	if v := os.Getenv("AUTOCOMMIT_README_FILE"); v != "" {
		cfg.ReadmeFile = v
	}
}
