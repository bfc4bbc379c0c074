package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	cfg, err := loadEmbedded()
	require.NoError(t, err)

	assert.Equal(t, "deepseek-r1:32b", cfg.Model)
	assert.Equal(t, "http://localhost:11434/api/generate", cfg.Endpoint)
	assert.Equal(t, "origin", cfg.Remote)
	assert.Equal(t, 60, cfg.Timeout)
	assert.Equal(t, "README.md", cfg.ReadmeFile)
}

func TestLoadWithDir_GlobalOverride(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(
		filepath.Join(dir, "config.yaml"),
		[]byte("model: llama3\ntimeout: 10\n"),
		0o600,
	)
	require.NoError(t, err)

	cfg, err := LoadWithDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "llama3", cfg.Model)
	assert.Equal(t, 10, cfg.Timeout)
	// Untouched keys keep embedded defaults.
	assert.Equal(t, "origin", cfg.Remote)
}

func TestLoadWithDir_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadWithDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "deepseek-r1:32b", cfg.Model)
}

func TestLoadWithDir_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "config.yaml"),
		[]byte("model: llama3\n"),
		0o600,
	))

	t.Setenv("AUTOCOMMIT_MODEL", "qwen2.5-coder")
	t.Setenv("AUTOCOMMIT_TIMEOUT", "5")

	cfg, err := LoadWithDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5-coder", cfg.Model)
	assert.Equal(t, 5, cfg.Timeout)
}

func TestLoadWithDir_InvalidTimeout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "config.yaml"),
		[]byte("timeout: -1\n"),
		0o600,
	))

	_, err := LoadWithDir(dir)
	assert.Error(t, err)
}

func TestLoadWithDir_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "config.yaml"),
		[]byte(":\n  - not yaml"),
		0o600,
	))

	_, err := LoadWithDir(dir)
	assert.Error(t, err)
}
