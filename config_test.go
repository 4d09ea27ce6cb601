package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, ".minilib.sqlite", filepath.Base(cfg.Database))
	assert.Empty(t, cfg.Backend)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minilib.yaml")
	data := "database: " + filepath.Join(dir, "books.sqlite") + "\nbackend: bolt\ndebug: true\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "books.sqlite"), cfg.Database)
	assert.Equal(t, "bolt", cfg.Backend)
	assert.True(t, cfg.Debug)
	assert.Equal(t, DefaultConfig().LogFile, cfg.LogFile)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minilib.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [bolt\n"), 0o644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestTruePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "books.sqlite"), truePath("~/books.sqlite"))
	assert.True(t, filepath.IsAbs(truePath("relative.sqlite")))
}
