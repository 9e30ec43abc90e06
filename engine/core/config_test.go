package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubastard/bramble/engine/colors"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	src := `
title = "demo"
width = 1280
height = 720
vsync = false
clear_color = [0.1, 0.2, 0.3, 1.0]
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Title)
	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, 720, cfg.Height)
	assert.False(t, cfg.VSync)
	assert.Equal(t, colors.Color{0.1, 0.2, 0.3, 1}, cfg.ClearColor)
	// untouched keys keep their defaults
	assert.True(t, cfg.DoubleBuffer)
	assert.False(t, cfg.Fullscreen)
}

func TestLoadConfigRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.toml")
	require.NoError(t, os.WriteFile(path, []byte("title = "), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
