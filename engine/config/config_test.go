package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/orion/engine/core"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint32(800), cfg.StartWidth)
	assert.Equal(t, uint32(600), cfg.StartHeight)
	assert.Equal(t, uint8(2), cfg.FramesInFlight)
}

func TestValidateZeroDimensions(t *testing.T) {
	cfg := Default()
	cfg.StartWidth = 0

	err := cfg.Validate()
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)

	cfg = Default()
	cfg.StartHeight = 0
	assert.ErrorIs(t, cfg.Validate(), core.ErrInvalidConfiguration)
}

func TestValidateEmptyTitle(t *testing.T) {
	cfg := Default()
	cfg.Name = ""
	assert.ErrorIs(t, cfg.Validate(), core.ErrInvalidConfiguration)
}

func TestValidateDefaultsFramesInFlight(t *testing.T) {
	cfg := Default()
	cfg.FramesInFlight = 0

	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint8(2), cfg.FramesInFlight)
}

func TestValidateAppInfoNames(t *testing.T) {
	cfg := Default()
	cfg.AppInfo = &ApplicationInfo{AppName: "demo"}
	assert.ErrorIs(t, cfg.Validate(), core.ErrInvalidConfiguration)

	cfg.AppInfo.EngineName = "orion"
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orion.toml")
	content := []byte(`
name = "demo"
start_width = 1280
start_height = 720
frames_in_flight = 3
enable_validation = false

[app_info]
app_name = "demo"
engine_name = "orion"
app_version = 1
engine_version = 1
vulkan_version = 1
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, uint32(1280), cfg.StartWidth)
	assert.Equal(t, uint32(720), cfg.StartHeight)
	assert.Equal(t, uint8(3), cfg.FramesInFlight)
	assert.False(t, cfg.EnableValidation)
	require.NotNil(t, cfg.AppInfo)
	assert.Equal(t, "demo", cfg.AppInfo.AppName)
}

func TestLoadMissingKeysKeepDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orion.toml")
	require.NoError(t, os.WriteFile(path, []byte(`name = "demo"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(800), cfg.StartWidth)
	assert.Equal(t, uint8(2), cfg.FramesInFlight)
}

func TestLoadInvalidFileFailsFast(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orion.toml")
	require.NoError(t, os.WriteFile(path, []byte(`start_width = 0`), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
