package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/orion/engine/core"
)

// ApplicationInfo names the application and engine towards the Vulkan
// driver. All three versions are packed with core.MakeVersion-style
// major/minor/patch triples on the renderer side.
type ApplicationInfo struct {
	AppName       string `toml:"app_name"`
	AppVersion    uint32 `toml:"app_version"`
	EngineName    string `toml:"engine_name"`
	EngineVersion uint32 `toml:"engine_version"`
	VulkanVersion uint32 `toml:"vulkan_version"`
}

// Config drives engine construction. It validates before any native API is
// touched so that bad values never reach the driver.
type Config struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height.
	StartHeight uint32 `toml:"start_height"`
	// The application name used in windowing.
	Name string `toml:"name"`
	// Number of frames the CPU may run ahead of the GPU.
	FramesInFlight uint8 `toml:"frames_in_flight"`
	// Enable the Khronos validation layer and the debug messenger.
	EnableValidation bool `toml:"enable_validation"`
	// Optional application/engine identification triple.
	AppInfo *ApplicationInfo `toml:"app_info"`
}

const defaultFramesInFlight = 2

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		StartWidth:       800,
		StartHeight:      600,
		Name:             "Orion",
		FramesInFlight:   defaultFramesInFlight,
		EnableValidation: true,
	}
}

// Load reads a TOML configuration file. Missing keys keep their Default
// values; the result is validated before it is returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		core.LogError("failed to read config file '%s': %s", path, err)
		return nil, err
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		core.LogError("failed to parse config file '%s': %s", path, err)
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on values that would otherwise surface as obscure
// native-call failures much later.
func (c *Config) Validate() error {
	if c.StartWidth == 0 || c.StartHeight == 0 {
		return fmt.Errorf("%w: window dimensions must be positive, got %dx%d",
			core.ErrInvalidConfiguration, c.StartWidth, c.StartHeight)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: window title must not be empty", core.ErrInvalidConfiguration)
	}
	if c.FramesInFlight == 0 {
		c.FramesInFlight = defaultFramesInFlight
	}
	if c.AppInfo != nil {
		if c.AppInfo.AppName == "" || c.AppInfo.EngineName == "" {
			return fmt.Errorf("%w: app_info names must not be empty", core.ErrInvalidConfiguration)
		}
	}
	return nil
}
