package core

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/hubastard/bramble/engine/colors"
)

// Config for the engine run.
type Config struct {
	Title        string       `toml:"title"`
	Width        int          `toml:"width"`
	Height       int          `toml:"height"`
	VSync        bool         `toml:"vsync"`
	DoubleBuffer bool         `toml:"double_buffer"`
	Fullscreen   bool         `toml:"fullscreen"`
	ClearColor   colors.Color `toml:"clear_color"`
}

// DefaultConfig returns the settings used when no config file is present.
func DefaultConfig() Config {
	return Config{
		Title:        "bramble",
		Width:        800,
		Height:       600,
		VSync:        true,
		DoubleBuffer: true,
		ClearColor:   colors.Black,
	}
}

// LoadConfig reads a TOML config file, filling unset fields with defaults.
// A missing file is not an error; the defaults are returned as-is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
