// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Store   StoreConfig   `toml:"store"`
	Log     LogConfig     `toml:"log"`
	Display DisplayConfig `toml:"display"`
}

// StoreConfig maps persistence settings.
type StoreConfig struct {
	Path    *string `toml:"path"`
	Retries *int    `toml:"retries"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// DisplayConfig maps output settings.
type DisplayConfig struct {
	Color *bool `toml:"color"`
}

// Template is written when the user opens a config file that does not exist yet.
const Template = `# mjtally configuration. Command-line flags take precedence.

[store]
# path = "~/.local/share/mjtally/mjtally.db"
# retries = 3

[log]
# level = "info"
# file = "~/.local/state/mjtally/mjtally.log"

[display]
# color = false
`

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
