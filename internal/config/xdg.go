// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appName = "mjtally"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	return xdgHome("XDG_CONFIG_HOME", ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	return xdgHome("XDG_DATA_HOME", ".local", "share")
}

// XDGStateHome returns the XDG state home or a default fallback.
func XDGStateHome() string {
	return xdgHome("XDG_STATE_HOME", ".local", "state")
}

func xdgHome(env string, fallback ...string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// DefaultDBPath returns the default path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appName, appName+".db")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// DefaultLogPath returns where the TUIs write their log.
func DefaultLogPath() string {
	return filepath.Join(XDGStateHome(), appName, appName+".log")
}

// ExpandHome resolves a leading ~ in paths read from the config file.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
