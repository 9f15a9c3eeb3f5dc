package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Store.Path != nil || cfg.Log.Level != nil || cfg.Display.Color != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[store]
path = "/tmp/mj.db"
retries = 5

[log]
level = "debug"

[display]
color = true
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Store.Path == nil || *cfg.Store.Path != "/tmp/mj.db" {
		t.Fatalf("unexpected store path: %v", cfg.Store.Path)
	}
	if cfg.Store.Retries == nil || *cfg.Store.Retries != 5 {
		t.Fatalf("unexpected retries: %v", cfg.Store.Retries)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %v", cfg.Log.Level)
	}
	if cfg.Log.File != nil {
		t.Fatalf("expected unset log file, got %q", *cfg.Log.File)
	}
	if cfg.Display.Color == nil || !*cfg.Display.Color {
		t.Fatalf("unexpected color: %v", cfg.Display.Color)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[store]\npth = \"x\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "store.pth") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(Template), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("expected template to decode, got %v", err)
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "mjtally", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "mjtally", "mjtally.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/state", "mjtally", "mjtally.log") {
		t.Fatalf("unexpected log path %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/ann")
	if got := ExpandHome("~/mj.db"); got != filepath.Join("/home/ann", "mj.db") {
		t.Fatalf("unexpected expansion %q", got)
	}
	if got := ExpandHome("/abs/mj.db"); got != "/abs/mj.db" {
		t.Fatalf("expected absolute path untouched, got %q", got)
	}
}
