package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.URL != "http://localhost:7745/api" {
		t.Errorf("unexpected default url %q", cfg.Server.URL)
	}
	if cfg.Server.Timeout != 15*time.Second {
		t.Errorf("expected 15s timeout, got %v", cfg.Server.Timeout)
	}
	if cfg.UI.DefaultView != ViewInventory || cfg.UI.PageSize != 8 {
		t.Errorf("unexpected ui defaults: %+v", cfg.UI)
	}
	if !cfg.Tree.IncludeItems || cfg.Tree.ExpandRoots {
		t.Errorf("unexpected tree defaults: %+v", cfg.Tree)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestXDGDirs(t *testing.T) {
	dir := isolate(t)
	if got, want := ConfigPath(), filepath.Join(dir, "config", "stockpile", "config.yaml"); got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}
	if got, want := StateDir(), filepath.Join(dir, "state", "stockpile"); got != want {
		t.Errorf("StateDir() = %q, want %q", got, want)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	isolate(t)
	cfg, err := Load("/nonexistent/path/config.yaml", nil)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.UI.PageSize != 8 {
		t.Errorf("expected default config, got page size %d", cfg.UI.PageSize)
	}
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  url: https://inventory.example.com/api
  timeout: 3s
ui:
  default_view: locations
tree:
  expand_roots: true
  default_expanded: [loc-1, loc-2]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.URL != "https://inventory.example.com/api" {
		t.Errorf("url = %q", cfg.Server.URL)
	}
	if cfg.Server.Timeout != 3*time.Second {
		t.Errorf("timeout = %v", cfg.Server.Timeout)
	}
	if cfg.UI.DefaultView != ViewLocations {
		t.Errorf("default view = %q", cfg.UI.DefaultView)
	}
	// Unset keys keep their defaults.
	if cfg.UI.PageSize != 8 || !cfg.Tree.IncludeItems {
		t.Errorf("defaults lost: %+v", cfg)
	}
	p := cfg.TreePolicy()
	if !p.ExpandRoots || len(p.DefaultExpanded) != 2 || p.DefaultExpanded[1] != "loc-2" {
		t.Errorf("tree policy = %+v", p)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  url: http://file.local/api\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STK_SERVER_URL", "http://env.local/api")
	t.Setenv("STK_UI_DEFAULT_VIEW", "labels")

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.URL != "http://env.local/api" {
		t.Errorf("env did not override file: %q", cfg.Server.URL)
	}
	if cfg.UI.DefaultView != ViewLabels {
		t.Errorf("default view = %q", cfg.UI.DefaultView)
	}
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("STK_SERVER_URL", "http://env.local/api")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server", "", "")
	flags.Duration("timeout", 0, "")
	flags.String("view", "", "")
	if err := flags.Parse([]string{"--server", "http://flag.local/api"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.URL != "http://flag.local/api" {
		t.Errorf("flag did not override env: %q", cfg.Server.URL)
	}
	// Unset flags must not clobber defaults with zero values.
	if cfg.Server.Timeout != 15*time.Second || cfg.UI.DefaultView != ViewInventory {
		t.Errorf("unset flags leaked: %+v", cfg)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, nil); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.Server.URL = "/api" }},
		{"negative timeout", func(c *Config) { c.Server.Timeout = -time.Second }},
		{"zero page size", func(c *Config) { c.UI.PageSize = 0 }},
		{"unknown view", func(c *Config) { c.UI.DefaultView = "board" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.URL = "https://box.example.org/api"
	cfg.Server.Timeout = 42 * time.Second
	cfg.Tree.DefaultExpanded = []string{"garage"}

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}
	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Server.URL != cfg.Server.URL || loaded.Server.Timeout != cfg.Server.Timeout {
		t.Errorf("server round trip: %+v", loaded.Server)
	}
	if len(loaded.Tree.DefaultExpanded) != 1 || loaded.Tree.DefaultExpanded[0] != "garage" {
		t.Errorf("tree round trip: %+v", loaded.Tree)
	}
}
