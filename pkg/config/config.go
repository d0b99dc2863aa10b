// Package config handles loading and saving stk configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/stockpile/config.yaml
//   - State:   ~/.local/state/stockpile/ (session, debug log)
//
// Values are layered, lowest to highest: built-in defaults, config.yaml,
// STK_* environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"github.com/vanderheijden86/stockpile/pkg/tree"
	"gopkg.in/yaml.v3"
)

const appName = "stockpile"

// EnvPrefix is the prefix for environment overrides, e.g. STK_SERVER_URL.
const EnvPrefix = "STK_"

// Views the dashboard can open on.
const (
	ViewInventory = "inventory"
	ViewLocations = "locations"
	ViewLabels    = "labels"
)

// ServerConfig locates the inventory backend.
type ServerConfig struct {
	URL     string        `koanf:"url" yaml:"url"`
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`
}

// UIConfig holds dashboard preferences.
type UIConfig struct {
	DefaultView string `koanf:"default_view" yaml:"default_view"` // inventory, locations, labels
	PageSize    int    `koanf:"page_size" yaml:"page_size"`
}

// TreeConfig controls how the location tree is fetched and first shown.
type TreeConfig struct {
	IncludeItems    bool     `koanf:"include_items" yaml:"include_items"`
	ExpandRoots     bool     `koanf:"expand_roots" yaml:"expand_roots"`
	DefaultExpanded []string `koanf:"default_expanded" yaml:"default_expanded"`
}

// Config is the top-level configuration for stk.
type Config struct {
	Server ServerConfig `koanf:"server" yaml:"server"`
	UI     UIConfig     `koanf:"ui" yaml:"ui"`
	Tree   TreeConfig   `koanf:"tree" yaml:"tree"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			URL:     "http://localhost:7745/api",
			Timeout: 15 * time.Second,
		},
		UI: UIConfig{
			DefaultView: ViewInventory,
			PageSize:    8,
		},
		Tree: TreeConfig{
			IncludeItems:    true,
			DefaultExpanded: []string{},
		},
	}
}

func defaultsMap() map[string]any {
	d := DefaultConfig()
	return map[string]any{
		"server.url":            d.Server.URL,
		"server.timeout":        d.Server.Timeout.String(),
		"ui.default_view":       d.UI.DefaultView,
		"ui.page_size":          d.UI.PageSize,
		"tree.include_items":    d.Tree.IncludeItems,
		"tree.expand_roots":     d.Tree.ExpandRoots,
		"tree.default_expanded": d.Tree.DefaultExpanded,
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"server":  "server.url",
	"timeout": "server.timeout",
	"view":    "ui.default_view",
}

// ConfigDir returns the XDG config directory for stk.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// StateDir returns the XDG state directory for stk.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load builds the effective configuration. An empty path means ConfigPath();
// a missing file is not an error. flags may be nil; only flags the user
// actually set override lower layers.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return DefaultConfig(), fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = ConfigPath()
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
				return DefaultConfig(), fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return DefaultConfig(), fmt.Errorf("reading config: %w", err)
		}
	}

	// STK_SERVER_URL -> server.url, STK_UI_DEFAULT_VIEW -> ui.default_view
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil); err != nil {
		return DefaultConfig(), fmt.Errorf("loading env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return DefaultConfig(), fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Tree.DefaultExpanded == nil {
		cfg.Tree.DefaultExpanded = []string{}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks values that would otherwise fail later in confusing ways.
func (c Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: server.url %q is not an absolute URL", ErrInvalid, c.Server.URL)
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("%w: server.timeout must not be negative", ErrInvalid)
	}
	if c.UI.PageSize <= 0 {
		return fmt.Errorf("%w: ui.page_size must be positive", ErrInvalid)
	}
	switch c.UI.DefaultView {
	case ViewInventory, ViewLocations, ViewLabels:
	default:
		return fmt.Errorf("%w: ui.default_view %q", ErrInvalid, c.UI.DefaultView)
	}
	return nil
}

// TreePolicy returns the initial expansion policy for the locations tree.
func (c Config) TreePolicy() tree.Policy {
	return tree.Policy{
		DefaultExpanded: append([]string(nil), c.Tree.DefaultExpanded...),
		ExpandRoots:     c.Tree.ExpandRoots,
	}
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
