// Package config handles global tagbot configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/scubot/tagbot/internal/dispatch"
)

const (
	// DefaultAddr is the listen address for "tagbot serve".
	DefaultAddr = "127.0.0.1:8080"
	// DefaultMetricsPath is where the server exposes Prometheus metrics.
	DefaultMetricsPath = "/metrics"
	// DefaultPrefix is the first word of every tag command.
	DefaultPrefix = "tag"
	// DefaultPageSize is the number of tags per "tag list" page.
	DefaultPageSize = 6
)

// Config represents the global tagbot configuration.
type Config struct {
	// Database is the SQLite file holding tags. Defaults to tags.db next to
	// the config file.
	Database string `toml:"database"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	Router RouterConfig `toml:"router"`
	Bot    BotConfig    `toml:"bot"`
	Server ServerConfig `toml:"server"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// RouterConfig configures the command router.
type RouterConfig struct {
	// DuplicateMode is "shape" or "exact". The tag commands need "exact",
	// which is what an empty value selects here.
	DuplicateMode string `toml:"duplicate_mode"`
}

// BotConfig configures the tag commands.
type BotConfig struct {
	Prefix   string `toml:"prefix"`
	PageSize int    `toml:"page_size"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr        string `toml:"addr"`
	MetricsPath string `toml:"metrics_path"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown rendering.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used for rendered markdown code blocks.
	CodeTheme string `toml:"code_theme"`
}

// DatabasePath returns the configured database path, or tags.db in the
// default config directory.
func (c *Config) DatabasePath() string {
	if p := strings.TrimSpace(c.Database); p != "" {
		return expandHome(p)
	}
	return filepath.Join(filepath.Dir(DefaultPath()), "tags.db")
}

// DuplicateMode returns the router duplicate mode. Unset means exact.
func (c *Config) DuplicateMode() (dispatch.DuplicateMode, error) {
	if strings.TrimSpace(c.Router.DuplicateMode) == "" {
		return dispatch.DuplicateModeExact, nil
	}
	return dispatch.ParseDuplicateMode(c.Router.DuplicateMode)
}

// Prefix returns the bot command prefix.
func (c *Config) Prefix() string {
	if p := strings.TrimSpace(c.Bot.Prefix); p != "" {
		return p
	}
	return DefaultPrefix
}

// PageSize returns the list page size.
func (c *Config) PageSize() int {
	if c.Bot.PageSize > 0 {
		return c.Bot.PageSize
	}
	return DefaultPageSize
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	if a := strings.TrimSpace(c.Server.Addr); a != "" {
		return a
	}
	return DefaultAddr
}

// MetricsPath returns the metrics endpoint path, always with a leading slash.
func (c *Config) MetricsPath() string {
	p := strings.TrimSpace(c.Server.MetricsPath)
	if p == "" {
		return DefaultMetricsPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	if _, err := c.DuplicateMode(); err != nil {
		return fmt.Errorf("router.duplicate_mode: %w", err)
	}
	if c.Bot.PageSize < 0 {
		return fmt.Errorf("bot.page_size must not be negative, got %d", c.Bot.PageSize)
	}
	if strings.ContainsAny(c.Bot.Prefix, " \t\n") {
		return fmt.Errorf("bot.prefix must be a single word, got %q", c.Bot.Prefix)
	}
	return nil
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the default config file path.
// Checks ~/.config/tagbot/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if xdgPath, err := XDGPath(); err == nil {
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "tagbot", "config.toml")
	}

	// Last resort fallback
	return filepath.Join(".", "config.toml")
}

// XDGPath returns the XDG-style config path (~/.config/tagbot/config.toml).
func XDGPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tagbot", "config.toml"), nil
}

const defaultConfig = `# tagbot configuration

# SQLite database holding tags (defaults to tags.db next to this file)
# database = "/path/to/tags.db"

# debug | info | warn | error
# log_level = "info"

# [router]
# "exact" lets routes that differ only in literal words coexist.
# "shape" rejects any two routes with the same length and capture layout.
# duplicate_mode = "exact"

# [bot]
# prefix = "tag"
# page_size = 6

# [server]
# addr = "127.0.0.1:8080"
# metrics_path = "/metrics"

# Optional UI accent color for headers in terminal output.
# Supports ANSI color codes (0-255) or hex (#RRGGBB).
# [ui]
# accent = "39"
# code_theme = "monokai"
`

// CreateDefault creates a default config file at path if it doesn't exist.
// An empty path means DefaultPath.
func CreateDefault(path string) (string, bool, error) {
	if path == "" {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}

	return path, true, nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
