package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/scubot/tagbot/internal/atomicfile"
)

type persistedConfig struct {
	Database *string              `toml:"database,omitempty"`
	LogLevel *string              `toml:"log_level,omitempty"`
	Router   *persistedRouter     `toml:"router,omitempty"`
	Bot      *persistedBot        `toml:"bot,omitempty"`
	Server   *persistedServer     `toml:"server,omitempty"`
	UI       *persistedUISettings `toml:"ui,omitempty"`
}

type persistedRouter struct {
	DuplicateMode *string `toml:"duplicate_mode,omitempty"`
}

type persistedBot struct {
	Prefix   *string `toml:"prefix,omitempty"`
	PageSize *int    `toml:"page_size,omitempty"`
}

type persistedServer struct {
	Addr        *string `toml:"addr,omitempty"`
	MetricsPath *string `toml:"metrics_path,omitempty"`
}

type persistedUISettings struct {
	Accent    *string `toml:"accent,omitempty"`
	CodeTheme *string `toml:"code_theme,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Save writes the global config to the default config path.
func Save(cfg *Config) error {
	return SaveTo(DefaultPath(), cfg)
}

// SaveTo writes the global config to a specific path atomically. Unset
// values are omitted so defaults keep applying.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		Database: nonEmptyPtr(cfg.Database),
		LogLevel: nonEmptyPtr(cfg.LogLevel),
	}
	if mode := nonEmptyPtr(cfg.Router.DuplicateMode); mode != nil {
		out.Router = &persistedRouter{DuplicateMode: mode}
	}

	prefix := nonEmptyPtr(cfg.Bot.Prefix)
	var pageSize *int
	if cfg.Bot.PageSize > 0 {
		n := cfg.Bot.PageSize
		pageSize = &n
	}
	if prefix != nil || pageSize != nil {
		out.Bot = &persistedBot{Prefix: prefix, PageSize: pageSize}
	}

	addr := nonEmptyPtr(cfg.Server.Addr)
	metricsPath := nonEmptyPtr(cfg.Server.MetricsPath)
	if addr != nil || metricsPath != nil {
		out.Server = &persistedServer{Addr: addr, MetricsPath: metricsPath}
	}

	accent := nonEmptyPtr(cfg.UI.Accent)
	codeTheme := nonEmptyPtr(cfg.UI.CodeTheme)
	if accent != nil || codeTheme != nil {
		out.UI = &persistedUISettings{
			Accent:    accent,
			CodeTheme: codeTheme,
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}
