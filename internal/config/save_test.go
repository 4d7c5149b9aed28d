package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := &Config{
		Database: "/tmp/tags.db",
		Router:   RouterConfig{DuplicateMode: "exact"},
		Bot:      BotConfig{Prefix: "tag", PageSize: 4},
		Server:   ServerConfig{Addr: ":8081"},
	}
	require.NoError(t, SaveTo(path, cfg))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Database, loaded.Database)
	assert.Equal(t, cfg.Router, loaded.Router)
	assert.Equal(t, cfg.Bot, loaded.Bot)
	assert.Equal(t, ":8081", loaded.Server.Addr)
	assert.Empty(t, loaded.Server.MetricsPath)
}

func TestSaveToOmitsUnsetSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, SaveTo(path, &Config{LogLevel: "warn"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `log_level = "warn"`)
	assert.NotContains(t, string(data), "[bot]")
	assert.NotContains(t, string(data), "[ui]")
}

func TestSaveToRequiresPath(t *testing.T) {
	assert.Error(t, SaveTo("  ", &Config{}))
}
