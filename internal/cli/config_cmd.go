package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/scubot/tagbot/internal/config"
	"github.com/scubot/tagbot/internal/ui"
)

func newConfigCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the tagbot config file",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Create a commented default config file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out := cmd.OutOrStdout()
				path, created, err := config.CreateDefault(o.resolvedConfigPath)
				if err != nil {
					return o.handleError(out, ErrFileWriteError, err, "")
				}
				if o.jsonOutput {
					outputSuccess(out, map[string]any{"config_path": path, "created": created}, nil)
					return nil
				}
				if created {
					fmt.Fprintln(out, ui.Successf("Created %s", path))
				} else {
					fmt.Fprintln(out, ui.Info(fmt.Sprintf("Config already exists at %s", path)))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out := cmd.OutOrStdout()
				_, statErr := os.Stat(o.resolvedConfigPath)
				if o.jsonOutput {
					outputSuccess(out, map[string]any{"config_path": o.resolvedConfigPath, "exists": statErr == nil}, nil)
					return nil
				}
				fmt.Fprintln(out, o.resolvedConfigPath)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out := cmd.OutOrStdout()
				cfg, err := loadConfig(o.resolvedConfigPath)
				if err != nil {
					return o.handleError(out, ErrConfigInvalid, err, "Run 'tagbot config path' to locate the file")
				}
				eff, err := effectiveConfig(cfg)
				if err != nil {
					return o.handleError(out, ErrConfigInvalid, err, "")
				}

				if o.jsonOutput {
					outputSuccess(out, eff, nil)
					return nil
				}
				return toml.NewEncoder(out).Encode(eff)
			},
		},
	)
	return cmd
}

// effectiveConfig fills in every default so the output shows what runs.
func effectiveConfig(cfg *config.Config) (*config.Config, error) {
	mode, err := cfg.DuplicateMode()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if level == "" {
		level = "info"
	}
	return &config.Config{
		Database: cfg.DatabasePath(),
		LogLevel: level,
		Router:   config.RouterConfig{DuplicateMode: mode.String()},
		Bot:      config.BotConfig{Prefix: cfg.Prefix(), PageSize: cfg.PageSize()},
		Server:   config.ServerConfig{Addr: cfg.Addr(), MetricsPath: cfg.MetricsPath()},
		UI:       cfg.UI,
	}, nil
}
