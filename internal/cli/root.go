package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/scubot/tagbot/internal/config"
	"github.com/scubot/tagbot/internal/logging"
	"github.com/scubot/tagbot/internal/ui"
)

// rootOptions holds global flags and what PersistentPreRunE resolves from them.
type rootOptions struct {
	// Global flags
	configPath string
	dbPath     string
	logLevel   levelFlag
	dupMode    modeFlag
	jsonOutput bool

	// Resolved values
	cfg                *config.Config
	resolvedConfigPath string
	logger             *log.Logger
}

// NewRootCmd builds the tagbot command tree.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "tagbot",
		Short: "tagbot - a command router and tag bot",
		Long: `tagbot routes whitespace-separated commands to handlers by template,
most specific route first, and ships a tag bot on top of it.

Commands can be sent one at a time, from an interactive prompt, or over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			o.resolvedConfigPath = o.configPath
			if o.resolvedConfigPath == "" {
				o.resolvedConfigPath = config.DefaultPath()
			}

			// Config commands must work on a missing or broken config.
			if cmd.Name() == "version" || (cmd.Parent() != nil && cmd.Parent().Name() == "config") {
				return nil
			}

			cfg, err := loadConfig(o.resolvedConfigPath)
			if err != nil {
				return err
			}

			fs := cmd.Flags()
			if fs.Changed("db") {
				cfg.Database = o.dbPath
			}
			if fs.Changed("log-level") {
				cfg.LogLevel = o.logLevel.String()
			}
			if fs.Changed("duplicate-mode") {
				cfg.Router.DuplicateMode = o.dupMode.String()
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			o.logger, err = logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			if cfg.UI.Accent != "" {
				ui.ConfigureTheme(cfg.UI.Accent)
			}
			if cfg.UI.CodeTheme != "" {
				ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)
			}
			o.cfg = cfg
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "Path to config file")
	pf.StringVar(&o.dbPath, "db", "", "Path to the tag database (overrides database in config)")
	pf.Var(&o.logLevel, "log-level", "Log level: debug, info, warn, error")
	pf.Var(&o.dupMode, "duplicate-mode", "Route duplicate check: shape or exact")
	pf.BoolVar(&o.jsonOutput, "json", false, "Output in JSON format (for script use)")

	rootCmd.AddCommand(
		newRunCmd(o),
		newReplCmd(o),
		newRoutesCmd(o),
		newServeCmd(o),
		newImportCmd(o),
		newExportCmd(o),
		newConfigCmd(o),
		newVersionCmd(o),
	)
	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads path, treating a missing file as an empty config.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &config.Config{}, nil
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// display returns the display context for w. Only a real terminal gets
// styled output.
func display(w io.Writer) *ui.DisplayContext {
	if f, ok := w.(*os.File); ok {
		return ui.NewDisplayContext(f)
	}
	return &ui.DisplayContext{TermWidth: ui.DefaultTermWidth}
}
