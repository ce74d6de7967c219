// Package cli implements the topoview command-line interface.
//
// The CLI renders topology datasets headlessly, watches dataset files,
// serves a live view over HTTP and WebSocket, and offers an interactive
// selection explorer. It is built using cobra and logs via the
// charmbracelet/log library.
//
// # Commands
//
//   - render: settle the layout and write SVG, PNG, PDF, DOT or JSON
//   - watch: re-render whenever the dataset file changes
//   - serve: serve a live rendering with a WebSocket frame stream
//   - inspect: explore node selection and derived emphasis in the terminal
//   - completion: generate shell completion scripts
//
// # Configuration
//
// Settings are read from $XDG_CONFIG_HOME/topoview/topoview.toml or the file
// given with --config. Flags override the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topoview/internal/metrics"
	"github.com/matzehuels/topoview/pkg/buildinfo"
	"github.com/matzehuels/topoview/pkg/config"
)

// appName is the application name used for directories and display.
const appName = "topoview"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     *config.Config
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the loaded configuration.
func (c *CLI) Config() *config.Config { return c.config }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Topoview lays out and renders topology graphs",
		Long:         `Topoview renders service topologies as force-directed node-link diagrams, with selection-driven emphasis, clustering by group, and a live view over WebSocket.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			if err := c.loadConfig(); err != nil {
				return err
			}
			metrics.Register()
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.Path()+")")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	if c.configPath != "" {
		c.Logger.Debug("loaded config", "path", c.configPath)
	}
	return nil
}
