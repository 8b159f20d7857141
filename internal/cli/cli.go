// Package cli implements the spacelens command-line interface.
package cli

import (
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/spacelens/spacelens/pkg/buildinfo"
	"github.com/spacelens/spacelens/pkg/cache"
	"github.com/spacelens/spacelens/pkg/config"
	"github.com/spacelens/spacelens/pkg/pipeline"
	"github.com/spacelens/spacelens/pkg/snapshot"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "spacelens"

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

	// ConfigPath overrides the default config file location (--config).
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Spacelens visualizes disk usage as cushion treemaps",
		Long:         `Spacelens scans a directory tree and renders its disk usage as a squarified cushion treemap, where every file is an area-proportional shaded rectangle.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: "+filepath.Join("~", ".config", appName, appName+".toml")+")")

	// Register all subcommands
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config and Runner Factories
// =============================================================================

// loadConfig loads the TOML config, using --config when set and the default
// per-user path otherwise.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.ConfigPath
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return config.Default(), nil
		}
		path = filepath.Join(dir, appName+".toml")
	}
	return config.Load(path)
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	store, err := newCache(cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func newCache(cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// newSnapshotStore opens the CLI snapshot store (always file-based; the
// mongo backend is a server concern).
func newSnapshotStore(cfg config.Config) (*snapshot.FileStore, error) {
	dir := cfg.Snapshots.Dir
	if dir == "" {
		var err error
		if dir, err = dataDir(); err != nil {
			return nil, err
		}
		dir = filepath.Join(dir, "snapshots")
	}
	return snapshot.NewFileStore(dir)
}

// pipelineOptions translates config sections into pipeline options.
func pipelineOptions(cfg config.Config) pipeline.Options {
	return pipeline.Options{
		Layout:  cfg.TreemapConfig(),
		Cushion: cfg.CushionConfig(),
		Colors:  cfg.ColorSettings(),
	}
}
