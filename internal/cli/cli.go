// Package cli implements the arceval command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/arceval/pkg/buildinfo"
	"github.com/matzehuels/arceval/pkg/cache"
	"github.com/matzehuels/arceval/pkg/config"
	apperr "github.com/matzehuels/arceval/pkg/errors"
	"github.com/matzehuels/arceval/pkg/graph"
	"github.com/matzehuels/arceval/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "arceval"

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
	cfg        config.Config
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The config file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "arceval evaluates arithmetic expressions described as graphs",
		Long: `arceval reads a list of ordinal-tagged arcs and a table of vertex
operations, validates the resulting graph, and computes its value.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: config.toml or config.yaml in the user config dir)")

	root.AddCommand(c.evalCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.cfg.Cache.Prefix)
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts := cache.Options{
		Backend:    c.cfg.Cache.Backend,
		Dir:        c.cfg.Cache.Dir,
		URL:        c.cfg.Cache.URL,
		Database:   c.cfg.Cache.Database,
		Collection: c.cfg.Cache.Collection,
	}
	if opts.Backend == cache.BackendFile && opts.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		opts.Dir = dir
	}
	return cache.Open(ctx, opts)
}

// pipelineOptions builds run options from the config and a --duplicates
// flag value. An empty flag keeps the configured policy.
func (c *CLI) pipelineOptions(duplicates string, refresh bool) (pipeline.Options, error) {
	if duplicates == "" {
		duplicates = c.cfg.Duplicates
	}
	policy, err := graph.ParseDuplicatePolicy(duplicates)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Duplicates: policy,
		Refresh:    refresh,
		TTL:        c.cfg.Cache.TTL,
		Logger:     c.Logger,
	}, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory, honouring XDG_CACHE_HOME
// (~/.cache/arceval/).
func cacheDir() (string, error) {
	return config.CacheDir()
}

// =============================================================================
// Input Helpers
// =============================================================================

// readInput reads both input files.
func readInput(arcsPath, opsPath string) (pipeline.Input, error) {
	arcs, err := readFile(arcsPath, "arc list")
	if err != nil {
		return pipeline.Input{}, err
	}
	ops, err := readFile(opsPath, "operation table")
	if err != nil {
		return pipeline.Input{}, err
	}
	return pipeline.Input{
		Arcs:           arcs,
		Operations:     ops,
		ArcsName:       arcsPath,
		OperationsName: opsPath,
	}, nil
}

// readFile reads an input file, reporting a missing file as FILE_NOT_FOUND.
func readFile(path, what string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "%s %s not found", what, path)
		}
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "read %s", path)
	}
	return data, nil
}
