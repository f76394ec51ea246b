// Package cli implements the reticula command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phylonetworks/reticula/pkg/buildinfo"
	"github.com/phylonetworks/reticula/pkg/cache"
	"github.com/phylonetworks/reticula/pkg/pipeline"
	"github.com/phylonetworks/reticula/pkg/runstore"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "reticula"

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
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "reticula",
		Short:        "Reticula rearranges semidirected phylogenetic networks",
		Long:         `Reticula is a CLI tool for exploring semidirected phylogenetic networks through nearest-neighbor interchange rearrangements, with topology constraints, scored searches and figure rendering.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.nniCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.constraintsCommand())
	root.AddCommand(c.drawCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg *Config, noCache bool) (*pipeline.Runner, error) {
	cch, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cch, nil, store, c.Logger), nil
}

func newCache(ctx context.Context, cfg *Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg != nil && cfg.Cache.Redis != "" {
		return cache.NewRedisCache(ctx, cfg.Cache.Redis, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func newStore(ctx context.Context, cfg *Config) (runstore.Store, error) {
	if cfg != nil && cfg.Store.Mongo != "" {
		return runstore.NewMongoStore(ctx, cfg.Store.Mongo, cfg.Store.MongoDatabase)
	}
	return runstore.NewFileStore("")
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/reticula/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Input Helpers
// =============================================================================

// readNetworkArg reads a network either directly from the argument or, when
// the argument names an existing file, from that file. Files may hold several
// trees; the first is used.
func readNetworkArg(arg string) (string, error) {
	if _, err := os.Stat(arg); err == nil {
		data, err := os.ReadFile(arg)
		if err != nil {
			return "", fmt.Errorf("read network file: %w", err)
		}
		s := strings.TrimSpace(string(data))
		if i := strings.Index(s, ";"); i >= 0 {
			s = s[:i+1]
		}
		return s, nil
	}
	return strings.TrimSpace(arg), nil
}

// parseConstraintFlags turns repeated --constraint flags of the form
// "clade:A,B,C" or "species:S1,S2" into constraint specs.
func parseConstraintFlags(flags []string) ([]pipeline.ConstraintSpec, error) {
	specs := make([]pipeline.ConstraintSpec, 0, len(flags))
	for _, f := range flags {
		typ, taxa, ok := strings.Cut(f, ":")
		if !ok {
			return nil, fmt.Errorf("invalid constraint %q (want type:taxon,taxon,...)", f)
		}
		if err := pipeline.ValidateConstraintType(typ); err != nil {
			return nil, err
		}
		names := strings.Split(taxa, ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
		specs = append(specs, pipeline.ConstraintSpec{Type: typ, Taxa: names})
	}
	return specs, nil
}
