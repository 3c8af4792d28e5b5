// Package cli implements the redline command-line interface.
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

	"github.com/matzehuels/redline/pkg/batch"
	"github.com/matzehuels/redline/pkg/buildinfo"
	"github.com/matzehuels/redline/pkg/cache"
	"github.com/matzehuels/redline/pkg/config"
	"github.com/matzehuels/redline/pkg/core/geom"
	"github.com/matzehuels/redline/pkg/pipeline"
	"github.com/matzehuels/redline/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "redline"
)

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

	// ConfigPath is the --config flag; empty loads the default file.
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
		Use:   appName,
		Short: "Redline measures and annotates design scenes",
		Long: `Redline computes the spatial relations between shapes in a design scene
(bounding boxes, gaps, overlap regions) and places measurement and name
annotations around them without leaving the frame.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/redline/config.toml)")

	root.AddCommand(c.annotateCommand())
	root.AddCommand(c.boundsCommand())
	root.AddCommand(c.gapCommand())
	root.AddCommand(c.overlapCommand())
	root.AddCommand(c.placeCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// loadConfig reads the config file selected by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newRunner creates a pipeline runner using the configured cache backend.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	ch, err := newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(ch, nil, c.Logger)
	r.TTL = cfg.Cache.TTL.Duration
	return r, nil
}

func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Backend == config.CacheRedis {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return rc, nil
	}

	dir := cfg.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// openStore opens the configured batch store. The "none" backend yields a
// nil store.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	case config.StoreFile:
		return store.NewFileStore(cfg.Dir)
	case config.StoreMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
	}
	return nil, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/redline/).
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
// Options Helpers
// =============================================================================

// optionsFromConfig seeds pipeline options with the config file's defaults.
func optionsFromConfig(cfg config.Config) pipeline.Options {
	return pipeline.Options{
		Orientation:          geom.Side(cfg.Placement.Orientation),
		TextClearance:        cfg.Placement.TextClearance,
		MeasurementClearance: cfg.Placement.MeasurementClearance,
		Margin:               cfg.Placement.Margin,
		Concurrency:          cfg.Placement.Concurrency,
		Label:                cfg.Label,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// parseRequests parses --request flags of the form "kind:a,b@side".
func parseRequests(sigs []string) ([]batch.Request, error) {
	out := make([]batch.Request, 0, len(sigs))
	for _, s := range sigs {
		r, err := batch.ParseRequest(s)
		if err != nil {
			return nil, fmt.Errorf("request %q: %w", s, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// basePath derives the base output path from the output and input paths.
// Known format extensions on output are stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
