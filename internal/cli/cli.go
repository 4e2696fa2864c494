package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cptree/pkg/buildinfo"
	"github.com/matzehuels/cptree/pkg/cache"
	"github.com/matzehuels/cptree/pkg/config"
	"github.com/matzehuels/cptree/pkg/observability"
	"github.com/matzehuels/cptree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "cptree"

	// redisPrefix scopes keys on a shared Redis server.
	redisPrefix = appName + ":"
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

	// Global flags.
	configPath  string
	noCache     bool
	metricsFile string

	cfg     config.Config
	metrics *observability.PrometheusHooks
}

// New creates a new CLI instance with a default logger.
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
		Short: "cptree inspects and compares constraint solver search trees",
		Long: `cptree loads search trees recorded by constraint solvers, lays them out,
compares two runs of a search and finds repeated subtrees.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.writeMetrics()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/cptree/cptree.toml)")
	pf.BoolVar(&c.noCache, "no-cache", false, "disable result caching")
	pf.StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics in textfile format to this path")

	root.AddCommand(c.statsCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.diffCommand())
	root.AddCommand(c.shapesCommand())
	root.AddCommand(c.subtreesCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file and installs metrics hooks. It runs before
// every command.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, used, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if used != "" {
		c.Logger.Debug("loaded config", "path", used)
	}

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))

	if c.metricsFile != "" {
		c.metrics = observability.NewPrometheusHooks(prometheus.NewRegistry())
		observability.SetPipelineHooks(c.metrics)
		observability.SetBuilderHooks(c.metrics)
		observability.SetCacheHooks(c.metrics)
	}
	return nil
}

func (c *CLI) writeMetrics() error {
	if c.metrics == nil {
		return nil
	}
	if err := c.metrics.WriteTextfile(c.metricsFile); err != nil {
		return err
	}
	c.Logger.Debug("wrote metrics", "path", c.metricsFile)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cc, keyer, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, keyer, c.Logger)
	r.TTL = c.cfg.Cache.TTL.Duration
	r.Builder = c.cfg.BuilderOptions()
	return r, nil
}

// newCache picks the cache backend: none with --no-cache, Redis when a URL
// is configured, the cache directory otherwise.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, cache.Keyer, error) {
	if c.noCache {
		return cache.NewNullCache(), nil, nil
	}
	if url := c.cfg.Cache.RedisURL; url != "" {
		rc, err := cache.NewRedisCache(ctx, url)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, falling back to files", "error", err)
		} else {
			return cache.Instrument(rc), cache.NewScopedKeyer(nil, redisPrefix), nil
		}
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return cache.Instrument(fc), nil, nil
}

// pipelineOptions converts the loaded config into pipeline options.
func (c *CLI) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Layout:       c.cfg.LayoutOptions(),
		Diff:         c.cfg.DiffOptions(),
		Filter:       c.cfg.Filter(),
		Labels:       c.cfg.LabelMode(),
		KeepSubsumed: c.cfg.Analysis.KeepSubsumed,
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/cptree/).
func (c *CLI) cacheDir() (string, error) {
	if dir := c.cfg.Cache.Dir; dir != "" {
		return expandHome(dir)
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
