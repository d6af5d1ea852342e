package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rouffj/pdepend/internal/cache"
	"github.com/rouffj/pdepend/internal/config"
	"github.com/rouffj/pdepend/internal/debug"
	"github.com/rouffj/pdepend/internal/discover"
	"github.com/rouffj/pdepend/internal/engine"
	"github.com/rouffj/pdepend/internal/report"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root != "" {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", root, err)
		}
		root = absRoot
	}

	cfg, err := config.LoadWithRoot(c.String("config"), root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if analyzers := c.StringSlice("analyzer"); len(analyzers) > 0 {
		cfg.Analyzers = analyzers
	}
	if modes := c.StringSlice("coderank-mode"); len(modes) > 0 {
		cfg.CodeRank.Modes = modes
	}
	if c.IsSet("workers") {
		cfg.Performance.Workers = c.Int("workers")
	}
	if dir := c.String("cache-dir"); dir != "" {
		cfg.Cache.Dir = dir
	}
	if c.Bool("no-cache") {
		cfg.Cache.Dir = ""
	}
	if c.IsSet("debounce") {
		cfg.Watch.DebounceMs = c.Int("debounce")
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// analysis bundles what one analyze or watch invocation reuses between
// runs.
type analysis struct {
	cfg       *config.Config
	engine    *engine.Engine
	store     *cache.Store
	formatter *report.Formatter
	output    string
	stdout    io.Writer
}

func newAnalysis(c *cli.Context, cfg *config.Config) (*analysis, error) {
	a := &analysis{
		cfg:    cfg,
		output: c.String("output"),
		stdout: c.App.Writer,
		formatter: report.NewFormatter(report.Options{
			Format:      c.String("format"),
			ShowLines:   c.Bool("show-lines"),
			ShowMetrics: c.Bool("show-metrics"),
		}),
	}

	store, opts, err := openCache(cfg)
	if err != nil {
		return nil, err
	}
	a.store = store
	a.engine = engine.New(cfg, opts...)
	return a, nil
}

// openCache opens the configured unit cache, if any. A relative cache
// directory lives under the project root.
func openCache(cfg *config.Config) (*cache.Store, []engine.Option, error) {
	dir := cfg.Cache.Dir
	if dir == "" {
		return nil, nil, nil
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cfg.Project.Root, dir)
	}
	store, err := cache.Open(dir)
	if err != nil {
		return nil, nil, err
	}
	return store, []engine.Option{engine.WithCache(store)}, nil
}

// run discovers files, analyzes them and writes the report.
func (a *analysis) run(ctx context.Context) (*engine.Result, error) {
	start := time.Now()

	files, err := discover.Discover(ctx, a.cfg.Project.Root, discover.OptionsFromConfig(a.cfg))
	if err != nil {
		return nil, err
	}
	res, err := a.engine.Run(ctx, files)
	if err != nil {
		return nil, err
	}

	if err := a.write(report.Build(res)); err != nil {
		return nil, err
	}

	debug.Log("CLI", "analyzed %d files in %v (%d restored, %d errors)\n",
		len(res.Units), time.Since(start), res.Restored, len(res.ParseErrors))
	if a.store != nil {
		stats := a.store.Stats()
		debug.Log("CLI", "cache: %d hits, %d misses, %.0f%% hit rate\n",
			stats.Hits, stats.Misses, stats.HitRate*100)
	}
	return res, nil
}

func (a *analysis) write(s *report.Summary) error {
	if a.output == "" {
		return a.formatter.Write(a.stdout, s)
	}

	// write next to the target and rename so readers never see a partial report
	tmp := a.output + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if err := a.formatter.Write(f, s); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, a.output)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func analyzeCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	a, err := newAnalysis(c, cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	_, err = a.run(ctx)
	return err
}

func filesCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	files, err := discover.Discover(c.Context, cfg.Project.Root, discover.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintln(c.App.Writer, f)
	}
	return nil
}
