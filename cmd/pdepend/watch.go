package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/rouffj/pdepend/internal/debug"
	"github.com/rouffj/pdepend/internal/watch"
)

func watchCommand(c *cli.Context) error {
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

	if _, err := a.run(ctx); err != nil {
		return err
	}

	w, err := watch.New(cfg, func(ctx context.Context, batch []watch.Change) {
		for _, ch := range batch {
			debug.Log("CLI", "%s %s\n", ch.Type, ch.Path)
		}
		fmt.Fprintf(c.App.ErrWriter, "%d file(s) changed, analyzing again\n", len(batch))
		if _, err := a.run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(c.App.ErrWriter, "analysis failed: %v\n", err)
		}
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	fmt.Fprintf(c.App.ErrWriter, "Watching %s (Ctrl+C to stop)\n", cfg.Project.Root)

	<-ctx.Done()
	debug.Log("CLI", "shutting down watcher\n")
	return w.Stop()
}
