package main

import (
	"github.com/urfave/cli/v2"

	"github.com/rouffj/pdepend/internal/mcp"
)

func mcpCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	_, opts, err := openCache(cfg)
	if err != nil {
		return err
	}
	server, err := mcp.NewServer(cfg, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(c.Context)
	defer cancel()
	return server.Start(ctx)
}
