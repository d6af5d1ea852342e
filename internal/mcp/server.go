// Package mcp serves pdepend analyses to MCP clients over stdio.
package mcp

import (
	"context"
	"sync"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rouffj/pdepend/internal/config"
	"github.com/rouffj/pdepend/internal/debug"
	"github.com/rouffj/pdepend/internal/engine"
	"github.com/rouffj/pdepend/internal/report"
	"github.com/rouffj/pdepend/internal/version"
)

// Server answers tool calls against the most recent analysis of one
// project. The first analysis runs lazily on the first call that needs it.
type Server struct {
	cfg    *config.Config
	opts   []engine.Option
	server *mcp.Server

	mu       sync.Mutex
	summary  *report.Summary
	analyzed time.Time
}

// NewServer creates a server for the project described by cfg. Engine
// options, such as a unit cache, apply to every analysis it runs.
func NewServer(cfg *config.Config, opts ...engine.Option) (*Server, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	s := &Server{
		cfg:  cfg,
		opts: opts,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "pdepend",
			Version: version.Info(),
		}, nil),
	}
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "info",
		Description: "Describe the pdepend tools and the metrics each analyzer reports.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tool": {
					Type:        "string",
					Description: "Tool name to describe (analyze, metrics); empty for an overview",
				},
			},
		},
	}, s.handleInfo)

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze",
		Description: "Analyze the project and return the metrics report. Runs without overrides are kept for the metrics tool.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"analyzers": {
					Type:        "array",
					Description: "Analyzers to run: nodecount, inheritance, coupling, cyclomatic, coderank",
					Items:       &jsonschema.Schema{Type: "string"},
				},
				"include": {
					Type:        "array",
					Description: "Glob patterns limiting the analyzed files (e.g. src/**)",
					Items:       &jsonschema.Schema{Type: "string"},
				},
				"format": {
					Type:        "string",
					Description: "Report format: json (default), text, xml or compact",
				},
			},
		},
	}, s.handleAnalyze)

	s.server.AddTool(&mcp.Tool{
		Name:        "metrics",
		Description: `Metrics of one namespace, class, interface, function or method (e.g. "App\Foo" or "App\Foo::run").`,
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"name": {
					Type:        "string",
					Description: "Qualified name; methods as Class::method",
				},
				"refresh": {
					Type:        "boolean",
					Description: "Analyze again before looking up",
				},
			},
			Required: []string{"name"},
		},
	}, s.handleMetrics)
}

// Start serves requests on stdin/stdout until ctx is cancelled or the
// client disconnects.
func (s *Server) Start(ctx context.Context) error {
	debug.Log("MCP", "serving %s over stdio\n", s.cfg.Project.Root)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
