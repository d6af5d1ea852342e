package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rouffj/pdepend/internal/config"
	"github.com/rouffj/pdepend/internal/debug"
	"github.com/rouffj/pdepend/internal/discover"
	"github.com/rouffj/pdepend/internal/engine"
	"github.com/rouffj/pdepend/internal/report"
)

// AnalyzeParams are the arguments of the analyze tool.
type AnalyzeParams struct {
	Analyzers []string `json:"analyzers,omitempty"`
	Include   []string `json:"include,omitempty"`
	Format    string   `json:"format,omitempty"`
}

// MetricsParams are the arguments of the metrics tool.
type MetricsParams struct {
	Name    string `json:"name"`
	Refresh bool   `json:"refresh,omitempty"`
}

// MetricsResponse is the answer of the metrics tool.
type MetricsResponse struct {
	Name     string             `json:"name"`
	Kind     string             `json:"kind"`
	File     string             `json:"file,omitempty"`
	Line     int                `json:"line,omitempty"`
	Metrics  map[string]float64 `json:"metrics"`
	Analyzed time.Time          `json:"analyzed"`
}

var toolHelp = map[string]string{
	"analyze": "analyze runs the configured analyzers over the project and returns the report. " +
		"Optional: analyzers (subset to run), include (glob patterns), format (json, text, xml, compact).",
	"metrics": `metrics returns the metrics of one declaration by qualified name, with methods as Class::method, e.g. "App\Foo", "App\Foo::run", "App\helper" or "App". ` +
		"The last analysis is reused unless refresh is true.",
}

const overview = "pdepend measures PHP code. Tools: analyze (full report), metrics (one declaration), info <tool>.\n" +
	"Metrics: nodecount (nop, noc, noi, nom, nof), inheritance (dit, nocc, noam, noom, andc, ahh, maxDIT, leafs, roots), " +
	"coupling (ca, ce, cbo, calls, fanout), cyclomatic (ccn, ccn2), coderank (cr, rcr, cycles)."

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Tool string `json:"tool"`
	}
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
			return createErrorResponse("info", fmt.Errorf("invalid parameters: %w", err))
		}
	}
	if params.Tool == "" {
		return createTextResponse(overview), nil
	}
	help, ok := toolHelp[params.Tool]
	if !ok {
		return createErrorResponse("info", fmt.Errorf("unknown tool %q", params.Tool))
	}
	return createTextResponse(help), nil
}

func (s *Server) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params AnalyzeParams
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
			return createErrorResponse("analyze", fmt.Errorf("invalid parameters: %w", err))
		}
	}
	if params.Format == "" {
		params.Format = report.FormatJSON
	}

	summary, err := s.analyze(ctx, params.Analyzers, params.Include)
	if err != nil {
		return createErrorResponse("analyze", err)
	}

	var buf bytes.Buffer
	f := report.NewFormatter(report.Options{Format: params.Format, ShowLines: true, ShowMetrics: true})
	if err := f.Write(&buf, summary); err != nil {
		return createErrorResponse("analyze", err)
	}
	return createTextResponse(buf.String()), nil
}

func (s *Server) handleMetrics(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params MetricsParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("metrics", fmt.Errorf("invalid parameters: %w", err))
	}
	name := strings.TrimPrefix(strings.TrimSpace(params.Name), `\`)
	if name == "" {
		return createErrorResponse("metrics", errors.New("name is required"))
	}

	s.mu.Lock()
	summary, analyzed := s.summary, s.analyzed
	s.mu.Unlock()
	if summary == nil || params.Refresh {
		var err error
		if summary, err = s.analyze(ctx, nil, nil); err != nil {
			return createErrorResponse("metrics", err)
		}
		s.mu.Lock()
		analyzed = s.analyzed
		s.mu.Unlock()
	}

	found, ok := lookup(summary, name)
	if !ok {
		err := fmt.Errorf("no declaration named %q", name)
		if sugg := suggestName(summary, name); sugg != "" {
			err = fmt.Errorf("%w (did you mean %q?)", err, sugg)
		}
		return createErrorResponse("metrics", err)
	}
	found.Analyzed = analyzed
	return createJSONResponse(found)
}

// analyze runs one analysis with optional analyzer and include overrides.
// Only a run without overrides is kept for later lookups.
func (s *Server) analyze(ctx context.Context, analyzers, include []string) (*report.Summary, error) {
	cfg := *s.cfg
	if len(analyzers) > 0 {
		cfg.Analyzers = analyzers
	}
	if len(include) > 0 {
		cfg.Include = include
	}
	if err := config.ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	start := time.Now()
	files, err := discover.Discover(ctx, cfg.Project.Root, discover.OptionsFromConfig(&cfg))
	if err != nil {
		return nil, err
	}
	res, err := engine.New(&cfg, s.opts...).Run(ctx, files)
	if err != nil {
		return nil, err
	}
	summary := report.Build(res)
	debug.Log("MCP", "analyzed %d files in %v\n", len(res.Units), time.Since(start))
	if len(analyzers) > 0 || len(include) > 0 {
		return summary, nil
	}

	s.mu.Lock()
	s.summary = summary
	s.analyzed = time.Now()
	s.mu.Unlock()
	return summary, nil
}

// lookup finds a namespace, type, function or Type::method by name.
// PHP names are case-insensitive.
func lookup(s *report.Summary, name string) (*MetricsResponse, bool) {
	typeName, method, isMethod := strings.Cut(name, "::")
	for _, ns := range s.Namespaces {
		if !isMethod && strings.EqualFold(ns.Name, name) {
			return &MetricsResponse{Name: ns.Name, Kind: "namespace", Metrics: ns.Metrics}, true
		}
		for _, t := range ns.Types {
			if !strings.EqualFold(t.Name, typeName) {
				continue
			}
			if !isMethod {
				return fromNode(&t.NodeSum, t.Kind), true
			}
			for _, m := range t.Methods {
				if strings.EqualFold(m.Name, method) {
					resp := fromNode(m, "method")
					resp.Name = t.Name + "::" + m.Name
					return resp, true
				}
			}
		}
		if isMethod {
			continue
		}
		for _, fn := range ns.Functions {
			if strings.EqualFold(fn.Name, name) {
				return fromNode(fn, "function"), true
			}
		}
	}
	return nil, false
}

func fromNode(n *report.NodeSum, kind string) *MetricsResponse {
	return &MetricsResponse{Name: n.Name, Kind: kind, File: n.File, Line: n.Line, Metrics: n.Metrics}
}

func suggestName(s *report.Summary, name string) string {
	byLower := make(map[string]string)
	var candidates []string
	add := func(n string) {
		l := strings.ToLower(n)
		if _, ok := byLower[l]; !ok {
			byLower[l] = n
			candidates = append(candidates, l)
		}
	}
	for _, ns := range s.Namespaces {
		add(ns.Name)
		for _, t := range ns.Types {
			add(t.Name)
			for _, m := range t.Methods {
				add(t.Name + "::" + m.Name)
			}
		}
		for _, fn := range ns.Functions {
			add(fn.Name)
		}
	}
	return byLower[config.Suggest(name, candidates)]
}
