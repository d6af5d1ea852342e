// Package engine runs a complete analysis: parse, decorate, measure.
package engine

import (
	"context"
	"errors"
	"os"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/cache"
	"github.com/rouffj/pdepend/internal/config"
	"github.com/rouffj/pdepend/internal/debug"
	"github.com/rouffj/pdepend/internal/decl"
	"github.com/rouffj/pdepend/internal/decorate"
	pderrors "github.com/rouffj/pdepend/internal/errors"
	"github.com/rouffj/pdepend/internal/metrics"
	"github.com/rouffj/pdepend/internal/registry"
	"github.com/rouffj/pdepend/internal/security"
	"github.com/rouffj/pdepend/internal/symbol"
	"github.com/rouffj/pdepend/pkg/pathutil"
)

// Engine analyzes sets of files with one configuration. Each Run starts
// from an empty registry, so an Engine can be reused.
type Engine struct {
	cfg       *config.Config
	listener  Listener
	store     *cache.Store
	validator *security.FileValidator
}

// Option configures an Engine.
type Option func(*Engine)

// WithListener replaces the default debug-log listener.
func WithListener(l Listener) Option {
	return func(e *Engine) {
		if l != nil {
			e.listener = l
		}
	}
}

// WithCache makes runs load and save units through store.
func WithCache(store *cache.Store) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// New creates an engine. cfg should have been validated.
func New(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{cfg: cfg, listener: newDebugListener(), validator: security.NewFileValidator()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result is the outcome of one run.
type Result struct {
	Units     []*ast.CompilationUnit // in file order, failed files omitted
	Registry  *registry.Registry
	Analyzers []metrics.Analyzer

	// ParseErrors holds one error per file that could not be read,
	// parsed or decorated. Such files contribute nothing.
	ParseErrors []error
	Duplicates  []*pderrors.DuplicateDeclarationError
	Cycles      []*pderrors.CycleError

	Restored int // units served by the cache
}

// NodeMetrics merges the metrics every analyzer reports for id.
func (r *Result) NodeMetrics(id symbol.ID) metrics.Values {
	out := metrics.Values{}
	for _, a := range r.Analyzers {
		if na, ok := a.(metrics.NodeAware); ok {
			out.Merge(na.NodeMetrics(id))
		}
	}
	return out
}

// ProjectMetrics merges the project metrics of every analyzer.
func (r *Result) ProjectMetrics() metrics.Values {
	out := metrics.Values{}
	for _, a := range r.Analyzers {
		if pa, ok := a.(metrics.ProjectAware); ok {
			out.Merge(pa.ProjectMetrics())
		}
	}
	return out
}

// Analyzer returns the analyzer with the given name.
func (r *Result) Analyzer(name string) (metrics.Analyzer, bool) {
	for _, a := range r.Analyzers {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

type parsed struct {
	unit     *ast.CompilationUnit
	restored bool
	err      error
}

// Run analyzes files. Relative paths are read below the project root and
// kept relative in the units, so identifiers do not depend on where the
// project lives. Cancellation is checked between files.
func (e *Engine) Run(ctx context.Context, files []string) (*Result, error) {
	reg := registry.New()
	analyzers, err := NewAnalyzers(e.cfg.Analyzers, reg, e.cfg)
	if err != nil {
		return nil, err
	}
	res := &Result{Registry: reg, Analyzers: analyzers}

	results, err := e.parseAll(ctx, files)
	if err != nil {
		return nil, err
	}

	pass := decorate.NewPass(reg, decorate.WithMaxDepth(e.cfg.Performance.MaxDepth))
	for _, p := range results {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.err != nil {
			res.ParseErrors = append(res.ParseErrors, p.err)
			continue
		}
		if p.restored {
			n := decl.Restore(reg, p.unit)
			debug.LogDecorate("%s: restored %d declarations from cache", p.unit.File, n)
			res.Restored++
		} else {
			if err := pass.Decorate(p.unit); err != nil {
				res.ParseErrors = append(res.ParseErrors, err)
				continue
			}
			e.save(p.unit)
		}
		res.Units = append(res.Units, p.unit)
	}
	res.Duplicates = reg.Duplicates()
	res.Cycles = hierarchyCycles(reg)

	proc := metrics.NewProcessor(metrics.WithMaxDepth(e.cfg.Performance.MaxDepth))
	for _, a := range analyzers {
		proc.Register(a)
	}
	e.listener.StartAnalyze(analyzers)
	for _, unit := range res.Units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := proc.Process(unit); err != nil {
			res.ParseErrors = append(res.ParseErrors, err)
		}
	}
	proc.Finish()
	e.listener.EndAnalyze()

	return res, nil
}

// parseAll reads and parses files on a bounded worker pool. The returned
// slice is in input order whatever order the workers finish in.
func (e *Engine) parseAll(ctx context.Context, files []string) ([]parsed, error) {
	e.listener.StartParse(len(files))

	workers := e.cfg.Performance.Workers
	if workers <= 0 {
		workers = 1
	}
	pool := newParserPool(workers)
	defer pool.close()

	results := make([]parsed, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e.listener.StartFile(file)
			results[i] = e.parseOne(pool, file)
			e.listener.EndFile(file, results[i].err)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ok := 0
	for _, p := range results {
		if p.err == nil {
			ok++
		}
	}
	e.listener.EndParse(ok)
	return results, nil
}

func (e *Engine) parseOne(pool *parserPool, file string) parsed {
	src, err := os.ReadFile(e.resolve(file))
	if err != nil {
		return parsed{err: pderrors.NewFileError("read", file, err)}
	}
	if err := e.validator.Validate(src); err != nil {
		return parsed{err: pderrors.NewFileError("validate", file, err)}
	}

	if e.store != nil {
		unit, hit, err := e.store.Load(file, xxhash.Sum64(src))
		if err != nil {
			debug.Warn("CACHE", "load %s: %v", file, err)
		} else if hit {
			return parsed{unit: unit, restored: true}
		}
	}

	p, err := pool.get()
	if err != nil {
		return parsed{err: err}
	}
	defer pool.put(p)

	unit, err := p.Parse(file, src)
	if err != nil {
		return parsed{err: err}
	}
	return parsed{unit: unit}
}

func (e *Engine) save(unit *ast.CompilationUnit) {
	if e.store == nil {
		return
	}
	if err := e.store.Save(unit); err != nil {
		debug.Warn("CACHE", "save %s: %v", unit.File, err)
	}
}

func (e *Engine) resolve(file string) string {
	return pathutil.ToAbsolute(file, e.cfg.Project.Root)
}

// hierarchyCycles checks every registered type and reports each distinct
// cycle once, whichever member it was reached from.
func hierarchyCycles(reg *registry.Registry) []*pderrors.CycleError {
	seen := make(map[string]bool)
	var out []*pderrors.CycleError
	reg.Each(func(n registry.Node) bool {
		t, ok := n.(decl.Type)
		if !ok {
			return true
		}
		err := decl.CheckHierarchy(t)
		var cerr *pderrors.CycleError
		if !errors.As(err, &cerr) {
			return true
		}
		key := cycleKey(cerr.Chain)
		if !seen[key] {
			seen[key] = true
			out = append(out, cerr)
		}
		return true
	})
	return out
}

// cycleKey identifies a cycle by its members. The chain ends with the
// first repeated name; names before the loop entry are not part of it.
func cycleKey(chain []string) string {
	if len(chain) == 0 {
		return ""
	}
	last := chain[len(chain)-1]
	start := 0
	for i, name := range chain[:len(chain)-1] {
		if name == last {
			start = i
			break
		}
	}
	members := append([]string(nil), chain[start:len(chain)-1]...)
	sort.Strings(members)
	return strings.Join(members, "\x00")
}
