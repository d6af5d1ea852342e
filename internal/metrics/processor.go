package metrics

import (
	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/debug"
	pderrors "github.com/rouffj/pdepend/internal/errors"
)

type subscriber struct {
	slot   int
	handle Handler
}

// Processor feeds compilation units to a set of analyzers. A Processor is
// not safe for concurrent use.
type Processor struct {
	analyzers []Analyzer
	names     map[string]bool
	table     map[Event][]subscriber
	dirty     bool
	acc       []any
	maxDepth  int
}

// Option configures a Processor.
type Option func(*Processor)

// WithMaxDepth bounds the tree depth a traversal accepts.
func WithMaxDepth(depth int) Option {
	return func(p *Processor) {
		p.maxDepth = depth
	}
}

// NewProcessor creates a processor without analyzers.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{names: make(map[string]bool)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register adds an analyzer. An analyzer whose name is already registered
// is ignored and false is returned.
func (p *Processor) Register(a Analyzer) bool {
	if p.names[a.Name()] {
		debug.LogMetrics("analyzer %s already registered", a.Name())
		return false
	}
	p.names[a.Name()] = true
	p.analyzers = append(p.analyzers, a)
	p.dirty = true
	return true
}

// Analyzers returns the registered analyzers in registration order.
func (p *Processor) Analyzers() []Analyzer {
	return append([]Analyzer(nil), p.analyzers...)
}

// build computes the dispatch table. It runs once per set of analyzers,
// not per node.
func (p *Processor) build() {
	p.table = make(map[Event][]subscriber)
	for slot, a := range p.analyzers {
		for _, sub := range a.Subscriptions() {
			if sub.Handler == nil {
				continue
			}
			p.table[sub.Event] = append(p.table[sub.Event], subscriber{slot: slot, handle: sub.Handler})
		}
	}
	p.acc = make([]any, len(p.analyzers))
	p.dirty = false
}

// Process runs one traversal of unit through every analyzer. The tree is
// not modified.
func (p *Processor) Process(unit *ast.CompilationUnit) error {
	if unit == nil || unit.Root == nil {
		return nil
	}
	if p.dirty || p.table == nil {
		p.build()
	}

	t := ast.NewTraverser(ast.WithMaxDepth(p.maxDepth))
	t.AddVisitor(p)
	if _, err := t.Traverse(unit.Root); err != nil {
		return pderrors.NewAnalysisError("metrics", err).WithFile(unit.File)
	}
	return nil
}

// Finish lets every Finisher complete its results.
func (p *Processor) Finish() {
	for _, a := range p.analyzers {
		if f, ok := a.(Finisher); ok {
			f.Finish()
		}
	}
}

// Reset clears the results of every Resetter.
func (p *Processor) Reset() {
	for _, a := range p.analyzers {
		if r, ok := a.(Resetter); ok {
			r.Reset()
		}
	}
}

// BeforeTraverse clears all accumulators.
func (p *Processor) BeforeTraverse(*ast.Node) {
	clear(p.acc)
}

// AfterTraverse clears all accumulators.
func (p *Processor) AfterTraverse(*ast.Node) {
	clear(p.acc)
}

// Enter implements ast.Visitor.
func (p *Processor) Enter(n *ast.Node) {
	p.dispatch(n, Before)
}

// Leave implements ast.Visitor.
func (p *Processor) Leave(n *ast.Node) *ast.Node {
	p.dispatch(n, After)
	return nil
}

func (p *Processor) dispatch(n *ast.Node, phase Phase) {
	for _, s := range p.table[Event{Kind: n.Kind, Phase: phase}] {
		p.acc[s.slot] = s.handle(n, p.acc[s.slot])
	}
}
