// Package decorate runs the tree-decoration pass: one traversal per
// compilation unit that assigns identifiers, reads doc-comment types and
// registers every declaration.
package decorate

import (
	"github.com/rouffj/pdepend/internal/annotation"
	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/debug"
	pderrors "github.com/rouffj/pdepend/internal/errors"
	"github.com/rouffj/pdepend/internal/registry"
	"github.com/rouffj/pdepend/internal/symbol"
)

// Pass decorates compilation units into one registry.
type Pass struct {
	reg      *registry.Registry
	maxDepth int
}

// Option configures a Pass.
type Option func(*Pass)

// WithMaxDepth bounds the tree depth the pass accepts; zero is unlimited.
func WithMaxDepth(depth int) Option {
	return func(p *Pass) {
		p.maxDepth = depth
	}
}

// NewPass creates a pass registering into reg.
func NewPass(reg *registry.Registry, opts ...Option) *Pass {
	p := &Pass{reg: reg}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Decorate runs the identifier generator, the annotation extractor and the
// node generator over unit in a single traversal. unit.Root is updated
// in place; declarations outside explicit namespaces end up wrapped in
// synthesized namespace nodes.
func (p *Pass) Decorate(unit *ast.CompilationUnit) error {
	if unit == nil || unit.Root == nil {
		return nil
	}

	gen := NewNodeGenerator(p.reg)
	t := ast.NewTraverser(ast.WithMaxDepth(p.maxDepth))
	t.AddVisitor(symbol.NewIDGenerator(unit.File))
	t.AddVisitor(annotation.NewExtractor())
	t.AddVisitor(gen)

	root, err := t.Traverse(unit.Root)
	if err != nil {
		return pderrors.NewAnalysisError("decorate", err).WithFile(unit.File)
	}
	unit.Root = root

	debug.LogDecorate("%s: registered %d declarations", unit.File, gen.Registered())
	return nil
}
