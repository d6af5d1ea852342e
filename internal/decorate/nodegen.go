package decorate

import (
	"github.com/rouffj/pdepend/internal/annotation"
	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/debug"
	"github.com/rouffj/pdepend/internal/decl"
	"github.com/rouffj/pdepend/internal/registry"
	"github.com/rouffj/pdepend/internal/symbol"
)

// NodeGenerator is the last decoration stage. It assigns every declaration
// its namespace, builds the wrapper and registers it on leave.
//
// The namespace of a declaration comes from, in order: the active explicit
// namespace, an @package tag on the declaration, the package fallback
// established earlier in the same file, and finally +global. Declarations
// outside an explicit namespace are wrapped in a synthesized namespace
// node on leave.
type NodeGenerator struct {
	reg *registry.Registry

	namespace    string
	hasNamespace bool
	pkg          string

	// enclosing class-like declarations, innermost last
	types []typeScope
	// enclosing declarations of any kind; only top-level ones are wrapped
	depth int

	// members of traits, enums and anonymous classes are not declarations
	// of their own
	opaque int

	registered int
	cycleSeen  bool
}

type typeScope struct {
	name      string
	kind      symbol.Kind
	namespace string
}

// NewNodeGenerator creates a generator that registers into reg.
func NewNodeGenerator(reg *registry.Registry) *NodeGenerator {
	return &NodeGenerator{reg: reg}
}

// Registered returns how many declarations the last traversal registered.
func (g *NodeGenerator) Registered() int {
	return g.registered
}

// BeforeTraverse resets all per-file state.
func (g *NodeGenerator) BeforeTraverse(*ast.Node) {
	*g = NodeGenerator{reg: g.reg}
}

// AfterTraverse implements ast.TraverseHooks.
func (g *NodeGenerator) AfterTraverse(*ast.Node) {}

// Enter implements ast.Visitor.
func (g *NodeGenerator) Enter(n *ast.Node) {
	if g.opaque > 0 {
		if n.Kind.IsOpaque() {
			g.opaque++
		}
		return
	}

	switch n.Kind {
	case ast.KindNamespace:
		g.namespace = n.Name
		g.hasNamespace = true
	case ast.KindClass, ast.KindInterface:
		ns := g.namespaceFor(n)
		n.SetAttr(decl.AttrNamespace, ns)
		ts := typeScope{name: n.NamespacedName, namespace: ns}
		if ts.name == "" {
			ts.name = n.Name
		}
		ts.kind, _ = symbol.KindOf(n.Kind)
		g.types = append(g.types, ts)
		g.depth++
	case ast.KindMethod, ast.KindProperty:
		if n.Kind == ast.KindMethod {
			g.depth++
		}
		if len(g.types) == 0 {
			return
		}
		ts := g.types[len(g.types)-1]
		n.SetAttr(decl.AttrNamespace, ts.namespace)
		n.SetAttr(decl.AttrDeclaring, ts.name)
		n.SetAttr(decl.AttrDeclaringKind, string(ts.kind))
	case ast.KindFunction:
		n.SetAttr(decl.AttrNamespace, g.namespaceFor(n))
		g.depth++
	case ast.KindTrait, ast.KindEnum, ast.KindAnonymousClass:
		g.opaque++
	}
}

// Leave implements ast.Visitor.
func (g *NodeGenerator) Leave(n *ast.Node) *ast.Node {
	if g.opaque > 0 {
		if n.Kind.IsOpaque() {
			g.opaque--
		}
		return nil
	}

	switch n.Kind {
	case ast.KindNamespace:
		decl.NewNamespace(n, g.reg).Register()
		g.registered++
		g.namespace = ""
		g.hasNamespace = false
	case ast.KindClass:
		g.register(decl.NewClass(n, g.reg))
		g.checkHierarchy(n)
		g.leaveType()
		return g.wrap(n)
	case ast.KindInterface:
		g.register(decl.NewInterface(n, g.reg))
		g.checkHierarchy(n)
		g.leaveType()
		return g.wrap(n)
	case ast.KindMethod:
		g.depth--
		if n.Attr(decl.AttrDeclaring) != "" {
			g.register(decl.NewMethod(n, g.reg))
		}
	case ast.KindProperty:
		if n.Attr(decl.AttrDeclaring) != "" {
			g.register(decl.NewProperty(n, g.reg))
		}
	case ast.KindFunction:
		g.depth--
		g.register(decl.NewFunction(n, g.reg))
		return g.wrap(n)
	}
	return nil
}

// namespaceFor applies the priority chain and updates the package fallback
// when the declaration carries an @package tag.
func (g *NodeGenerator) namespaceFor(n *ast.Node) string {
	if g.hasNamespace {
		return g.namespace
	}
	if pkg, ok := annotation.Package(n.DocComment); ok {
		g.pkg = pkg
		return pkg
	}
	if g.pkg != "" {
		return g.pkg
	}
	return symbol.GlobalNamespace
}

func (g *NodeGenerator) register(d decl.Declaration) {
	if d.ID() == "" {
		debug.Warn("DECORATE", "%s %s has no identifier, not registered", d.Syntax().Kind, d.QualifiedName())
		return
	}
	d.Register()
	g.registered++
}

func (g *NodeGenerator) leaveType() {
	if len(g.types) > 0 {
		g.types = g.types[:len(g.types)-1]
	}
	g.depth--
}

// wrap places a top-level declaration found outside an explicit namespace
// into a synthesized namespace node and registers that namespace.
// Declarations nested in a class or callable body stay where they are.
func (g *NodeGenerator) wrap(n *ast.Node) *ast.Node {
	if g.hasNamespace || g.depth > 0 {
		return nil
	}
	name := n.Attr(decl.AttrNamespace)
	ns := &ast.Node{
		Kind:     ast.KindNamespace,
		Name:     name,
		Line:     n.Line,
		EndLine:  n.EndLine,
		Children: []*ast.Node{n},
		Attributes: map[string]string{
			symbol.AttrID:      name + symbol.KindNamespace.Suffix(),
			decl.AttrSynthetic: "true",
		},
	}
	decl.NewNamespace(ns, g.reg).Register()
	g.registered++
	return ns
}

func (g *NodeGenerator) checkHierarchy(n *ast.Node) {
	if g.cycleSeen {
		return
	}
	t, ok := decl.TypeOf(n)
	if !ok {
		return
	}
	if err := decl.CheckHierarchy(t); err != nil {
		g.cycleSeen = true
		debug.Warn("DECORATE", "%v", err)
	}
}
