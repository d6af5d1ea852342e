// Package decl wraps decorated syntax nodes with identity and resolved
// relationships.
//
// Every wrapper owns a reference proxy holding the raw names of what the
// declaration points to. Proxies resolve through the registry on every
// call, so a reference that misses now succeeds once the target file has
// been decorated. A name that never resolves yields a stable placeholder
// declaration (IsUserDefined reports false) rather than nil.
//
// Building a wrapper has no side effects; Register is the explicit second
// step that makes it visible to lookups.
package decl

import (
	"strings"

	"github.com/rouffj/pdepend/internal/annotation"
	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/registry"
	"github.com/rouffj/pdepend/internal/symbol"
)

// Attribute keys written by the decoration pass and read by Build.
const (
	AttrNamespace     = "namespace"
	AttrDeclaring     = "declaring"
	AttrDeclaringKind = "declaring_kind"
	AttrThrows        = annotation.AttrThrows
	AttrSynthetic     = "synthetic"
)

// Declaration is implemented by every wrapper.
type Declaration interface {
	registry.Node
	ast.Declaration
	QualifiedName() string
	Register()
}

type base struct {
	*ast.Node
}

// ID returns the identifier assigned by the identifier generator.
func (b base) ID() symbol.ID {
	return symbol.ID(b.Attr(symbol.AttrID))
}

// QualifiedName returns the namespaced name, or the plain name when the
// parser did not qualify it.
func (b base) QualifiedName() string {
	if b.NamespacedName != "" {
		return b.NamespacedName
	}
	return b.Name
}

// Syntax returns the wrapped node.
func (b base) Syntax() *ast.Node {
	return b.Node
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "|")
}

func parameterTypes(n *ast.Node) []string {
	var out []string
	for _, p := range n.ChildrenOf(ast.KindParameter) {
		if p.TypeRef != "" {
			out = append(out, p.TypeRef)
		}
	}
	return out
}

func declaringKind(n *ast.Node) symbol.Kind {
	if n.Attr(AttrDeclaringKind) == string(symbol.KindInterface) {
		return symbol.KindInterface
	}
	return symbol.KindClass
}

// Build constructs the wrapper for a decorated declaration node and
// attaches it to n.Decl. It reports false for nodes that are not
// declarations or carry no identifier.
func Build(n *ast.Node, reg *registry.Registry) (Declaration, bool) {
	if n.Attr(symbol.AttrID) == "" {
		return nil, false
	}
	switch n.Kind {
	case ast.KindNamespace:
		return NewNamespace(n, reg), true
	case ast.KindClass:
		return NewClass(n, reg), true
	case ast.KindInterface:
		return NewInterface(n, reg), true
	case ast.KindMethod:
		return NewMethod(n, reg), true
	case ast.KindFunction:
		return NewFunction(n, reg), true
	case ast.KindProperty:
		return NewProperty(n, reg), true
	}
	return nil, false
}

// Restore rebuilds and re-registers every declaration of a unit loaded
// from a persisted form. Declarations register innermost first, the same
// order the decoration pass uses.
func Restore(reg *registry.Registry, unit *ast.CompilationUnit) int {
	count := 0
	ast.Walk(unit.Root, nil, func(n *ast.Node) {
		if d, ok := Build(n, reg); ok {
			d.Register()
			count++
		}
	})
	return count
}

// ClassOf returns the class wrapper attached to n.
func ClassOf(n *ast.Node) (*Class, bool) {
	c, ok := n.Decl.(*Class)
	return c, ok
}

// InterfaceOf returns the interface wrapper attached to n.
func InterfaceOf(n *ast.Node) (*Interface, bool) {
	i, ok := n.Decl.(*Interface)
	return i, ok
}

// TypeOf returns the class or interface wrapper attached to n.
func TypeOf(n *ast.Node) (Type, bool) {
	t, ok := n.Decl.(Type)
	return t, ok
}

// MethodOf returns the method wrapper attached to n.
func MethodOf(n *ast.Node) (*Method, bool) {
	m, ok := n.Decl.(*Method)
	return m, ok
}

// FunctionOf returns the function wrapper attached to n.
func FunctionOf(n *ast.Node) (*Function, bool) {
	f, ok := n.Decl.(*Function)
	return f, ok
}

// CallableOf returns the function or method wrapper attached to n.
func CallableOf(n *ast.Node) (Callable, bool) {
	c, ok := n.Decl.(Callable)
	return c, ok
}

// PropertyOf returns the property wrapper attached to n.
func PropertyOf(n *ast.Node) (*Property, bool) {
	p, ok := n.Decl.(*Property)
	return p, ok
}

// NamespaceOf returns the namespace wrapper attached to n.
func NamespaceOf(n *ast.Node) (*Namespace, bool) {
	ns, ok := n.Decl.(*Namespace)
	return ns, ok
}
