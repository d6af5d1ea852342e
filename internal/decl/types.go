package decl

import (
	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/registry"
	"github.com/rouffj/pdepend/internal/symbol"
)

// Type is a class or an interface.
type Type interface {
	Declaration
	IsUserDefined() bool
	IsSubtypeOf(other Type) bool
	Namespace() *Namespace
	Methods() []*Method

	// supertypes lists the directly extended or implemented types.
	supertypes() []Type
}

// Class wraps a class declaration.
type Class struct {
	base
	refs     *ClassRefs
	external bool
}

// NewClass wraps n. The wrapper is not visible to lookups until Register.
func NewClass(n *ast.Node, reg *registry.Registry) *Class {
	c := &Class{base: base{Node: n}}
	c.refs = &ClassRefs{
		reg:        reg,
		namespace:  n.Attr(AttrNamespace),
		interfaces: n.Implements,
	}
	if len(n.Extends) > 0 {
		c.refs.parent = n.Extends[0]
	}
	n.Decl = c
	return c
}

// Key returns the name-based lookup key.
func (c *Class) Key() symbol.Key {
	return symbol.TypeKey(c.QualifiedName(), symbol.KindClass)
}

// Register makes the class visible in its registry.
func (c *Class) Register() {
	c.refs.initialize(c)
}

// Refs returns the reference proxy.
func (c *Class) Refs() *ClassRefs {
	return c.refs
}

func (c *Class) Namespace() *Namespace       { return c.refs.Namespace() }
func (c *Class) ParentClass() (*Class, bool) { return c.refs.ParentClass() }
func (c *Class) Interfaces() []*Interface    { return c.refs.Interfaces() }
func (c *Class) IsAbstract() bool            { return c.Modifiers.Has(ast.ModAbstract) }
func (c *Class) IsFinal() bool               { return c.Modifiers.Has(ast.ModFinal) }
func (c *Class) IsUserDefined() bool         { return !c.external }
func (c *Class) Methods() []*Method          { return methodsOf(c.Node) }
func (c *Class) Properties() []*Property     { return propertiesOf(c.Node) }

// IsSubtypeOf reports whether c is other, extends it, or implements it,
// directly or transitively.
func (c *Class) IsSubtypeOf(other Type) bool {
	return isSubtype(c, other)
}

func (c *Class) supertypes() []Type {
	var out []Type
	if p, ok := c.ParentClass(); ok {
		out = append(out, p)
	}
	for _, i := range c.Interfaces() {
		out = append(out, i)
	}
	return out
}

// Interface wraps an interface declaration.
type Interface struct {
	base
	refs     *InterfaceRefs
	external bool
}

// NewInterface wraps n. The wrapper is not visible to lookups until Register.
func NewInterface(n *ast.Node, reg *registry.Registry) *Interface {
	i := &Interface{base: base{Node: n}}
	i.refs = &InterfaceRefs{
		reg:       reg,
		namespace: n.Attr(AttrNamespace),
		parents:   n.Extends,
	}
	n.Decl = i
	return i
}

// Key returns the name-based lookup key.
func (i *Interface) Key() symbol.Key {
	return symbol.TypeKey(i.QualifiedName(), symbol.KindInterface)
}

// Register makes the interface visible in its registry.
func (i *Interface) Register() {
	i.refs.initialize(i)
}

// Refs returns the reference proxy.
func (i *Interface) Refs() *InterfaceRefs {
	return i.refs
}

func (i *Interface) Namespace() *Namespace          { return i.refs.Namespace() }
func (i *Interface) ParentInterfaces() []*Interface { return i.refs.ParentInterfaces() }
func (i *Interface) IsUserDefined() bool            { return !i.external }
func (i *Interface) Methods() []*Method             { return methodsOf(i.Node) }

// IsSubtypeOf reports whether i is other or extends it transitively.
func (i *Interface) IsSubtypeOf(other Type) bool {
	return isSubtype(i, other)
}

func (i *Interface) supertypes() []Type {
	parents := i.ParentInterfaces()
	out := make([]Type, 0, len(parents))
	for _, p := range parents {
		out = append(out, p)
	}
	return out
}

// Namespace wraps a namespace, explicit or synthesized.
type Namespace struct {
	base
	refs     *NamespaceRefs
	external bool
}

// NewNamespace wraps n.
func NewNamespace(n *ast.Node, reg *registry.Registry) *Namespace {
	ns := &Namespace{base: base{Node: n}, refs: &NamespaceRefs{reg: reg}}
	n.Decl = ns
	return ns
}

// Key returns the name-based lookup key.
func (ns *Namespace) Key() symbol.Key {
	return symbol.NamespaceKey(ns.Name)
}

// Register makes the namespace visible in its registry.
func (ns *Namespace) Register() {
	ns.refs.initialize(ns)
}

// IsSynthetic reports whether the node was synthesized for a declaration
// without an explicit namespace.
func (ns *Namespace) IsSynthetic() bool {
	return ns.Attr(AttrSynthetic) != ""
}

// IsUserDefined reports false for namespaces only known from references.
func (ns *Namespace) IsUserDefined() bool {
	return !ns.external
}

func methodsOf(n *ast.Node) []*Method {
	var out []*Method
	for _, child := range n.Children {
		if m, ok := MethodOf(child); ok {
			out = append(out, m)
		}
	}
	return out
}

func propertiesOf(n *ast.Node) []*Property {
	var out []*Property
	for _, child := range n.Children {
		if p, ok := PropertyOf(child); ok {
			out = append(out, p)
		}
	}
	return out
}
