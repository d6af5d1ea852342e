package decl

import (
	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/registry"
	"github.com/rouffj/pdepend/internal/symbol"
)

// Callable is a function or a method.
type Callable interface {
	Declaration
	Namespace() *Namespace
	ReturnType() (Type, bool)
	ThrownExceptions() []Type
	ParameterTypes() []Type
}

func newCallableRefs(n *ast.Node, reg *registry.Registry) *CallableRefs {
	return &CallableRefs{
		reg:        reg,
		namespace:  n.Attr(AttrNamespace),
		returnType: n.ReturnType,
		throws:     splitList(n.Attr(AttrThrows)),
		params:     parameterTypes(n),
	}
}

// Method wraps a method declaration.
type Method struct {
	base
	refs *CallableRefs
}

// NewMethod wraps n. The wrapper is not visible to lookups until Register.
func NewMethod(n *ast.Node, reg *registry.Registry) *Method {
	m := &Method{base: base{Node: n}}
	m.refs = newCallableRefs(n, reg)
	m.refs.declaring = n.Attr(AttrDeclaring)
	m.refs.declaringKind = declaringKind(n)
	n.Decl = m
	return m
}

// Key returns the name-based lookup key.
func (m *Method) Key() symbol.Key {
	return symbol.MethodKey(m.refs.declaring, m.Name)
}

// QualifiedName returns Type::method.
func (m *Method) QualifiedName() string {
	return m.refs.declaring + "::" + m.Name
}

// Register makes the method visible in its registry.
func (m *Method) Register() {
	m.refs.initialize(m)
}

// Refs returns the reference proxy.
func (m *Method) Refs() *CallableRefs {
	return m.refs
}

func (m *Method) Namespace() *Namespace       { return m.refs.Namespace() }
func (m *Method) DeclaringType() (Type, bool) { return m.refs.DeclaringType() }
func (m *Method) ReturnType() (Type, bool)    { return m.refs.ReturnType() }
func (m *Method) ThrownExceptions() []Type    { return m.refs.ThrownExceptions() }
func (m *Method) ParameterTypes() []Type      { return m.refs.ParameterTypes() }
func (m *Method) IsAbstract() bool            { return m.Modifiers.Has(ast.ModAbstract) }
func (m *Method) IsStatic() bool              { return m.Modifiers.Has(ast.ModStatic) }
func (m *Method) IsPrivate() bool             { return m.Modifiers.Has(ast.ModPrivate) }

// Function wraps a function declaration.
type Function struct {
	base
	refs *CallableRefs
}

// NewFunction wraps n. The wrapper is not visible to lookups until Register.
func NewFunction(n *ast.Node, reg *registry.Registry) *Function {
	f := &Function{base: base{Node: n}, refs: newCallableRefs(n, reg)}
	n.Decl = f
	return f
}

// Key returns the name-based lookup key.
func (f *Function) Key() symbol.Key {
	return symbol.FunctionKey(f.QualifiedName())
}

// Register makes the function visible in its registry.
func (f *Function) Register() {
	f.refs.initialize(f)
}

// Refs returns the reference proxy.
func (f *Function) Refs() *CallableRefs {
	return f.refs
}

func (f *Function) Namespace() *Namespace    { return f.refs.Namespace() }
func (f *Function) ReturnType() (Type, bool) { return f.refs.ReturnType() }
func (f *Function) ThrownExceptions() []Type { return f.refs.ThrownExceptions() }
func (f *Function) ParameterTypes() []Type   { return f.refs.ParameterTypes() }

// Property wraps one property of a property declaration.
type Property struct {
	base
	refs *PropertyRefs
}

// NewProperty wraps n. The wrapper is not visible to lookups until Register.
func NewProperty(n *ast.Node, reg *registry.Registry) *Property {
	p := &Property{base: base{Node: n}}
	p.refs = &PropertyRefs{
		reg:           reg,
		namespace:     n.Attr(AttrNamespace),
		declaring:     n.Attr(AttrDeclaring),
		declaringKind: declaringKind(n),
		typ:           n.TypeRef,
	}
	n.Decl = p
	return p
}

// Key returns the name-based lookup key.
func (p *Property) Key() symbol.Key {
	return symbol.PropertyKey(p.refs.declaring, p.Name)
}

// QualifiedName returns Type::$property.
func (p *Property) QualifiedName() string {
	return p.refs.declaring + "::$" + p.Name
}

// Register makes the property visible in its registry.
func (p *Property) Register() {
	p.refs.initialize(p)
}

// Refs returns the reference proxy.
func (p *Property) Refs() *PropertyRefs {
	return p.refs
}

func (p *Property) Namespace() *Namespace       { return p.refs.Namespace() }
func (p *Property) DeclaringType() (Type, bool) { return p.refs.DeclaringType() }
func (p *Property) Type() (Type, bool)          { return p.refs.Type() }
func (p *Property) IsStatic() bool              { return p.Modifiers.Has(ast.ModStatic) }
func (p *Property) IsPrivate() bool             { return p.Modifiers.Has(ast.ModPrivate) }
