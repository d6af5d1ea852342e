package decl

import (
	"strings"

	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/registry"
	"github.com/rouffj/pdepend/internal/symbol"
)

// NamespaceRefs is the proxy of a namespace. Namespaces reference nothing.
type NamespaceRefs struct {
	reg *registry.Registry
}

func (r *NamespaceRefs) initialize(n *Namespace) {
	r.reg.Register(n)
}

// ClassRefs holds the raw names a class points to.
type ClassRefs struct {
	reg        *registry.Registry
	namespace  string
	parent     string
	interfaces []string
}

// Namespace resolves the enclosing namespace.
func (r *ClassRefs) Namespace() *Namespace {
	return resolveNamespace(r.reg, r.namespace)
}

// ParentClass resolves the extended class. It reports false only when the
// class extends nothing.
func (r *ClassRefs) ParentClass() (*Class, bool) {
	if r.parent == "" {
		return nil, false
	}
	return resolveClass(r.reg, r.parent), true
}

// Interfaces resolves the implemented interfaces in declaration order.
func (r *ClassRefs) Interfaces() []*Interface {
	return resolveInterfaces(r.reg, r.interfaces)
}

func (r *ClassRefs) initialize(c *Class) {
	r.reg.Register(c)
}

// InterfaceRefs holds the raw names an interface points to.
type InterfaceRefs struct {
	reg       *registry.Registry
	namespace string
	parents   []string
}

// Namespace resolves the enclosing namespace.
func (r *InterfaceRefs) Namespace() *Namespace {
	return resolveNamespace(r.reg, r.namespace)
}

// ParentInterfaces resolves the extended interfaces.
func (r *InterfaceRefs) ParentInterfaces() []*Interface {
	return resolveInterfaces(r.reg, r.parents)
}

func (r *InterfaceRefs) initialize(i *Interface) {
	r.reg.Register(i)
}

// CallableRefs holds the raw names a function or method points to.
// declaring is empty for functions.
type CallableRefs struct {
	reg           *registry.Registry
	namespace     string
	declaring     string
	declaringKind symbol.Kind
	returnType    string
	throws        []string
	params        []string
}

// Namespace resolves the enclosing namespace.
func (r *CallableRefs) Namespace() *Namespace {
	return resolveNamespace(r.reg, r.namespace)
}

// DeclaringType resolves the type declaring a method.
func (r *CallableRefs) DeclaringType() (Type, bool) {
	if r.declaring == "" {
		return nil, false
	}
	return resolveDeclaring(r.reg, r.declaring, r.declaringKind), true
}

// ReturnType resolves the declared or documented return type.
func (r *CallableRefs) ReturnType() (Type, bool) {
	if r.returnType == "" {
		return nil, false
	}
	return ResolveType(r.reg, r.returnType), true
}

// ThrownExceptions resolves the documented exception types.
func (r *CallableRefs) ThrownExceptions() []Type {
	return resolveTypes(r.reg, r.throws)
}

// ParameterTypes resolves the type hints of all parameters that have one.
func (r *CallableRefs) ParameterTypes() []Type {
	return resolveTypes(r.reg, r.params)
}

func (r *CallableRefs) initialize(d Declaration) {
	r.reg.Register(d)
}

// PropertyRefs holds the raw names a property points to.
type PropertyRefs struct {
	reg           *registry.Registry
	namespace     string
	declaring     string
	declaringKind symbol.Kind
	typ           string
}

// Namespace resolves the enclosing namespace.
func (r *PropertyRefs) Namespace() *Namespace {
	return resolveNamespace(r.reg, r.namespace)
}

// DeclaringType resolves the type declaring the property.
func (r *PropertyRefs) DeclaringType() (Type, bool) {
	if r.declaring == "" {
		return nil, false
	}
	return resolveDeclaring(r.reg, r.declaring, r.declaringKind), true
}

// Type resolves the declared or documented property type.
func (r *PropertyRefs) Type() (Type, bool) {
	if r.typ == "" {
		return nil, false
	}
	return ResolveType(r.reg, r.typ), true
}

func (r *PropertyRefs) initialize(p *Property) {
	r.reg.Register(p)
}

// ResolveType resolves a qualified type name to an interface, a class, or
// a placeholder class, in that order. It returns nil for an empty name.
func ResolveType(reg *registry.Registry, name string) Type {
	if name == "" {
		return nil
	}
	if t, ok := LookupType(reg, name); ok {
		return t
	}
	return resolveClass(reg, name)
}

func resolveDeclaring(reg *registry.Registry, name string, kind symbol.Kind) Type {
	if kind == symbol.KindInterface {
		return resolveInterface(reg, name)
	}
	return ResolveType(reg, name)
}

func resolveTypes(reg *registry.Registry, names []string) []Type {
	if len(names) == 0 {
		return nil
	}
	out := make([]Type, 0, len(names))
	for _, name := range names {
		if t := ResolveType(reg, name); t != nil {
			out = append(out, t)
		}
	}
	return out
}

func resolveInterfaces(reg *registry.Registry, names []string) []*Interface {
	if len(names) == 0 {
		return nil
	}
	out := make([]*Interface, 0, len(names))
	for _, name := range names {
		out = append(out, resolveInterface(reg, name))
	}
	return out
}

func resolveClass(reg *registry.Registry, name string) *Class {
	key := symbol.TypeKey(name, symbol.KindClass)
	n := reg.Placeholder(key, func() registry.Node {
		c := &Class{external: true}
		c.Node = placeholderNode(ast.KindClass, name, symbol.KindClass)
		c.refs = &ClassRefs{reg: reg, namespace: namespaceOf(name)}
		c.Node.Decl = c
		return c
	})
	return n.(*Class)
}

func resolveInterface(reg *registry.Registry, name string) *Interface {
	key := symbol.TypeKey(name, symbol.KindInterface)
	n := reg.Placeholder(key, func() registry.Node {
		i := &Interface{external: true}
		i.Node = placeholderNode(ast.KindInterface, name, symbol.KindInterface)
		i.refs = &InterfaceRefs{reg: reg, namespace: namespaceOf(name)}
		i.Node.Decl = i
		return i
	})
	return n.(*Interface)
}

func resolveNamespace(reg *registry.Registry, name string) *Namespace {
	if name == "" {
		name = symbol.GlobalNamespace
	}
	n := reg.Placeholder(symbol.NamespaceKey(name), func() registry.Node {
		ns := &Namespace{external: true}
		ns.Node = &ast.Node{
			Kind:           ast.KindNamespace,
			Name:           name,
			NamespacedName: name,
			Attributes:     map[string]string{symbol.AttrID: name + symbol.KindNamespace.Suffix()},
		}
		ns.refs = &NamespaceRefs{reg: reg}
		ns.Node.Decl = ns
		return ns
	})
	return n.(*Namespace)
}

// placeholderNode builds the syntax of an unresolved type. Its id is the
// qualified name plus suffix, which can never collide with a file-scoped id.
func placeholderNode(kind ast.Kind, name string, sk symbol.Kind) *ast.Node {
	qname := strings.TrimPrefix(name, `\`)
	short := qname
	if i := strings.LastIndexByte(qname, '\\'); i >= 0 {
		short = qname[i+1:]
	}
	return &ast.Node{
		Kind:           kind,
		Name:           short,
		NamespacedName: qname,
		Attributes: map[string]string{
			symbol.AttrID: qname + sk.Suffix(),
			AttrNamespace: namespaceOf(qname),
		},
	}
}

// namespaceOf returns the namespace part of a qualified name.
func namespaceOf(name string) string {
	name = strings.TrimPrefix(name, `\`)
	if i := strings.LastIndexByte(name, '\\'); i > 0 {
		return name[:i]
	}
	return symbol.GlobalNamespace
}
