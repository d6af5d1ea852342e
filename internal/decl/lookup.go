package decl

import (
	"github.com/rouffj/pdepend/internal/registry"
	"github.com/rouffj/pdepend/internal/symbol"
)

// Lookup helpers never create placeholders; a miss is reported as false.

func LookupNamespace(reg *registry.Registry, name string) (*Namespace, bool) {
	n, ok := reg.LookupKey(symbol.NamespaceKey(name))
	if !ok {
		return nil, false
	}
	ns, ok := n.(*Namespace)
	return ns, ok
}

func LookupClass(reg *registry.Registry, qname string) (*Class, bool) {
	n, ok := reg.LookupKey(symbol.TypeKey(qname, symbol.KindClass))
	if !ok {
		return nil, false
	}
	c, ok := n.(*Class)
	return c, ok
}

func LookupInterface(reg *registry.Registry, qname string) (*Interface, bool) {
	n, ok := reg.LookupKey(symbol.TypeKey(qname, symbol.KindInterface))
	if !ok {
		return nil, false
	}
	i, ok := n.(*Interface)
	return i, ok
}

// LookupType tries the interface key first, then the class key.
func LookupType(reg *registry.Registry, qname string) (Type, bool) {
	if i, ok := LookupInterface(reg, qname); ok {
		return i, true
	}
	if c, ok := LookupClass(reg, qname); ok {
		return c, true
	}
	return nil, false
}

func LookupFunction(reg *registry.Registry, qname string) (*Function, bool) {
	n, ok := reg.LookupKey(symbol.FunctionKey(qname))
	if !ok {
		return nil, false
	}
	f, ok := n.(*Function)
	return f, ok
}

func LookupMethod(reg *registry.Registry, typeName, method string) (*Method, bool) {
	n, ok := reg.LookupKey(symbol.MethodKey(typeName, method))
	if !ok {
		return nil, false
	}
	m, ok := n.(*Method)
	return m, ok
}

func LookupProperty(reg *registry.Registry, typeName, property string) (*Property, bool) {
	n, ok := reg.LookupKey(symbol.PropertyKey(typeName, property))
	if !ok {
		return nil, false
	}
	p, ok := n.(*Property)
	return p, ok
}

// ByID returns the declaration registered under id, if it is one.
func ByID(reg *registry.Registry, id symbol.ID) (Declaration, bool) {
	n, ok := reg.Lookup(id)
	if !ok {
		return nil, false
	}
	d, ok := n.(Declaration)
	return d, ok
}
