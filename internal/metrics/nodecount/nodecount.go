// Package nodecount counts namespaces, types, methods and functions.
package nodecount

import (
	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/metrics"
	"github.com/rouffj/pdepend/internal/symbol"
)

// Name identifies the analyzer in configuration and reports.
const Name = "nodecount"

// Metric names.
const (
	NumberOfPackages   = "nop"
	NumberOfClasses    = "noc"
	NumberOfInterfaces = "noi"
	NumberOfMethods    = "nom"
	NumberOfFunctions  = "nof"
)

// scope is the accumulator: the enclosing namespace and type ids. outer is
// the accumulator to restore on leave.
type scope struct {
	namespace symbol.ID
	typ       symbol.ID
	outer     any
}

// Analyzer implements metrics.NodeAware and metrics.ProjectAware.
type Analyzer struct {
	nodes   map[symbol.ID]metrics.Values
	project metrics.Values
}

// New creates a node count analyzer.
func New() *Analyzer {
	a := &Analyzer{}
	a.Reset()
	return a
}

func (a *Analyzer) Name() string { return Name }

// Reset drops all counts.
func (a *Analyzer) Reset() {
	a.nodes = make(map[symbol.ID]metrics.Values)
	a.project = metrics.Values{
		NumberOfPackages:   0,
		NumberOfClasses:    0,
		NumberOfInterfaces: 0,
		NumberOfMethods:    0,
		NumberOfFunctions:  0,
	}
}

// Subscriptions implements metrics.Analyzer.
func (a *Analyzer) Subscriptions() []metrics.Subscription {
	var subs []metrics.Subscription
	subs = append(subs, metrics.OnNamespace(a.enterNamespace, a.leaveNamespace)...)
	subs = append(subs, metrics.OnClass(a.enterType(NumberOfClasses), a.leaveType)...)
	subs = append(subs, metrics.OnInterface(a.enterType(NumberOfInterfaces), a.leaveType)...)
	subs = append(subs, metrics.OnMethod(a.enterMethod, nil)...)
	subs = append(subs, metrics.OnFunction(a.enterFunction, nil)...)
	return subs
}

// NodeMetrics implements metrics.NodeAware.
func (a *Analyzer) NodeMetrics(id symbol.ID) metrics.Values {
	out := metrics.Values{}
	out.Merge(a.nodes[id])
	return out
}

// ProjectMetrics implements metrics.ProjectAware.
func (a *Analyzer) ProjectMetrics() metrics.Values {
	out := metrics.Values{}
	out.Merge(a.project)
	return out
}

func id(n *ast.Node) symbol.ID {
	return symbol.ID(n.Attr(symbol.AttrID))
}

func (a *Analyzer) enterNamespace(n *ast.Node, acc any) any {
	nsID := id(n)
	if nsID == "" {
		return acc
	}
	if _, ok := a.nodes[nsID]; !ok {
		a.nodes[nsID] = metrics.Values{
			NumberOfClasses:    0,
			NumberOfInterfaces: 0,
			NumberOfMethods:    0,
			NumberOfFunctions:  0,
		}
		a.project[NumberOfPackages]++
	}
	return &scope{namespace: nsID, outer: acc}
}

func (a *Analyzer) leaveNamespace(n *ast.Node, acc any) any {
	if s, ok := acc.(*scope); ok && s.typ == "" && s.namespace == id(n) {
		return s.outer
	}
	return acc
}

func (a *Analyzer) enterType(metric string) metrics.Handler {
	return func(n *ast.Node, acc any) any {
		s, _ := acc.(*scope)
		typeID := id(n)
		if s == nil || typeID == "" {
			return acc
		}
		a.project[metric]++
		a.nodes[s.namespace][metric]++
		a.nodes[typeID] = metrics.Values{NumberOfMethods: 0}
		return &scope{namespace: s.namespace, typ: typeID, outer: acc}
	}
}

func (a *Analyzer) leaveType(n *ast.Node, acc any) any {
	if s, ok := acc.(*scope); ok && s.typ != "" && s.typ == id(n) {
		return s.outer
	}
	return acc
}

func (a *Analyzer) enterMethod(n *ast.Node, acc any) any {
	s, _ := acc.(*scope)
	if s == nil || s.typ == "" || id(n) == "" {
		return acc
	}
	a.project[NumberOfMethods]++
	a.nodes[s.typ][NumberOfMethods]++
	a.nodes[s.namespace][NumberOfMethods]++
	return acc
}

func (a *Analyzer) enterFunction(n *ast.Node, acc any) any {
	s, _ := acc.(*scope)
	if s == nil || id(n) == "" {
		return acc
	}
	a.project[NumberOfFunctions]++
	a.nodes[s.namespace][NumberOfFunctions]++
	return acc
}
