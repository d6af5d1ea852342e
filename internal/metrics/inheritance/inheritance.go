// Package inheritance computes class hierarchy metrics.
package inheritance

import (
	"strings"

	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/debug"
	"github.com/rouffj/pdepend/internal/decl"
	"github.com/rouffj/pdepend/internal/metrics"
	"github.com/rouffj/pdepend/internal/symbol"
)

// Name identifies the analyzer in configuration and reports.
const Name = "inheritance"

// Node metrics.
const (
	DepthOfInheritanceTree     = "dit"
	NumberOfAddedMethods       = "noam"
	NumberOfDerivedClasses     = "nocc"
	NumberOfOverwrittenMethods = "noom"
)

// Project metrics.
const (
	AverageNumberOfDerivedClasses = "andc"
	AverageHierarchyHeight        = "ahh"
	MaximumInheritanceDepth       = "maxDIT"
	NumberOfLeafClasses           = "leafs"
	NumberOfRootClasses           = "roots"
)

// Analyzer implements metrics.NodeAware and metrics.ProjectAware.
type Analyzer struct {
	nodes map[symbol.ID]metrics.Values

	classes        int
	derivedClasses int
	maxDIT         int
	nonLeaf        map[symbol.ID]bool
	// root class id -> depth of the deepest user-defined chain below it
	roots map[symbol.ID]int
}

// New creates an inheritance analyzer.
func New() *Analyzer {
	a := &Analyzer{}
	a.Reset()
	return a
}

func (a *Analyzer) Name() string { return Name }

// Reset drops all results.
func (a *Analyzer) Reset() {
	a.nodes = make(map[symbol.ID]metrics.Values)
	a.nonLeaf = make(map[symbol.ID]bool)
	a.roots = make(map[symbol.ID]int)
	a.classes = 0
	a.derivedClasses = 0
	a.maxDIT = 0
}

// Subscriptions implements metrics.Analyzer.
func (a *Analyzer) Subscriptions() []metrics.Subscription {
	return metrics.OnClass(a.enterClass, nil)
}

// NodeMetrics implements metrics.NodeAware.
func (a *Analyzer) NodeMetrics(id symbol.ID) metrics.Values {
	out := metrics.Values{}
	out.Merge(a.nodes[id])
	return out
}

// ProjectMetrics implements metrics.ProjectAware.
func (a *Analyzer) ProjectMetrics() metrics.Values {
	andc := 0.0
	if a.classes > 0 {
		andc = float64(a.derivedClasses) / float64(a.classes)
	}
	ahh := 0.0
	if len(a.roots) > 0 {
		sum := 0
		for _, depth := range a.roots {
			sum += depth
		}
		ahh = float64(sum) / float64(len(a.roots))
	}
	return metrics.Values{
		AverageNumberOfDerivedClasses: andc,
		AverageHierarchyHeight:        ahh,
		MaximumInheritanceDepth:       float64(a.maxDIT),
		NumberOfLeafClasses:           float64(a.classes - len(a.nonLeaf)),
		NumberOfRootClasses:           float64(len(a.roots)),
	}
}

func (a *Analyzer) enterClass(n *ast.Node, acc any) any {
	class, ok := decl.ClassOf(n)
	if !ok || !class.IsUserDefined() {
		return acc
	}
	a.classes++

	ancestors, err := decl.Ancestors(class)
	if err != nil {
		debug.Warn("METRICS", "%s: %v", Name, err)
	}

	a.init(class.ID())
	for _, p := range ancestors {
		a.init(p.ID())
	}

	a.derived(class)
	a.methods(class, ancestors)
	a.depth(class, ancestors)
	return acc
}

func (a *Analyzer) init(id symbol.ID) {
	if _, ok := a.nodes[id]; ok {
		return
	}
	a.nodes[id] = metrics.Values{
		DepthOfInheritanceTree:     0,
		NumberOfAddedMethods:       0,
		NumberOfDerivedClasses:     0,
		NumberOfOverwrittenMethods: 0,
	}
}

func (a *Analyzer) derived(class *decl.Class) {
	parent, ok := class.ParentClass()
	if !ok || !parent.IsUserDefined() {
		return
	}
	a.derivedClasses++
	a.nodes[parent.ID()][NumberOfDerivedClasses]++
	a.nonLeaf[parent.ID()] = true
}

// methods counts added methods and overwritten concrete methods. Method
// names compare case-insensitively; the nearest ancestor declaring a name
// decides whether it is abstract.
func (a *Analyzer) methods(class *decl.Class, ancestors []*decl.Class) {
	if len(ancestors) == 0 {
		return
	}
	inherited := make(map[string]bool)
	for _, p := range ancestors {
		for _, m := range p.Methods() {
			name := strings.ToLower(m.Name)
			if _, seen := inherited[name]; !seen {
				inherited[name] = m.IsAbstract()
			}
		}
	}

	added, overwritten := 0, 0
	for _, m := range class.Methods() {
		abstract, ok := inherited[strings.ToLower(m.Name)]
		switch {
		case !ok:
			added++
		case !abstract:
			overwritten++
		}
	}
	a.nodes[class.ID()][NumberOfAddedMethods] = float64(added)
	a.nodes[class.ID()][NumberOfOverwrittenMethods] = float64(overwritten)
}

// depth walks the parent chain. A parent that is not user-defined counts
// one extra level for its unknown ancestry and ends the walk.
func (a *Analyzer) depth(class *decl.Class, ancestors []*decl.Class) {
	dit, dep := 0, 0
	root := class.ID()
	for _, p := range ancestors {
		dit++
		if !p.IsUserDefined() {
			dit++
			break
		}
		dep++
		root = p.ID()
	}

	a.maxDIT = max(a.maxDIT, dit)
	if cur, ok := a.roots[root]; !ok || cur < dep {
		a.roots[root] = dep
	}
	a.nodes[class.ID()][DepthOfInheritanceTree] = float64(dit)
}
