// Package coderank ranks types and namespaces by how much of the project
// depends on them, a PageRank variant over the dependency graph.
//
// An edge runs from a dependent type to the type it depends on. cr sums
// the rank flowing into a node along those edges; rcr does the same over
// the reversed graph, so it is high for types that depend on much.
package coderank

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/debug"
	"github.com/rouffj/pdepend/internal/decl"
	"github.com/rouffj/pdepend/internal/metrics"
	"github.com/rouffj/pdepend/internal/symbol"
)

// Name identifies the analyzer in configuration and reports.
const Name = "coderank"

// Metric names.
const (
	CodeRank        = "cr"
	ReverseCodeRank = "rcr"
	Cycles          = "cycles"
)

const (
	damping       = 0.85
	tolerance     = 1e-6
	maxIterations = 100
)

// Strategy selects which references become edges.
type Strategy string

const (
	// Inheritance links a type to its parent class and interfaces.
	Inheritance Strategy = "inheritance"
	// Property links the declaring type to the type of each property.
	Property Strategy = "property"
	// Method links the declaring type to the return, exception and
	// parameter types of each method.
	Method Strategy = "method"
)

// Strategies lists the valid strategies.
var Strategies = []Strategy{Inheritance, Property, Method}

// ParseStrategy parses a strategy name, case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	for _, st := range Strategies {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown coderank strategy %q (want inheritance, property or method)", s)
}

type edge struct{ from, to symbol.ID }

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithStrategies replaces the default inheritance strategy. Duplicates are
// ignored.
func WithStrategies(s ...Strategy) Option {
	return func(a *Analyzer) {
		if len(s) == 0 {
			return
		}
		a.strategies = make(map[Strategy]bool, len(s))
		for _, st := range s {
			a.strategies[st] = true
		}
	}
}

// Analyzer implements metrics.NodeAware, metrics.ProjectAware and
// metrics.Finisher. Ranks are only available after Finish.
type Analyzer struct {
	strategies map[Strategy]bool

	types      map[symbol.ID]bool
	namespaces map[symbol.ID]bool
	typeEdges  map[edge]bool
	nsEdges    map[edge]bool

	nodes  map[symbol.ID]metrics.Values
	cycles int
}

// New creates a code rank analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{strategies: map[Strategy]bool{Inheritance: true}}
	for _, opt := range opts {
		opt(a)
	}
	a.Reset()
	return a
}

func (a *Analyzer) Name() string { return Name }

// Reset drops the collected graph and all results.
func (a *Analyzer) Reset() {
	a.types = make(map[symbol.ID]bool)
	a.namespaces = make(map[symbol.ID]bool)
	a.typeEdges = make(map[edge]bool)
	a.nsEdges = make(map[edge]bool)
	a.nodes = make(map[symbol.ID]metrics.Values)
	a.cycles = 0
}

// Subscriptions implements metrics.Analyzer.
func (a *Analyzer) Subscriptions() []metrics.Subscription {
	var subs []metrics.Subscription
	subs = append(subs, metrics.OnClass(a.enterType, nil)...)
	subs = append(subs, metrics.OnInterface(a.enterType, nil)...)
	if a.strategies[Property] {
		subs = append(subs, metrics.OnProperty(a.enterProperty, nil)...)
	}
	if a.strategies[Method] {
		subs = append(subs, metrics.OnMethod(a.enterMethod, nil)...)
	}
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
	return metrics.Values{Cycles: float64(a.cycles)}
}

func (a *Analyzer) enterType(n *ast.Node, acc any) any {
	t, ok := decl.TypeOf(n)
	if !ok {
		return acc
	}
	a.initType(t)
	if !a.strategies[Inheritance] {
		return acc
	}
	switch t := t.(type) {
	case *decl.Class:
		if parent, ok := t.ParentClass(); ok {
			a.depend(t, parent)
		}
		for _, i := range t.Interfaces() {
			a.depend(t, i)
		}
	case *decl.Interface:
		for _, i := range t.ParentInterfaces() {
			a.depend(t, i)
		}
	}
	return acc
}

func (a *Analyzer) enterProperty(n *ast.Node, acc any) any {
	p, ok := decl.PropertyOf(n)
	if !ok {
		return acc
	}
	owner, ok := p.DeclaringType()
	if !ok {
		return acc
	}
	if t, ok := p.Type(); ok {
		a.depend(owner, t)
	}
	return acc
}

func (a *Analyzer) enterMethod(n *ast.Node, acc any) any {
	m, ok := decl.MethodOf(n)
	if !ok {
		return acc
	}
	owner, ok := m.DeclaringType()
	if !ok {
		return acc
	}
	if t, ok := m.ReturnType(); ok {
		a.depend(owner, t)
	}
	for _, t := range m.ThrownExceptions() {
		a.depend(owner, t)
	}
	for _, t := range m.ParameterTypes() {
		a.depend(owner, t)
	}
	return acc
}

func (a *Analyzer) initType(t decl.Type) {
	a.types[t.ID()] = true
	if ns := t.Namespace(); ns != nil {
		a.namespaces[ns.ID()] = true
	}
}

// depend records that from depends on to. Self references add no edge.
func (a *Analyzer) depend(from, to decl.Type) {
	if from == nil || to == nil {
		return
	}
	a.initType(from)
	a.initType(to)
	if from.ID() == to.ID() {
		return
	}
	a.typeEdges[edge{from.ID(), to.ID()}] = true

	fromNS, toNS := from.Namespace(), to.Namespace()
	if fromNS != nil && toNS != nil && fromNS.ID() != toNS.ID() {
		a.nsEdges[edge{fromNS.ID(), toNS.ID()}] = true
	}
}

// Finish implements metrics.Finisher.
func (a *Analyzer) Finish() {
	a.nodes = make(map[symbol.ID]metrics.Values, len(a.types)+len(a.namespaces))

	types := newRankGraph(a.types, a.typeEdges)
	types.rank(a.nodes)
	a.cycles = types.cycles()

	newRankGraph(a.namespaces, a.nsEdges).rank(a.nodes)

	debug.LogMetrics("coderank: %d types, %d namespaces, %d cycles\n",
		len(a.types), len(a.namespaces), a.cycles)
}

// rankGraph is a dependency graph keyed by dense int64 ids assigned in
// sorted symbol order, so ranking is independent of traversal order.
type rankGraph struct {
	g   *simple.DirectedGraph
	ids []symbol.ID
}

func newRankGraph(nodes map[symbol.ID]bool, edges map[edge]bool) *rankGraph {
	rg := &rankGraph{g: simple.NewDirectedGraph()}
	for id := range nodes {
		rg.ids = append(rg.ids, id)
	}
	sort.Slice(rg.ids, func(i, j int) bool { return rg.ids[i] < rg.ids[j] })

	index := make(map[symbol.ID]int64, len(rg.ids))
	for i, id := range rg.ids {
		index[id] = int64(i)
		rg.g.AddNode(simple.Node(i))
	}
	for e := range edges {
		from, fok := index[e.from]
		to, tok := index[e.to]
		if fok && tok && from != to {
			rg.g.SetEdge(rg.g.NewEdge(simple.Node(from), simple.Node(to)))
		}
	}
	return rg
}

// rank stores cr and rcr of every node into out.
func (rg *rankGraph) rank(out map[symbol.ID]metrics.Values) {
	cr := rg.iterate(rg.g.To, rg.g.From)
	rcr := rg.iterate(rg.g.From, rg.g.To)
	for i, id := range rg.ids {
		out[id] = metrics.Values{CodeRank: cr[i], ReverseCodeRank: rcr[i]}
	}
}

// iterate runs the rank recurrence in place until no rank moves by more
// than the tolerance. in yields the nodes a rank flows from; out yields
// the nodes such a source splits its rank across.
func (rg *rankGraph) iterate(in, out func(int64) graph.Nodes) []float64 {
	ranks := make([]float64, len(rg.ids))
	for i := range ranks {
		ranks[i] = 1
	}

	for round := 0; round < maxIterations; round++ {
		delta := 0.0
		for i := range ranks {
			sum := 0.0
			for _, src := range graph.NodesOf(in(int64(i))) {
				sum += ranks[src.ID()] / float64(out(src.ID()).Len())
			}
			next := (1 - damping) + damping*sum
			delta = math.Max(delta, math.Abs(next-ranks[i]))
			ranks[i] = next
		}
		if delta < tolerance {
			break
		}
	}
	return ranks
}

// cycles counts the strongly connected components with more than one node.
func (rg *rankGraph) cycles() int {
	n := 0
	for _, scc := range topo.TarjanSCC(rg.g) {
		if len(scc) > 1 {
			n++
		}
	}
	return n
}
