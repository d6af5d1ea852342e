// Package metrics dispatches decorated syntax trees to metric analyzers.
//
// An analyzer declares which node kinds it wants to see before and after
// their children; the Processor walks each compilation unit once and calls
// every subscribed handler in registration order. Each analyzer owns one
// accumulator slot that is threaded from handler to handler during a
// traversal and reset before the next one.
package metrics

import (
	"sort"

	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/symbol"
)

// Phase tells whether a handler runs before or after a node's children.
type Phase uint8

const (
	Before Phase = iota
	After
)

func (p Phase) String() string {
	if p == After {
		return "after"
	}
	return "before"
}

// Event is a node kind paired with a phase.
type Event struct {
	Kind  ast.Kind
	Phase Phase
}

// Handler visits one node. It receives the analyzer's current accumulator
// and returns the accumulator for the next handler of the same analyzer.
type Handler func(n *ast.Node, acc any) any

// Subscription binds a handler to an event.
type Subscription struct {
	Event   Event
	Handler Handler
}

// OnNode subscribes before and after handlers to kind. Either handler may
// be nil.
func OnNode(kind ast.Kind, before, after Handler) []Subscription {
	var subs []Subscription
	if before != nil {
		subs = append(subs, Subscription{Event: Event{Kind: kind, Phase: Before}, Handler: before})
	}
	if after != nil {
		subs = append(subs, Subscription{Event: Event{Kind: kind, Phase: After}, Handler: after})
	}
	return subs
}

func OnCompilationUnit(before, after Handler) []Subscription {
	return OnNode(ast.KindCompilationUnit, before, after)
}

func OnNamespace(before, after Handler) []Subscription {
	return OnNode(ast.KindNamespace, before, after)
}

func OnClass(before, after Handler) []Subscription {
	return OnNode(ast.KindClass, before, after)
}

func OnInterface(before, after Handler) []Subscription {
	return OnNode(ast.KindInterface, before, after)
}

func OnMethod(before, after Handler) []Subscription {
	return OnNode(ast.KindMethod, before, after)
}

func OnFunction(before, after Handler) []Subscription {
	return OnNode(ast.KindFunction, before, after)
}

func OnProperty(before, after Handler) []Subscription {
	return OnNode(ast.KindProperty, before, after)
}

// Analyzer computes metrics from the events it subscribes to.
type Analyzer interface {
	Name() string
	Subscriptions() []Subscription
}

// NodeAware analyzers report metrics per declaration.
type NodeAware interface {
	Analyzer
	NodeMetrics(id symbol.ID) Values
}

// ProjectAware analyzers report project-wide metrics.
type ProjectAware interface {
	Analyzer
	ProjectMetrics() Values
}

// Finisher analyzers need a final step once every unit was processed.
type Finisher interface {
	Finish()
}

// Resetter analyzers can drop their results and start over.
type Resetter interface {
	Reset()
}

// Values maps metric names to values.
type Values map[string]float64

// Keys returns the metric names in sorted order.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge copies other into v, overwriting equal names.
func (v Values) Merge(other Values) {
	for k, val := range other {
		v[k] = val
	}
}
