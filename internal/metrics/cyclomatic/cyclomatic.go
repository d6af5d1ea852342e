// Package cyclomatic computes the cyclomatic complexity of functions and
// methods.
//
// ccn counts the branches of control statements; ccn2 additionally counts
// every boolean operator.
package cyclomatic

import (
	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/metrics"
	"github.com/rouffj/pdepend/internal/phpparser"
	"github.com/rouffj/pdepend/internal/symbol"
)

// Name identifies the analyzer in configuration and reports.
const Name = "cyclomatic"

// Metric names.
const (
	CCN  = "ccn"
	CCN2 = "ccn2"
)

// counter is the accumulator threaded through one callable body. outer is
// the accumulator of the enclosing callable, restored on leave.
type counter struct {
	ccn, ccn2 int
	outer     any
}

// Analyzer implements metrics.NodeAware and metrics.ProjectAware.
type Analyzer struct {
	nodes     map[symbol.ID]metrics.Values
	ccn, ccn2 int
}

// New creates a cyclomatic complexity analyzer.
func New() *Analyzer {
	a := &Analyzer{}
	a.Reset()
	return a
}

func (a *Analyzer) Name() string { return Name }

// Reset drops all results.
func (a *Analyzer) Reset() {
	a.nodes = make(map[symbol.ID]metrics.Values)
	a.ccn, a.ccn2 = 0, 0
}

// Subscriptions implements metrics.Analyzer.
func (a *Analyzer) Subscriptions() []metrics.Subscription {
	var subs []metrics.Subscription
	subs = append(subs, metrics.OnFunction(enterCallable, a.leaveCallable)...)
	subs = append(subs, metrics.OnMethod(enterCallable, a.leaveCallable)...)
	for _, k := range []ast.Kind{
		ast.KindIf, ast.KindElseIf, ast.KindFor, ast.KindForeach, ast.KindWhile,
		ast.KindDo, ast.KindCatch, ast.KindTernary,
	} {
		subs = append(subs, metrics.OnNode(k, branch, nil)...)
	}
	subs = append(subs, metrics.OnNode(ast.KindCase, caseBranch, nil)...)
	for _, k := range []ast.Kind{ast.KindBooleanAnd, ast.KindBooleanOr, ast.KindLogicalAnd, ast.KindLogicalOr} {
		subs = append(subs, metrics.OnNode(k, operator, nil)...)
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
	return metrics.Values{CCN: float64(a.ccn), CCN2: float64(a.ccn2)}
}

// CCN returns the ccn of a callable, 0 when unknown.
func (a *Analyzer) CCN(id symbol.ID) int {
	return int(a.nodes[id][CCN])
}

// CCN2 returns the ccn2 of a callable, 0 when unknown.
func (a *Analyzer) CCN2(id symbol.ID) int {
	return int(a.nodes[id][CCN2])
}

func enterCallable(_ *ast.Node, acc any) any {
	return &counter{ccn: 1, ccn2: 1, outer: acc}
}

func (a *Analyzer) leaveCallable(n *ast.Node, acc any) any {
	c, ok := acc.(*counter)
	if !ok {
		return acc
	}
	if id := symbol.ID(n.Attr(symbol.AttrID)); id != "" {
		a.nodes[id] = metrics.Values{CCN: float64(c.ccn), CCN2: float64(c.ccn2)}
		a.ccn += c.ccn
		a.ccn2 += c.ccn2
	}
	return c.outer
}

func branch(_ *ast.Node, acc any) any {
	if c, ok := acc.(*counter); ok {
		c.ccn++
		c.ccn2++
	}
	return acc
}

// caseBranch counts case labels; default does not branch.
func caseBranch(n *ast.Node, acc any) any {
	if n.Attr(phpparser.AttrDefault) != "" {
		return acc
	}
	return branch(n, acc)
}

func operator(_ *ast.Node, acc any) any {
	if c, ok := acc.(*counter); ok {
		c.ccn2++
	}
	return acc
}
