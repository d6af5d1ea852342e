// Package coupling computes afferent and efferent coupling between types
// and the call statistics of a project.
package coupling

import (
	"strings"

	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/decl"
	"github.com/rouffj/pdepend/internal/metrics"
	"github.com/rouffj/pdepend/internal/phpparser"
	"github.com/rouffj/pdepend/internal/registry"
	"github.com/rouffj/pdepend/internal/symbol"
)

// Name identifies the analyzer in configuration and reports.
const Name = "coupling"

// Metric names.
const (
	Calls  = "calls"
	Fanout = "fanout"
	CA     = "ca"
	CBO    = "cbo"
	CE     = "ce"
)

// frame is the declaration references are currently attributed to: the
// compilation unit, a function or a type.
type frame struct {
	id  symbol.ID
	typ decl.Type
}

// Analyzer implements metrics.NodeAware and metrics.ProjectAware.
type Analyzer struct {
	reg *registry.Registry

	frames  []frame
	invokes []map[string]bool

	afferent map[symbol.ID]map[symbol.ID]bool
	efferent map[symbol.ID]map[symbol.ID]bool

	calls  int
	fanout int
}

// New creates a coupling analyzer resolving type names through reg.
func New(reg *registry.Registry) *Analyzer {
	a := &Analyzer{reg: reg}
	a.Reset()
	return a
}

func (a *Analyzer) Name() string { return Name }

// Reset drops all results.
func (a *Analyzer) Reset() {
	a.frames = nil
	a.invokes = nil
	a.afferent = make(map[symbol.ID]map[symbol.ID]bool)
	a.efferent = make(map[symbol.ID]map[symbol.ID]bool)
	a.calls = 0
	a.fanout = 0
}

// Subscriptions implements metrics.Analyzer.
func (a *Analyzer) Subscriptions() []metrics.Subscription {
	var subs []metrics.Subscription
	subs = append(subs, metrics.OnCompilationUnit(a.enterUnit, a.leaveUnit)...)
	subs = append(subs, metrics.OnClass(a.enterType, a.leaveFrame)...)
	subs = append(subs, metrics.OnInterface(a.enterType, a.leaveFrame)...)
	subs = append(subs, metrics.OnFunction(a.enterFunction, a.leaveFunction)...)
	subs = append(subs, metrics.OnMethod(a.enterMethod, a.leaveMethod)...)
	subs = append(subs, metrics.OnProperty(a.enterProperty, nil)...)
	subs = append(subs, metrics.OnNode(ast.KindCatch, a.enterCatch, nil)...)
	for _, k := range []ast.Kind{ast.KindNew, ast.KindInstanceof, ast.KindStaticPropertyFetch, ast.KindClassConstFetch} {
		subs = append(subs, metrics.OnNode(k, a.enterTypeRef, nil)...)
	}
	subs = append(subs, metrics.OnNode(ast.KindStaticCall, a.enterStaticCall, nil)...)
	subs = append(subs, metrics.OnNode(ast.KindFuncCall, a.enterCall, nil)...)
	subs = append(subs, metrics.OnNode(ast.KindMethodCall, a.enterCall, nil)...)
	return subs
}

// NodeMetrics implements metrics.NodeAware. cbo equals ce: every efferent
// type is a coupled object.
func (a *Analyzer) NodeMetrics(id symbol.ID) metrics.Values {
	if _, ok := a.afferent[id]; !ok {
		return metrics.Values{}
	}
	ce := float64(len(a.efferent[id]))
	return metrics.Values{
		CA:  float64(len(a.afferent[id])),
		CBO: ce,
		CE:  ce,
	}
}

// ProjectMetrics implements metrics.ProjectAware.
func (a *Analyzer) ProjectMetrics() metrics.Values {
	return metrics.Values{Calls: float64(a.calls), Fanout: float64(a.fanout)}
}

func (a *Analyzer) push(f frame) {
	a.frames = append(a.frames, f)
}

func (a *Analyzer) pop() {
	if len(a.frames) > 0 {
		a.frames = a.frames[:len(a.frames)-1]
	}
}

func (a *Analyzer) current() (frame, bool) {
	if len(a.frames) == 0 {
		return frame{}, false
	}
	return a.frames[len(a.frames)-1], true
}

func (a *Analyzer) enterUnit(n *ast.Node, acc any) any {
	a.frames = a.frames[:0]
	a.invokes = a.invokes[:0]
	a.push(frame{id: symbol.ID(n.Attr(symbol.AttrID))})
	return acc
}

func (a *Analyzer) leaveUnit(_ *ast.Node, acc any) any {
	a.frames = a.frames[:0]
	a.invokes = a.invokes[:0]
	return acc
}

func (a *Analyzer) enterType(n *ast.Node, acc any) any {
	t, ok := decl.TypeOf(n)
	if !ok {
		return acc
	}
	a.init(t.ID())
	a.push(frame{id: t.ID(), typ: t})
	return acc
}

func (a *Analyzer) leaveFrame(n *ast.Node, acc any) any {
	if n.Decl != nil {
		a.pop()
	}
	return acc
}

func (a *Analyzer) enterFunction(n *ast.Node, acc any) any {
	f, ok := decl.FunctionOf(n)
	if !ok {
		return acc
	}
	a.push(frame{id: f.ID()})
	a.coupleCallable(f)
	a.invokes = append(a.invokes, map[string]bool{})
	return acc
}

func (a *Analyzer) leaveFunction(n *ast.Node, acc any) any {
	if n.Decl == nil {
		return acc
	}
	a.countInvokes()
	a.pop()
	return acc
}

func (a *Analyzer) enterMethod(n *ast.Node, acc any) any {
	m, ok := decl.MethodOf(n)
	if !ok {
		return acc
	}
	a.coupleCallable(m)
	a.invokes = append(a.invokes, map[string]bool{})
	return acc
}

func (a *Analyzer) leaveMethod(n *ast.Node, acc any) any {
	if n.Decl != nil {
		a.countInvokes()
	}
	return acc
}

func (a *Analyzer) countInvokes() {
	if len(a.invokes) == 0 {
		return
	}
	a.calls += len(a.invokes[len(a.invokes)-1])
	a.invokes = a.invokes[:len(a.invokes)-1]
}

func (a *Analyzer) enterProperty(n *ast.Node, acc any) any {
	if p, ok := decl.PropertyOf(n); ok {
		if t, ok := p.Type(); ok {
			a.couple(t)
		}
	}
	return acc
}

func (a *Analyzer) enterCatch(n *ast.Node, acc any) any {
	types := n.Attr(phpparser.AttrTypes)
	if types == "" {
		a.coupleName(n.TypeRef)
		return acc
	}
	for _, name := range strings.Split(types, "|") {
		a.coupleName(name)
	}
	return acc
}

func (a *Analyzer) enterTypeRef(n *ast.Node, acc any) any {
	a.coupleName(n.TypeRef)
	return acc
}

func (a *Analyzer) enterStaticCall(n *ast.Node, acc any) any {
	a.coupleName(n.TypeRef)
	a.invoke(n.TypeRef + "::" + n.Attr(phpparser.AttrCallee))
	return acc
}

func (a *Analyzer) enterCall(n *ast.Node, acc any) any {
	callee := n.Attr(phpparser.AttrCallee)
	if n.Kind == ast.KindMethodCall {
		callee = n.Attr(phpparser.AttrObject) + "->" + callee
	}
	a.invoke(callee)
	return acc
}

// invoke records a call in the innermost callable body. Calls outside any
// callable are not counted.
func (a *Analyzer) invoke(signature string) {
	if len(a.invokes) == 0 {
		return
	}
	a.invokes[len(a.invokes)-1][strings.ToLower(signature)] = true
}

func (a *Analyzer) coupleCallable(c decl.Callable) {
	if t, ok := c.ReturnType(); ok {
		a.couple(t)
	}
	for _, t := range c.ThrownExceptions() {
		a.couple(t)
	}
	for _, t := range c.ParameterTypes() {
		a.couple(t)
	}
}

func (a *Analyzer) coupleName(name string) {
	if name == "" {
		return
	}
	a.couple(decl.ResolveType(a.reg, name))
}

// couple records that the current frame depends on t. References within
// the hierarchy of the current type are not coupling.
func (a *Analyzer) couple(t decl.Type) {
	cur, ok := a.current()
	if t == nil || !ok || cur.id == "" {
		return
	}
	if cur.typ != nil && (t.IsSubtypeOf(cur.typ) || cur.typ.IsSubtypeOf(t)) {
		return
	}

	aff := t.ID()
	a.init(aff)
	if !a.afferent[aff][cur.id] {
		a.afferent[aff][cur.id] = true
		a.fanout++
	}
	if cur.typ != nil {
		a.efferent[cur.id][aff] = true
	}
}

func (a *Analyzer) init(id symbol.ID) {
	if _, ok := a.afferent[id]; ok {
		return
	}
	a.afferent[id] = make(map[symbol.ID]bool)
	a.efferent[id] = make(map[symbol.ID]bool)
}
