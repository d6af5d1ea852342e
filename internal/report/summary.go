// Package report turns an analysis result into a summary tree and writes
// it as text, JSON or XML.
package report

import (
	"sort"

	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/decl"
	"github.com/rouffj/pdepend/internal/engine"
	"github.com/rouffj/pdepend/internal/metrics"
	"github.com/rouffj/pdepend/internal/symbol"
	"github.com/rouffj/pdepend/internal/version"
)

// Summary is the report of one run.
type Summary struct {
	Generator  string          `json:"generator"`
	Files      int             `json:"files"`
	Metrics    metrics.Values  `json:"metrics"`
	Namespaces []*NamespaceSum `json:"namespaces"`
	Errors     []string        `json:"errors,omitempty"`
}

// NamespaceSum groups the declarations of one namespace across files.
type NamespaceSum struct {
	ID        symbol.ID      `json:"id"`
	Name      string         `json:"name"`
	Metrics   metrics.Values `json:"metrics,omitempty"`
	Types     []*TypeSum     `json:"types,omitempty"`
	Functions []*NodeSum     `json:"functions,omitempty"`
}

// TypeSum is one class or interface.
type TypeSum struct {
	NodeSum
	Kind    string     `json:"kind"`
	Methods []*NodeSum `json:"methods,omitempty"`
}

// NodeSum is a measured declaration.
type NodeSum struct {
	ID      symbol.ID      `json:"id"`
	Name    string         `json:"name"`
	File    string         `json:"file"`
	Line    int            `json:"line,omitempty"`
	Metrics metrics.Values `json:"metrics,omitempty"`
}

// Build collects the summary of res. Namespaces, types and functions are
// sorted by name; methods keep declaration order.
func Build(res *engine.Result) *Summary {
	s := &Summary{
		Generator: "pdepend " + version.Info(),
		Files:     len(res.Units),
		Metrics:   res.ProjectMetrics(),
	}
	for _, err := range res.ParseErrors {
		s.Errors = append(s.Errors, err.Error())
	}
	for _, d := range res.Duplicates {
		s.Errors = append(s.Errors, d.Error())
	}
	for _, c := range res.Cycles {
		s.Errors = append(s.Errors, c.Error())
	}

	byID := make(map[symbol.ID]*NamespaceSum)
	for _, unit := range res.Units {
		collectUnit(res, unit, byID)
	}

	for _, ns := range byID {
		sort.Slice(ns.Types, func(i, j int) bool { return ns.Types[i].Name < ns.Types[j].Name })
		sort.Slice(ns.Functions, func(i, j int) bool { return ns.Functions[i].Name < ns.Functions[j].Name })
		s.Namespaces = append(s.Namespaces, ns)
	}
	sort.Slice(s.Namespaces, func(i, j int) bool { return s.Namespaces[i].Name < s.Namespaces[j].Name })
	return s
}

func collectUnit(res *engine.Result, unit *ast.CompilationUnit, byID map[symbol.ID]*NamespaceSum) {
	// one entry per enclosing namespace or type node, nil when undeclared
	var nss []*NamespaceSum
	var types []*TypeSum
	top := func() (*NamespaceSum, *TypeSum) {
		var ns *NamespaceSum
		var typ *TypeSum
		if len(nss) > 0 {
			ns = nss[len(nss)-1]
		}
		if len(types) > 0 {
			typ = types[len(types)-1]
		}
		return ns, typ
	}

	ast.Walk(unit.Root, func(n *ast.Node) {
		ns, typ := top()
		switch n.Kind {
		case ast.KindNamespace:
			d, ok := decl.NamespaceOf(n)
			if !ok {
				nss = append(nss, ns)
				return
			}
			id := d.ID()
			if byID[id] == nil {
				byID[id] = &NamespaceSum{ID: id, Name: d.Name, Metrics: res.NodeMetrics(id)}
			}
			nss = append(nss, byID[id])
		case ast.KindClass, ast.KindInterface:
			t, ok := decl.TypeOf(n)
			if !ok || ns == nil {
				types = append(types, nil)
				return
			}
			typ = &TypeSum{NodeSum: nodeSum(res, unit, t.ID(), t.QualifiedName(), n), Kind: kindName(n.Kind)}
			ns.Types = append(ns.Types, typ)
			types = append(types, typ)
		case ast.KindMethod:
			m, ok := decl.MethodOf(n)
			if !ok || typ == nil {
				return
			}
			s := nodeSum(res, unit, m.ID(), m.Name, n)
			typ.Methods = append(typ.Methods, &s)
		case ast.KindFunction:
			f, ok := decl.FunctionOf(n)
			if !ok || ns == nil {
				return
			}
			s := nodeSum(res, unit, f.ID(), f.QualifiedName(), n)
			ns.Functions = append(ns.Functions, &s)
		}
	}, func(n *ast.Node) {
		switch n.Kind {
		case ast.KindNamespace:
			nss = nss[:len(nss)-1]
		case ast.KindClass, ast.KindInterface:
			types = types[:len(types)-1]
		}
	})
}

func nodeSum(res *engine.Result, unit *ast.CompilationUnit, id symbol.ID, name string, n *ast.Node) NodeSum {
	return NodeSum{
		ID:      id,
		Name:    name,
		File:    unit.File,
		Line:    n.Line,
		Metrics: res.NodeMetrics(id),
	}
}

func kindName(k ast.Kind) string {
	if k == ast.KindInterface {
		return "interface"
	}
	return "class"
}
