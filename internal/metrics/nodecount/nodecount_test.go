package nodecount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/metrics"
	"github.com/rouffj/pdepend/internal/symbol"
)

func node(kind ast.Kind, id string, children ...*ast.Node) *ast.Node {
	n := &ast.Node{Kind: kind, Children: children}
	if id != "" {
		n.SetAttr(symbol.AttrID, id)
	}
	return n
}

func run(t *testing.T, units ...*ast.CompilationUnit) *Analyzer {
	t.Helper()
	a := New()
	p := metrics.NewProcessor()
	p.Register(a)
	for _, u := range units {
		require.NoError(t, p.Process(u))
	}
	p.Finish()
	return a
}

func TestCounts(t *testing.T) {
	first := &ast.CompilationUnit{Root: node(ast.KindCompilationUnit, "fp",
		node(ast.KindNamespace, "App#n",
			node(ast.KindClass, "fp|A#c",
				node(ast.KindMethod, "fp|A|::a()#m"),
				node(ast.KindMethod, "fp|A|::b()#m"),
				node(ast.KindProperty, "fp|A|$p#p"),
			),
			node(ast.KindInterface, "fp|I#i", node(ast.KindMethod, "fp|I|::x()#m")),
			node(ast.KindFunction, "fp|f()#f"),
			node(ast.KindTrait, "", node(ast.KindMethod, "")),
		),
	)}
	second := &ast.CompilationUnit{Root: node(ast.KindCompilationUnit, "fq",
		node(ast.KindNamespace, "App#n", node(ast.KindClass, "fq|B#c")),
		node(ast.KindNamespace, "+global#n", node(ast.KindFunction, "fq|g()#f")),
	)}
	a := run(t, first, second)

	assert.Equal(t, metrics.Values{"nop": 2, "noc": 2, "noi": 1, "nom": 3, "nof": 2}, a.ProjectMetrics())
	assert.Equal(t, metrics.Values{"noc": 2, "noi": 1, "nom": 3, "nof": 1}, a.NodeMetrics("App#n"))
	assert.Equal(t, metrics.Values{"noc": 0, "noi": 0, "nom": 0, "nof": 1}, a.NodeMetrics("+global#n"))
	assert.Equal(t, metrics.Values{"nom": 2}, a.NodeMetrics("fp|A#c"))
	assert.Equal(t, metrics.Values{"nom": 1}, a.NodeMetrics("fp|I#i"))
	assert.Equal(t, metrics.Values{"nom": 0}, a.NodeMetrics("fq|B#c"))
}

func TestUnknownNode(t *testing.T) {
	a := New()
	assert.NotNil(t, a.NodeMetrics("nope"))
	assert.Empty(t, a.NodeMetrics("nope"))
}

func TestReset(t *testing.T) {
	a := run(t, &ast.CompilationUnit{Root: node(ast.KindCompilationUnit, "fp",
		node(ast.KindNamespace, "A#n", node(ast.KindClass, "fp|X#c")))})
	assert.Equal(t, 1.0, a.ProjectMetrics()[NumberOfClasses])
	a.Reset()
	assert.Zero(t, a.ProjectMetrics()[NumberOfClasses])
	assert.Empty(t, a.NodeMetrics("A#n"))
}

func TestNestedScopesRestoreOuterCounts(t *testing.T) {
	u := &ast.CompilationUnit{Root: node(ast.KindCompilationUnit, "fp",
		node(ast.KindNamespace, "App#n",
			node(ast.KindClass, "fp|Outer#c",
				node(ast.KindMethod, "fp|Outer|::one()#m",
					node(ast.KindNamespace, "App#n", node(ast.KindFunction, "fp|helper()#f")),
				),
				node(ast.KindMethod, "fp|Outer|::two()#m",
					node(ast.KindClass, "fp|Inner#c", node(ast.KindMethod, "fp|Inner|::run()#m")),
				),
				node(ast.KindMethod, "fp|Outer|::three()#m"),
			),
		),
	)}
	a := run(t, u)

	assert.Equal(t, metrics.Values{"nom": 3}, a.NodeMetrics("fp|Outer#c"))
	assert.Equal(t, metrics.Values{"nom": 1}, a.NodeMetrics("fp|Inner#c"))
	assert.Equal(t, metrics.Values{"nop": 1, "noc": 2, "noi": 0, "nom": 4, "nof": 1}, a.ProjectMetrics())
}
