package decorate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/decl"
	"github.com/rouffj/pdepend/internal/registry"
	"github.com/rouffj/pdepend/internal/symbol"
)

func class(name, doc string, children ...*ast.Node) *ast.Node {
	return &ast.Node{Kind: ast.KindClass, Name: name, NamespacedName: name, DocComment: doc, Children: children}
}

func unit(file string, children ...*ast.Node) *ast.CompilationUnit {
	return &ast.CompilationUnit{File: file, Root: &ast.Node{Kind: ast.KindCompilationUnit, Children: children}}
}

func decorate(t *testing.T, reg *registry.Registry, u *ast.CompilationUnit) {
	t.Helper()
	require.NoError(t, NewPass(reg).Decorate(u))
}

func TestPackageFallbackCarriesWithinFile(t *testing.T) {
	reg := registry.New()
	foo := class("Foo", "/** @package bar */")
	baz := class("Baz", "")
	helper := &ast.Node{Kind: ast.KindFunction, Name: "helper", NamespacedName: "helper"}
	decorate(t, reg, unit("/src/a.php", foo, baz, helper))

	assert.Equal(t, "bar", foo.Attr(decl.AttrNamespace))
	assert.Equal(t, "bar", baz.Attr(decl.AttrNamespace))
	assert.Equal(t, "bar", helper.Attr(decl.AttrNamespace))

	c, ok := decl.LookupClass(reg, "Baz")
	require.True(t, ok)
	ns := c.Namespace()
	assert.Equal(t, "bar", ns.Name)
	assert.True(t, ns.IsSynthetic())
	assert.True(t, ns.IsUserDefined())

	// the fallback does not leak into the next file
	qux := class("Qux", "")
	decorate(t, reg, unit("/src/b.php", qux))
	assert.Equal(t, symbol.GlobalNamespace, qux.Attr(decl.AttrNamespace))
}

func TestLaterPackageTagReplacesFallback(t *testing.T) {
	reg := registry.New()
	a := class("A", "/** @package one */")
	b := class("B", "/** @package two */")
	c := class("C", "")
	decorate(t, reg, unit("/src/a.php", a, b, c))

	assert.Equal(t, "one", a.Attr(decl.AttrNamespace))
	assert.Equal(t, "two", b.Attr(decl.AttrNamespace))
	assert.Equal(t, "two", c.Attr(decl.AttrNamespace))
}

func TestExplicitNamespaceWins(t *testing.T) {
	reg := registry.New()
	tagged := class(`App\Tagged`, "/** @package ignored */")
	tagged.Name = "Tagged"
	ns := &ast.Node{Kind: ast.KindNamespace, Name: "App", Children: []*ast.Node{tagged}}
	after := class("After", "")
	u := unit("/src/a.php", ns, after)
	decorate(t, reg, u)

	assert.Equal(t, "App", tagged.Attr(decl.AttrNamespace))
	// the tag inside an explicit namespace never becomes the fallback
	assert.Equal(t, symbol.GlobalNamespace, after.Attr(decl.AttrNamespace))

	explicit, ok := decl.LookupNamespace(reg, "App")
	require.True(t, ok)
	assert.False(t, explicit.IsSynthetic())
	assert.Equal(t, symbol.ID("App#n"), explicit.ID())
}

func TestSynthesizedNamespacesWrapDeclarations(t *testing.T) {
	reg := registry.New()
	foo := class("Foo", "")
	fn := &ast.Node{Kind: ast.KindFunction, Name: "run", NamespacedName: "run"}
	u := unit("/src/a.php", foo, fn)
	decorate(t, reg, u)

	require.Len(t, u.Root.Children, 2)
	for i, want := range []*ast.Node{foo, fn} {
		wrapper := u.Root.Children[i]
		assert.Equal(t, ast.KindNamespace, wrapper.Kind)
		assert.Equal(t, symbol.GlobalNamespace, wrapper.Name)
		assert.Equal(t, "true", wrapper.Attr(decl.AttrSynthetic))
		assert.Equal(t, symbol.GlobalNamespace+"#n", wrapper.Attr(symbol.AttrID))
		require.Len(t, wrapper.Children, 1)
		assert.Same(t, want, wrapper.Children[0])
	}

	f, ok := decl.LookupFunction(reg, "run")
	require.True(t, ok)
	assert.Equal(t, symbol.GlobalNamespace, f.Namespace().Name)
}

func TestMembersAreDecorated(t *testing.T) {
	reg := registry.New()
	method := &ast.Node{Kind: ast.KindMethod, Name: "handle", DocComment: "/** @throws Failure */"}
	prop := &ast.Node{Kind: ast.KindProperty, Name: "queue", DocComment: "/** @var Queue */"}
	iface := &ast.Node{Kind: ast.KindInterface, Name: "Handler", NamespacedName: `App\Handler`,
		Children: []*ast.Node{{Kind: ast.KindMethod, Name: "handle"}}}
	worker := class(`App\Worker`, "", prop, method)
	worker.Name = "Worker"
	worker.Implements = []string{`App\Handler`}
	ns := &ast.Node{Kind: ast.KindNamespace, Name: "App", Children: []*ast.Node{iface, worker}}
	decorate(t, reg, unit("/src/worker.php", ns))

	m, ok := decl.LookupMethod(reg, `App\Worker`, "handle")
	require.True(t, ok)
	owner, ok := m.DeclaringType()
	require.True(t, ok)
	assert.Equal(t, `App\Worker`, owner.QualifiedName())
	require.Len(t, m.ThrownExceptions(), 1)
	assert.Equal(t, `App\Failure`, m.ThrownExceptions()[0].QualifiedName())
	assert.False(t, m.ThrownExceptions()[0].IsUserDefined())
	assert.Equal(t, "App", m.Namespace().Name)

	p, ok := decl.LookupProperty(reg, `App\Worker`, "queue")
	require.True(t, ok)
	typ, ok := p.Type()
	require.True(t, ok)
	assert.Equal(t, `App\Queue`, typ.QualifiedName())

	im, ok := decl.LookupMethod(reg, `App\Handler`, "handle")
	require.True(t, ok)
	owner, ok = im.DeclaringType()
	require.True(t, ok)
	_, isIface := owner.(*decl.Interface)
	assert.True(t, isIface)

	w, ok := decl.LookupClass(reg, `App\Worker`)
	require.True(t, ok)
	h, ok := decl.LookupInterface(reg, `App\Handler`)
	require.True(t, ok)
	assert.True(t, w.IsSubtypeOf(h))
}

func TestTraitMembersAreOpaque(t *testing.T) {
	reg := registry.New()
	trait := &ast.Node{Kind: ast.KindTrait, Name: "Greets", Children: []*ast.Node{
		{Kind: ast.KindMethod, Name: "hi"},
		{Kind: ast.KindProperty, Name: "greeting"},
	}}
	decorate(t, reg, unit("/src/trait.php", trait))
	assert.Zero(t, reg.Len())
}

func TestNestedDeclarationsKeepOuterScope(t *testing.T) {
	reg := registry.New()
	helper := &ast.Node{Kind: ast.KindFunction, Name: "helper", NamespacedName: "helper"}
	one := &ast.Node{Kind: ast.KindMethod, Name: "one", Children: []*ast.Node{
		class("Inner", "", &ast.Node{Kind: ast.KindMethod, Name: "run"}),
		helper,
		{Kind: ast.KindAnonymousClass, Children: []*ast.Node{{Kind: ast.KindMethod, Name: "extra"}}},
	}}
	two := &ast.Node{Kind: ast.KindMethod, Name: "two"}
	u := unit("/src/outer.php", class("Outer", "", one, two))
	decorate(t, reg, u)

	for _, m := range [][2]string{{"Outer", "one"}, {"Outer", "two"}, {"Inner", "run"}} {
		_, ok := decl.LookupMethod(reg, m[0], m[1])
		assert.True(t, ok, m)
	}
	for _, m := range [][2]string{{"Outer", "run"}, {"Outer", "extra"}, {"Inner", "two"}} {
		_, ok := decl.LookupMethod(reg, m[0], m[1])
		assert.False(t, ok, m)
	}
	_, ok := decl.LookupFunction(reg, "helper")
	assert.True(t, ok)
	assert.Empty(t, reg.Duplicates())

	// only the top-level class is wrapped
	require.Len(t, u.Root.Children, 1)
	assert.Equal(t, ast.KindNamespace, u.Root.Children[0].Kind)
	assert.Same(t, helper, one.Children[1])
	assert.Equal(t, ast.KindClass, one.Children[0].Kind)
}

func TestDecorationIsDeterministic(t *testing.T) {
	build := func() *ast.CompilationUnit {
		return unit("/src/a.php",
			&ast.Node{Kind: ast.KindNamespace, Name: "App", Children: []*ast.Node{
				class(`App\A`, "", &ast.Node{Kind: ast.KindMethod, Name: "x"}),
			}},
		)
	}
	first, second := build(), build()
	decorate(t, registry.New(), first)
	decorate(t, registry.New(), second)

	var a, b []string
	ast.Walk(first.Root, func(n *ast.Node) { a = append(a, n.Attr(symbol.AttrID)) }, nil)
	ast.Walk(second.Root, func(n *ast.Node) { b = append(b, n.Attr(symbol.AttrID)) }, nil)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a[0])
}

func TestBarExtendsFooAcrossFiles(t *testing.T) {
	reg := registry.New()
	bar := class("Bar", "")
	bar.Extends = []string{"Foo"}
	decorate(t, reg, unit("/src/bar.php", bar))

	b, ok := decl.LookupClass(reg, "Bar")
	require.True(t, ok)
	parent, ok := b.ParentClass()
	require.True(t, ok)
	assert.False(t, parent.IsUserDefined())

	decorate(t, reg, unit("/src/foo.php", class("Foo", "")))
	parent, ok = b.ParentClass()
	require.True(t, ok)
	assert.True(t, parent.IsUserDefined())
}

func TestMaxDepth(t *testing.T) {
	deep := &ast.Node{Kind: ast.KindOther}
	cur := deep
	for i := 0; i < 10; i++ {
		next := &ast.Node{Kind: ast.KindOther}
		cur.Children = []*ast.Node{next}
		cur = next
	}
	err := NewPass(registry.New(), WithMaxDepth(3)).Decorate(unit("/src/deep.php", deep))
	require.Error(t, err)
	assert.ErrorIs(t, err, ast.ErrMaxDepth)
}
