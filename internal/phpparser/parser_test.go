package phpparser

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rouffj/pdepend/internal/ast"
	pderrors "github.com/rouffj/pdepend/internal/errors"
)

func parse(t *testing.T, src string) *ast.CompilationUnit {
	t.Helper()
	p, err := New()
	require.NoError(t, err)
	t.Cleanup(p.Close)

	unit, err := p.Parse("/src/test.php", []byte(src))
	require.NoError(t, err)
	require.NotNil(t, unit)
	return unit
}

func collect(root *ast.Node, kind ast.Kind) []*ast.Node {
	var out []*ast.Node
	ast.Walk(root, func(n *ast.Node) {
		if n.Kind == kind {
			out = append(out, n)
		}
	}, nil)
	return out
}

func TestParseClassHierarchy(t *testing.T) {
	unit := parse(t, `<?php
namespace App\Model;

use Vendor\Base as BaseModel;
use Vendor\Contracts\{Jsonable, Arrayable};

/**
 * A user.
 */
abstract class User extends BaseModel implements Jsonable, Arrayable, \Countable
{
    private ?Profile $profile;
    protected $a, $b;

    public function __construct(Profile $profile, int $age) {}

    abstract protected function name(): string;

    public static function make(): self
    {
        return new static(new Profile(), 3);
    }
}

interface Named extends Jsonable, \Stringable
{
    public function name(): string;
}
`)
	assert.Equal(t, "/src/test.php", unit.File)
	assert.NotZero(t, unit.ContentHash)

	namespaces := collect(unit.Root, ast.KindNamespace)
	require.Len(t, namespaces, 1)
	ns := namespaces[0]
	assert.Equal(t, `App\Model`, ns.Name)

	uses := collect(unit.Root, ast.KindUse)
	require.Len(t, uses, 3)
	assert.Equal(t, "BaseModel", uses[0].Name)
	assert.Equal(t, `Vendor\Base`, uses[0].TypeRef)
	assert.Equal(t, "Jsonable", uses[1].Name)
	assert.Equal(t, `Vendor\Contracts\Jsonable`, uses[1].TypeRef)

	classes := collect(unit.Root, ast.KindClass)
	require.Len(t, classes, 1)
	user := classes[0]
	assert.Equal(t, "User", user.Name)
	assert.Equal(t, `App\Model\User`, user.NamespacedName)
	assert.Equal(t, []string{`Vendor\Base`}, user.Extends)
	assert.Equal(t, []string{`Vendor\Contracts\Jsonable`, `Vendor\Contracts\Arrayable`, "Countable"}, user.Implements)
	assert.True(t, user.Modifiers.Has(ast.ModAbstract))
	assert.Contains(t, user.DocComment, "A user.")
	assert.Equal(t, 10, user.Line)

	props := collect(user, ast.KindProperty)
	require.Len(t, props, 3)
	assert.Equal(t, "profile", props[0].Name)
	assert.Equal(t, `App\Model\Profile`, props[0].TypeRef)
	assert.True(t, props[0].Modifiers.Has(ast.ModPrivate))
	assert.Equal(t, "a", props[1].Name)
	assert.Equal(t, "b", props[2].Name)
	assert.True(t, props[2].Modifiers.Has(ast.ModProtected))

	methods := collect(user, ast.KindMethod)
	require.Len(t, methods, 3)
	ctor := methods[0]
	assert.Equal(t, "__construct", ctor.Name)
	assert.True(t, ctor.Modifiers.Has(ast.ModPublic))
	params := ctor.ChildrenOf(ast.KindParameter)
	require.Len(t, params, 2)
	assert.Equal(t, `App\Model\Profile`, params[0].TypeRef)
	assert.Empty(t, params[1].TypeRef)

	assert.True(t, methods[1].Modifiers.Has(ast.ModAbstract|ast.ModProtected))
	assert.Empty(t, methods[1].ReturnType)

	factory := methods[2]
	assert.True(t, factory.Modifiers.Has(ast.ModStatic))
	assert.Equal(t, `App\Model\User`, factory.ReturnType)
	news := collect(factory, ast.KindNew)
	require.Len(t, news, 2)
	assert.Equal(t, `App\Model\User`, news[0].TypeRef)
	assert.Equal(t, `App\Model\Profile`, news[1].TypeRef)

	ifaces := collect(unit.Root, ast.KindInterface)
	require.Len(t, ifaces, 1)
	assert.Equal(t, []string{`Vendor\Contracts\Jsonable`, "Stringable"}, ifaces[0].Extends)
	ifaceMethods := collect(ifaces[0], ast.KindMethod)
	require.Len(t, ifaceMethods, 1)
	assert.True(t, ifaceMethods[0].Modifiers.Has(ast.ModAbstract))
}

func TestParseUnbracedNamespacesOwnFollowingStatements(t *testing.T) {
	unit := parse(t, `<?php
namespace First;
class A {}
function helper() {}

namespace Second;
class B extends \First\A {}
`)
	require.Len(t, unit.Root.Children, 2)
	first, second := unit.Root.Children[0], unit.Root.Children[1]
	assert.Equal(t, "First", first.Name)
	require.Len(t, first.Children, 2)
	assert.Equal(t, `First\A`, first.Children[0].NamespacedName)
	assert.Equal(t, ast.KindFunction, first.Children[1].Kind)
	assert.Equal(t, `First\helper`, first.Children[1].NamespacedName)

	assert.Equal(t, "Second", second.Name)
	require.Len(t, second.Children, 1)
	assert.Equal(t, []string{`First\A`}, second.Children[0].Extends)
}

func TestParseBracedNamespaces(t *testing.T) {
	unit := parse(t, `<?php
namespace Lib {
    class Thing {}
}
namespace {
    class GlobalThing extends Lib\Thing {}
}
`)
	require.Len(t, unit.Root.Children, 2)
	assert.Equal(t, ast.KindNamespace, unit.Root.Children[0].Kind)
	global := unit.Root.Children[1]
	assert.Equal(t, ast.KindClass, global.Kind)
	assert.Equal(t, "GlobalThing", global.NamespacedName)
	assert.Equal(t, []string{`Lib\Thing`}, global.Extends)
}

func TestParseControlFlow(t *testing.T) {
	unit := parse(t, `<?php
function check($a, $b) {
    if ($a && $b || $a and $b) {
        return 1;
    } elseif ($a) {
        return 2;
    }
    for ($i = 0; $i < 3; $i++) {}
    foreach ([1] as $x) {}
    while (false) {}
    do {} while (false);
    switch ($a) {
        case 1:
            break;
        default:
            break;
    }
    try {
        throw new \RuntimeException();
    } catch (\LogicException | \RuntimeException $e) {
    }
    return $a ? $b : null;
}
`)
	fns := collect(unit.Root, ast.KindFunction)
	require.Len(t, fns, 1)
	fn := fns[0]

	counts := map[ast.Kind]int{}
	ast.Walk(fn, func(n *ast.Node) { counts[n.Kind]++ }, nil)

	assert.Equal(t, 1, counts[ast.KindIf])
	assert.Equal(t, 1, counts[ast.KindElseIf])
	assert.Equal(t, 1, counts[ast.KindFor])
	assert.Equal(t, 1, counts[ast.KindForeach])
	assert.Equal(t, 1, counts[ast.KindWhile])
	assert.Equal(t, 1, counts[ast.KindDo])
	assert.Equal(t, 1, counts[ast.KindSwitch])
	assert.Equal(t, 2, counts[ast.KindCase])
	assert.Equal(t, 1, counts[ast.KindTry])
	assert.Equal(t, 1, counts[ast.KindCatch])
	assert.Equal(t, 1, counts[ast.KindThrow])
	assert.Equal(t, 1, counts[ast.KindTernary])
	assert.Equal(t, 1, counts[ast.KindBooleanAnd])
	assert.Equal(t, 1, counts[ast.KindBooleanOr])
	assert.Equal(t, 1, counts[ast.KindLogicalAnd])
	assert.Equal(t, 3, counts[ast.KindReturn])
	assert.Equal(t, 2, counts[ast.KindParameter])

	cases := collect(fn, ast.KindCase)
	assert.Empty(t, cases[0].Attr(AttrDefault))
	assert.Equal(t, "true", cases[1].Attr(AttrDefault))

	catch := collect(fn, ast.KindCatch)[0]
	assert.Equal(t, "LogicException", catch.TypeRef)
	assert.Equal(t, "LogicException|RuntimeException", catch.Attr(AttrTypes))
}

func TestParseExpressionReferences(t *testing.T) {
	unit := parse(t, `<?php
namespace App;

use Lib\Registry;

class Service extends Base
{
    public function run($x)
    {
        Registry::get('a');
        parent::run($x);
        $y = Registry::$instance;
        $z = Registry::VERSION;
        $ok = $x instanceof Registry;
        $this->helper();
        strlen('a');
    }
}
`)
	run := collect(unit.Root, ast.KindMethod)[0]

	calls := collect(run, ast.KindStaticCall)
	require.Len(t, calls, 2)
	assert.Equal(t, `Lib\Registry`, calls[0].TypeRef)
	assert.Equal(t, "get", calls[0].Attr(AttrCallee))
	assert.Equal(t, `App\Base`, calls[1].TypeRef)

	fetches := collect(run, ast.KindStaticPropertyFetch)
	require.Len(t, fetches, 1)
	assert.Equal(t, `Lib\Registry`, fetches[0].TypeRef)
	assert.Equal(t, "instance", fetches[0].Attr(AttrCallee))

	consts := collect(run, ast.KindClassConstFetch)
	require.Len(t, consts, 1)
	assert.Equal(t, `Lib\Registry`, consts[0].TypeRef)

	inst := collect(run, ast.KindInstanceof)
	require.Len(t, inst, 1)
	assert.Equal(t, `Lib\Registry`, inst[0].TypeRef)

	methodCalls := collect(run, ast.KindMethodCall)
	require.Len(t, methodCalls, 1)
	assert.Equal(t, "helper", methodCalls[0].Attr(AttrCallee))

	funcCalls := collect(run, ast.KindFuncCall)
	require.Len(t, funcCalls, 1)
	assert.Equal(t, "strlen", funcCalls[0].Attr(AttrCallee))
}

func TestParseTraitsAndEnumsAreKept(t *testing.T) {
	unit := parse(t, `<?php
trait Greets { public function hi() {} }
enum Suit { case Hearts; }
`)
	assert.Len(t, collect(unit.Root, ast.KindTrait), 1)
	assert.Len(t, collect(unit.Root, ast.KindEnum), 1)
}

func TestParseAnonymousClass(t *testing.T) {
	unit := parse(t, `<?php
class Outer {
    function make() {
        return new class extends \Base implements \Countable {
            function count(): int { return 0; }
        };
    }
}
`)
	anon := collect(unit.Root, ast.KindAnonymousClass)
	require.Len(t, anon, 1)
	assert.Equal(t, []string{"Base"}, anon[0].Extends)
	assert.Equal(t, []string{"Countable"}, anon[0].Implements)
	assert.Len(t, collect(anon[0], ast.KindMethod), 1)

	classes := collect(unit.Root, ast.KindClass)
	require.Len(t, classes, 1)
	assert.Len(t, collect(classes[0], ast.KindMethod), 2)
}

func TestParseSyntaxError(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Parse("/src/broken.php", []byte("<?php\nclass {\n"))
	require.Error(t, err)

	var perr *pderrors.ParseError
	require.True(t, stderrors.As(err, &perr))
	assert.Equal(t, "/src/broken.php", perr.FilePath)
	assert.Positive(t, perr.Line)
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestParseConflictingAlias(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Parse("/src/alias.php", []byte("<?php\nuse A\\Thing;\nuse B\\Thing;\n"))
	var perr *pderrors.ParseError
	require.True(t, stderrors.As(err, &perr))
	assert.Equal(t, 3, perr.Line)
}

func TestParseClosedParser(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	p.Close()
	p.Close()

	_, err = p.Parse("/src/a.php", []byte("<?php"))
	assert.Error(t, err)
}

func TestParseIsDeterministic(t *testing.T) {
	src := `<?php namespace A; class B { public function c() { if (1) {} } }`
	first := parse(t, src)
	second := parse(t, src)
	assert.Equal(t, first, second)
}
