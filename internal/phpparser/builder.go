package phpparser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/rouffj/pdepend/internal/annotation"
	"github.com/rouffj/pdepend/internal/ast"
	pderrors "github.com/rouffj/pdepend/internal/errors"
)

// Attribute keys set by the parser.
const (
	AttrCallee  = "callee"
	AttrObject  = "object"
	AttrDefault = "default"
	AttrTypes   = "types"
)

type builder struct {
	file  string
	src   []byte
	scope *annotation.Scope
	err   error
}

func newBuilder(file string, src []byte) *builder {
	return &builder{file: file, src: src, scope: annotation.NewScope()}
}

func (b *builder) fail(n *tree_sitter.Node, err error) {
	if b.err != nil {
		return
	}
	pos := n.StartPosition()
	b.err = pderrors.NewParseError(b.file, int(pos.Row)+1, int(pos.Column)+1, b.text(n), err)
}

func (b *builder) text(n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(b.src)
}

// name returns the text of a name node with any whitespace removed.
func (b *builder) name(n *tree_sitter.Node) string {
	return strings.Join(strings.Fields(b.text(n)), "")
}

func (b *builder) node(kind ast.Kind, n *tree_sitter.Node) *ast.Node {
	return &ast.Node{
		Kind:    kind,
		Line:    int(n.StartPosition().Row) + 1,
		EndLine: int(n.EndPosition().Row) + 1,
	}
}

// program builds the unit root. Unbraced namespace declarations own every
// following statement up to the next namespace declaration.
func (b *builder) program(root *tree_sitter.Node) *ast.Node {
	unit := b.node(ast.KindCompilationUnit, root)
	unit.Line = 1

	var current *ast.Node
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		if child.Kind() == "namespace_definition" {
			current = nil
			ns, hoisted := b.namespace(child)
			unit.Children = append(unit.Children, hoisted...)
			if ns == nil {
				continue
			}
			unit.Children = append(unit.Children, ns)
			if child.ChildByFieldName("body") == nil {
				current = ns
			}
			continue
		}

		built := b.build(child)
		if current != nil {
			current.Children = append(current.Children, built...)
			current.EndLine = int(child.EndPosition().Row) + 1
		} else {
			unit.Children = append(unit.Children, built...)
		}
	}
	return unit
}

// namespace builds a namespace declaration. The statements of a braced
// declaration without a name belong to the global namespace and are
// returned as hoisted instead.
func (b *builder) namespace(n *tree_sitter.Node) (*ast.Node, []*ast.Node) {
	name := b.name(n.ChildByFieldName("name"))
	b.scope.EnterNamespace(name)

	body := n.ChildByFieldName("body")
	if name == "" {
		if body == nil {
			return nil, nil
		}
		return nil, b.children(body)
	}

	ns := b.node(ast.KindNamespace, n)
	ns.Name = name
	ns.DocComment = b.docComment(n)
	if body != nil {
		ns.Children = b.children(body)
		b.scope.EnterNamespace("")
	}
	return ns, nil
}

func (b *builder) children(n *tree_sitter.Node) []*ast.Node {
	var out []*ast.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil && c.IsNamed() {
			out = append(out, b.build(c)...)
		}
	}
	return out
}

func one(n *ast.Node) []*ast.Node {
	return []*ast.Node{n}
}

func (b *builder) build(n *tree_sitter.Node) []*ast.Node {
	switch n.Kind() {
	case "comment", "name", "qualified_name", "variable_name", "php_tag", "text_interpolation":
		return nil
	case "namespace_definition":
		// only reachable for malformed nesting; treat it like the top level
		ns, hoisted := b.namespace(n)
		if ns != nil {
			return append(hoisted, ns)
		}
		return hoisted
	case "namespace_use_declaration":
		return b.uses(n)
	case "class_declaration":
		return one(b.classLike(n, ast.KindClass))
	case "interface_declaration":
		return one(b.classLike(n, ast.KindInterface))
	case "trait_declaration":
		return one(b.classLike(n, ast.KindTrait))
	case "enum_declaration":
		return one(b.classLike(n, ast.KindEnum))
	case "anonymous_class":
		return one(b.anonymousClass(n))
	case "method_declaration":
		return one(b.method(n))
	case "function_definition":
		return one(b.function(n))
	case "property_declaration":
		return b.properties(n)
	case "simple_parameter", "variadic_parameter", "property_promotion_parameter":
		return one(b.parameter(n))
	case "if_statement":
		return one(b.statement(ast.KindIf, n))
	case "else_if_clause":
		return one(b.statement(ast.KindElseIf, n))
	case "for_statement":
		return one(b.statement(ast.KindFor, n))
	case "foreach_statement":
		return one(b.statement(ast.KindForeach, n))
	case "while_statement":
		return one(b.statement(ast.KindWhile, n))
	case "do_statement":
		return one(b.statement(ast.KindDo, n))
	case "switch_statement":
		return one(b.statement(ast.KindSwitch, n))
	case "case_statement":
		return one(b.statement(ast.KindCase, n))
	case "default_statement":
		c := b.statement(ast.KindCase, n)
		c.SetAttr(AttrDefault, "true")
		return one(c)
	case "try_statement":
		return one(b.statement(ast.KindTry, n))
	case "catch_clause":
		return one(b.catch(n))
	case "return_statement":
		return one(b.statement(ast.KindReturn, n))
	case "throw_expression", "throw_statement":
		return one(b.statement(ast.KindThrow, n))
	case "object_creation_expression":
		return one(b.creation(n))
	case "binary_expression":
		return b.binary(n)
	case "conditional_expression":
		return one(b.statement(ast.KindTernary, n))
	case "scoped_call_expression":
		return one(b.scoped(ast.KindStaticCall, n, n.ChildByFieldName("scope"), n.ChildByFieldName("name")))
	case "scoped_property_access_expression":
		return one(b.scoped(ast.KindStaticPropertyFetch, n, n.ChildByFieldName("scope"), n.ChildByFieldName("name")))
	case "class_constant_access_expression":
		return one(b.scoped(ast.KindClassConstFetch, n, n.NamedChild(0), n.NamedChild(1)))
	case "function_call_expression":
		call := b.statement(ast.KindFuncCall, n)
		call.SetAttr(AttrCallee, b.name(n.ChildByFieldName("function")))
		return one(call)
	case "member_call_expression", "nullsafe_member_call_expression":
		call := b.statement(ast.KindMethodCall, n)
		call.SetAttr(AttrCallee, b.name(n.ChildByFieldName("name")))
		if obj := n.ChildByFieldName("object"); obj != nil && obj.Kind() == "variable_name" {
			call.SetAttr(AttrObject, b.name(obj))
		}
		return one(call)
	}
	return b.children(n)
}

// statement maps n to kind and builds everything below it.
func (b *builder) statement(kind ast.Kind, n *tree_sitter.Node) *ast.Node {
	out := b.node(kind, n)
	out.Children = b.children(n)
	return out
}

func (b *builder) docComment(n *tree_sitter.Node) string {
	prev := n.PrevSibling()
	if prev == nil || prev.Kind() != "comment" {
		return ""
	}
	if text := b.text(prev); strings.HasPrefix(text, "/**") {
		return text
	}
	return ""
}
