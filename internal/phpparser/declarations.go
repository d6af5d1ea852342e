package phpparser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/rouffj/pdepend/internal/annotation"
	"github.com/rouffj/pdepend/internal/ast"
)

func (b *builder) classLike(n *tree_sitter.Node, kind ast.Kind) *ast.Node {
	out := b.node(kind, n)
	out.Name = b.name(n.ChildByFieldName("name"))
	out.NamespacedName = b.scope.Qualify(out.Name)
	out.DocComment = b.docComment(n)
	out.Modifiers = b.modifiers(n)

	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "base_clause":
			out.Extends = b.typeNames(child)
		case "class_interface_clause":
			out.Implements = b.typeNames(child)
		}
	}

	b.scope.PushType(out)
	if body := n.ChildByFieldName("body"); body != nil {
		out.Children = b.children(body)
	}
	b.scope.PopType()
	return out
}

func (b *builder) method(n *tree_sitter.Node) *ast.Node {
	out := b.node(ast.KindMethod, n)
	out.Name = b.name(n.ChildByFieldName("name"))
	out.DocComment = b.docComment(n)
	out.Modifiers = b.modifiers(n)
	if out.Modifiers&(ast.ModPrivate|ast.ModProtected|ast.ModPublic) == 0 {
		out.Modifiers |= ast.ModPublic
	}
	if t := b.scope.CurrentType(); t != nil && t.Kind == ast.KindInterface {
		out.Modifiers |= ast.ModAbstract
	}
	out.ReturnType = b.typeName(n.ChildByFieldName("return_type"))
	out.Children = b.children(n)
	return out
}

func (b *builder) function(n *tree_sitter.Node) *ast.Node {
	out := b.node(ast.KindFunction, n)
	out.Name = b.name(n.ChildByFieldName("name"))
	out.NamespacedName = b.scope.Qualify(out.Name)
	out.DocComment = b.docComment(n)
	out.ReturnType = b.typeName(n.ChildByFieldName("return_type"))
	out.Children = b.children(n)
	return out
}

// properties yields one node per declared property; `public $a, $b;`
// declares two.
func (b *builder) properties(n *tree_sitter.Node) []*ast.Node {
	doc := b.docComment(n)
	mods := b.modifiers(n)
	if mods&(ast.ModPrivate|ast.ModProtected|ast.ModPublic) == 0 {
		mods |= ast.ModPublic
	}
	typ := b.typeName(n.ChildByFieldName("type"))

	var out []*ast.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		elem := n.NamedChild(i)
		if elem.Kind() != "property_element" {
			continue
		}
		name := elem.ChildByFieldName("name")
		if name == nil {
			name = childOfKind(elem, "variable_name")
		}
		prop := b.node(ast.KindProperty, elem)
		prop.Name = strings.TrimPrefix(b.name(name), "$")
		prop.DocComment = doc
		prop.Modifiers = mods
		prop.TypeRef = typ
		prop.Children = b.children(elem)
		out = append(out, prop)
	}
	return out
}

func (b *builder) parameter(n *tree_sitter.Node) *ast.Node {
	out := b.node(ast.KindParameter, n)
	out.Name = strings.TrimPrefix(b.name(n.ChildByFieldName("name")), "$")
	out.TypeRef = b.typeName(n.ChildByFieldName("type"))
	if n.Kind() == "property_promotion_parameter" {
		out.Modifiers = b.modifiers(n)
	}
	out.Children = b.children(n)
	return out
}

// uses yields one node per imported class alias. Function and constant
// imports do not name types and are dropped.
func (b *builder) uses(n *tree_sitter.Node) []*ast.Node {
	prefix := ""
	var out []*ast.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "function", "const":
			return nil
		case "namespace_name":
			prefix = b.name(child)
		case "namespace_use_clause":
			if use := b.useClause(child, ""); use != nil {
				out = append(out, use)
			}
		case "namespace_use_group":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				clause := child.NamedChild(j)
				switch clause.Kind() {
				case "namespace_use_clause", "namespace_use_group_clause":
					if use := b.useClause(clause, prefix); use != nil {
						out = append(out, use)
					}
				}
			}
		}
	}
	return out
}

func (b *builder) useClause(n *tree_sitter.Node, prefix string) *ast.Node {
	for i := uint(0); i < n.ChildCount(); i++ {
		if k := n.Child(i).Kind(); k == "function" || k == "const" {
			return nil
		}
	}

	var target, alias string
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "name", "qualified_name", "namespace_name":
			if target == "" {
				target = b.name(child)
			}
		}
	}
	if target == "" {
		return nil
	}
	if a := n.ChildByFieldName("alias"); a != nil {
		alias = b.name(a)
	} else {
		for i := uint(0); i+1 < n.ChildCount(); i++ {
			if n.Child(i).Kind() == "as" {
				alias = b.name(n.Child(i + 1))
				break
			}
		}
	}
	if prefix != "" {
		target = strings.TrimSuffix(prefix, `\`) + `\` + strings.TrimPrefix(target, `\`)
	}
	target = strings.TrimPrefix(target, `\`)
	if alias == "" {
		alias = target[strings.LastIndex(target, `\`)+1:]
	}

	if err := b.scope.Alias(alias, target); err != nil {
		b.fail(n, err)
	}
	use := b.node(ast.KindUse, n)
	use.Name = alias
	use.TypeRef = target
	return use
}

func (b *builder) catch(n *tree_sitter.Node) *ast.Node {
	out := b.node(ast.KindCatch, n)
	var types []string
	if t := n.ChildByFieldName("type"); t != nil {
		types = b.typeNames(t)
	} else if t := childOfKind(n, "type_list"); t != nil {
		types = b.typeNames(t)
	}
	if len(types) > 0 {
		out.TypeRef = types[0]
		out.SetAttr(AttrTypes, strings.Join(types, "|"))
	}
	out.Children = b.children(n)
	return out
}

func (b *builder) creation(n *tree_sitter.Node) *ast.Node {
	out := b.node(ast.KindNew, n)
	for i := uint(0); i < n.NamedChildCount(); i++ {
		// older grammars inline the anonymous class body
		if n.NamedChild(i).Kind() == "declaration_list" {
			out.Children = one(b.anonymousClass(n))
			return out
		}
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if k := child.Kind(); k == "name" || k == "qualified_name" || k == "relative_scope" {
			out.TypeRef = b.typeName(child)
			break
		}
	}
	out.Children = b.children(n)
	return out
}

// anonymousClass builds the opaque node of `new class ... {}`. Its members
// stay in the tree for complexity and coupling but are never declared.
func (b *builder) anonymousClass(n *tree_sitter.Node) *ast.Node {
	out := b.node(ast.KindAnonymousClass, n)
	var body *tree_sitter.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		switch child.Kind() {
		case "base_clause":
			out.Extends = b.typeNames(child)
		case "class_interface_clause":
			out.Implements = b.typeNames(child)
		case "arguments":
			out.Children = append(out.Children, b.children(child)...)
		case "declaration_list":
			body = child
		}
	}

	b.scope.PushType(out)
	if body != nil {
		out.Children = append(out.Children, b.children(body)...)
	}
	b.scope.PopType()
	return out
}

var logicalOperators = map[string]ast.Kind{
	"&&":         ast.KindBooleanAnd,
	"||":         ast.KindBooleanOr,
	"and":        ast.KindLogicalAnd,
	"or":         ast.KindLogicalOr,
	"instanceof": ast.KindInstanceof,
}

// binary maps boolean operators and instanceof. Other operators are
// transparent.
func (b *builder) binary(n *tree_sitter.Node) []*ast.Node {
	op := n.ChildByFieldName("operator")
	if op == nil && n.ChildCount() > 1 {
		op = n.Child(1)
	}
	if op == nil {
		return b.children(n)
	}
	kind, ok := logicalOperators[strings.ToLower(op.Kind())]
	if !ok {
		return b.children(n)
	}
	out := b.statement(kind, n)
	if kind == ast.KindInstanceof {
		out.TypeRef = b.typeName(n.ChildByFieldName("right"))
	}
	return one(out)
}

func (b *builder) scoped(kind ast.Kind, n, scope, member *tree_sitter.Node) *ast.Node {
	out := b.statement(kind, n)
	out.TypeRef = b.typeName(scope)
	if member != nil {
		out.SetAttr(AttrCallee, strings.TrimPrefix(b.name(member), "$"))
	}
	return out
}

// typeName resolves the first class type named by a type or name node.
// Scalar and pseudo types resolve to "".
func (b *builder) typeName(n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind() {
	case "name", "qualified_name", "relative_scope", "relative_name":
		raw := b.name(n)
		if annotation.IsScalar(raw) {
			return ""
		}
		return b.scope.Resolve(raw)
	case "named_type", "optional_type", "union_type", "intersection_type",
		"disjunctive_normal_form_type", "type_list":
		for i := uint(0); i < n.NamedChildCount(); i++ {
			if t := b.typeName(n.NamedChild(i)); t != "" {
				return t
			}
		}
	}
	return ""
}

// typeNames resolves every class type listed directly below n.
func (b *builder) typeNames(n *tree_sitter.Node) []string {
	var out []string
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if t := b.typeName(n.NamedChild(i)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (b *builder) modifiers(n *tree_sitter.Node) ast.Modifier {
	var mods ast.Modifier
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "visibility_modifier":
			switch strings.ToLower(b.text(child)) {
			case "public":
				mods |= ast.ModPublic
			case "protected":
				mods |= ast.ModProtected
			case "private":
				mods |= ast.ModPrivate
			}
		case "var_modifier":
			mods |= ast.ModPublic
		case "static_modifier":
			mods |= ast.ModStatic
		case "abstract_modifier":
			mods |= ast.ModAbstract
		case "final_modifier":
			mods |= ast.ModFinal
		}
	}
	return mods
}

func childOfKind(n *tree_sitter.Node, kind string) *tree_sitter.Node {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if c := n.NamedChild(i); c != nil && c.Kind() == kind {
			return c
		}
	}
	return nil
}
