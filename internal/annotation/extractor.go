package annotation

import (
	"strings"

	"github.com/rouffj/pdepend/internal/ast"
)

// AttrThrows is where the extractor stores documented exception types.
const AttrThrows = "throws"

// Extractor is a visitor that fills in types the source only documents:
// @return on callables, @var on properties and @throws on callables.
// Native type declarations always win over documented ones.
type Extractor struct {
	*Scope
}

// NewExtractor creates an extractor for one file.
func NewExtractor() *Extractor {
	return &Extractor{Scope: NewScope()}
}

// BeforeTraverse resets the name context.
func (x *Extractor) BeforeTraverse(*ast.Node) {
	x.Reset()
}

// AfterTraverse implements ast.TraverseHooks.
func (x *Extractor) AfterTraverse(*ast.Node) {}

// Enter implements ast.Visitor.
func (x *Extractor) Enter(n *ast.Node) {
	switch n.Kind {
	case ast.KindNamespace:
		x.EnterNamespace(n.Name)
	case ast.KindUse:
		// the parser already rejected conflicting aliases
		_ = x.Alias(n.Name, n.TypeRef)
	case ast.KindClass, ast.KindInterface, ast.KindTrait, ast.KindEnum, ast.KindAnonymousClass:
		x.PushType(n)
	case ast.KindFunction, ast.KindMethod:
		if n.ReturnType == "" {
			if doc, ok := Tag(n.DocComment, "return"); ok {
				n.ReturnType = x.resolveDoc(doc)
			}
		}
		if n.Attr(AttrThrows) == "" {
			var throws []string
			for _, doc := range Tags(n.DocComment, "throws") {
				if name := x.resolveDoc(doc); name != "" {
					throws = append(throws, name)
				}
			}
			if len(throws) > 0 {
				n.SetAttr(AttrThrows, strings.Join(throws, "|"))
			}
		}
	case ast.KindProperty:
		if n.TypeRef == "" {
			if doc, ok := Tag(n.DocComment, "var"); ok {
				n.TypeRef = x.resolveDoc(doc)
			}
		}
	}
}

// Leave implements ast.Visitor.
func (x *Extractor) Leave(n *ast.Node) *ast.Node {
	switch n.Kind {
	case ast.KindNamespace:
		x.EnterNamespace("")
	case ast.KindClass, ast.KindInterface, ast.KindTrait, ast.KindEnum, ast.KindAnonymousClass:
		x.PopType()
	}
	return nil
}

func (x *Extractor) resolveDoc(doc string) string {
	name, ok := TypeName(doc)
	if !ok {
		return ""
	}
	return x.Resolve(name)
}
