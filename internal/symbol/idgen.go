package symbol

import (
	"strings"

	"github.com/rouffj/pdepend/internal/ast"
)

// AttrID is the attribute key under which identifiers are stored on nodes.
const AttrID = "id"

// IDGenerator assigns identifiers to declaration nodes of one file.
// It keeps a stack of scope fragments seeded with the file fingerprint and
// writes the joined stack to the node on leave.
type IDGenerator struct {
	fingerprint string
	stack       []string
	opaque      int
}

// NewIDGenerator creates a generator for the given file path.
func NewIDGenerator(file string) *IDGenerator {
	fp := Fingerprint(file)
	return &IDGenerator{fingerprint: fp, stack: []string{fp}}
}

// BeforeTraverse resets the scope stack so a generator can be reused.
func (g *IDGenerator) BeforeTraverse(*ast.Node) {
	g.stack = append(g.stack[:0], g.fingerprint)
	g.opaque = 0
}

// AfterTraverse implements ast.TraverseHooks.
func (g *IDGenerator) AfterTraverse(*ast.Node) {}

// Enter implements ast.Visitor.
func (g *IDGenerator) Enter(n *ast.Node) {
	if g.opaque > 0 {
		if n.Kind.IsOpaque() {
			g.opaque++
		}
		return
	}

	switch n.Kind {
	case ast.KindCompilationUnit:
		n.SetAttr(AttrID, g.fingerprint)
	case ast.KindNamespace:
		g.push(n.Name)
	case ast.KindClass, ast.KindInterface:
		g.push(`\` + n.Name)
	case ast.KindProperty:
		g.push("$" + n.Name)
	case ast.KindMethod:
		g.push("::" + n.Name + "()")
	case ast.KindFunction:
		g.push(`\` + n.Name + "()")
	case ast.KindTrait, ast.KindEnum, ast.KindAnonymousClass:
		g.opaque++
	}
}

// Leave implements ast.Visitor.
func (g *IDGenerator) Leave(n *ast.Node) *ast.Node {
	if g.opaque > 0 {
		if n.Kind.IsOpaque() {
			g.opaque--
		}
		return nil
	}

	switch n.Kind {
	case ast.KindNamespace:
		// namespaces are never nested, so their id is the name itself
		g.pop()
		n.SetAttr(AttrID, n.Name+KindNamespace.Suffix())
	case ast.KindClass, ast.KindInterface, ast.KindProperty, ast.KindMethod, ast.KindFunction:
		kind, _ := KindOf(n.Kind)
		n.SetAttr(AttrID, Sanitize(strings.Join(g.stack, "|"))+kind.Suffix())
		g.pop()
	}
	return nil
}

func (g *IDGenerator) push(fragment string) {
	g.stack = append(g.stack, fragment)
}

func (g *IDGenerator) pop() {
	if len(g.stack) > 1 {
		g.stack = g.stack[:len(g.stack)-1]
	}
}
