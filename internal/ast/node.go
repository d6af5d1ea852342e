// Package ast defines the language-neutral syntax tree the analyzer core
// works on. Parsers produce it, the decoration pass annotates it and the
// metrics processor walks it.
package ast

// Declaration is the decoration attached to a declaration node once the
// decoration pass has run.
type Declaration interface {
	Syntax() *Node
}

// Node is one element of a syntax tree.
type Node struct {
	Kind           Kind              `json:"kind"`
	Name           string            `json:"name,omitempty"`
	NamespacedName string            `json:"qname,omitempty"`
	Line           int               `json:"line,omitempty"`
	EndLine        int               `json:"end_line,omitempty"`
	DocComment     string            `json:"doc,omitempty"`
	Modifiers      Modifier          `json:"mods,omitempty"`
	Extends        []string          `json:"extends,omitempty"`
	Implements     []string          `json:"implements,omitempty"`
	TypeRef        string            `json:"type,omitempty"`
	ReturnType     string            `json:"return_type,omitempty"`
	Children       []*Node           `json:"children,omitempty"`
	Attributes     map[string]string `json:"attrs,omitempty"`

	Decl Declaration `json:"-"`
}

// Attr returns the attribute stored under key, or "".
func (n *Node) Attr(key string) string {
	if n.Attributes == nil {
		return ""
	}
	return n.Attributes[key]
}

// SetAttr stores an attribute, allocating the side table on first use.
func (n *Node) SetAttr(key, value string) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]string, 4)
	}
	n.Attributes[key] = value
}

// ChildrenOf returns the direct children with the given kind.
func (n *Node) ChildrenOf(kind Kind) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// CompilationUnit is the tree of one source file.
type CompilationUnit struct {
	File        string `json:"file"`
	ContentHash uint64 `json:"content_hash"`
	Root        *Node  `json:"root"`
}

// Walk visits n and its descendants depth-first. Either callback may be nil.
func Walk(n *Node, enter, leave func(*Node)) {
	if n == nil {
		return
	}
	if enter != nil {
		enter(n)
	}
	for _, c := range n.Children {
		Walk(c, enter, leave)
	}
	if leave != nil {
		leave(n)
	}
}
