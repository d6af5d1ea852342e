package ast

import (
	"errors"
	"fmt"
)

// ErrMaxDepth is returned when a tree is nested deeper than the traverser allows.
var ErrMaxDepth = errors.New("maximum traversal depth exceeded")

// Visitor receives depth-first enter/leave events.
// A non-nil result from Leave replaces the node in its parent.
type Visitor interface {
	Enter(n *Node)
	Leave(n *Node) *Node
}

// TraverseHooks is implemented by visitors that need to know when a
// traversal starts and ends.
type TraverseHooks interface {
	BeforeTraverse(root *Node)
	AfterTraverse(root *Node)
}

// Traverser runs a set of visitors over a tree in a single pass.
type Traverser struct {
	visitors []Visitor
	maxDepth int
}

// TraverserOption configures a Traverser.
type TraverserOption func(*Traverser)

// WithMaxDepth bounds the nesting depth; zero means unlimited.
func WithMaxDepth(depth int) TraverserOption {
	return func(t *Traverser) {
		t.maxDepth = depth
	}
}

// NewTraverser creates a traverser with no visitors.
func NewTraverser(opts ...TraverserOption) *Traverser {
	t := &Traverser{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AddVisitor appends a visitor. Visitors run in the order they were added,
// on enter and on leave.
func (t *Traverser) AddVisitor(v Visitor) {
	t.visitors = append(t.visitors, v)
}

// Traverse walks root and returns it, or its replacement if a visitor
// replaced it on leave.
func (t *Traverser) Traverse(root *Node) (*Node, error) {
	if root == nil {
		return nil, nil
	}
	for _, v := range t.visitors {
		if h, ok := v.(TraverseHooks); ok {
			h.BeforeTraverse(root)
		}
	}

	out, err := t.visit(root, 0)

	for _, v := range t.visitors {
		if h, ok := v.(TraverseHooks); ok {
			h.AfterTraverse(out)
		}
	}
	return out, err
}

func (t *Traverser) visit(n *Node, depth int) (*Node, error) {
	if t.maxDepth > 0 && depth > t.maxDepth {
		return n, fmt.Errorf("%w: %s at line %d", ErrMaxDepth, n.Kind, n.Line)
	}

	for _, v := range t.visitors {
		v.Enter(n)
	}

	for i, child := range n.Children {
		replacement, err := t.visit(child, depth+1)
		if err != nil {
			return n, err
		}
		n.Children[i] = replacement
	}

	current := n
	for _, v := range t.visitors {
		if r := v.Leave(current); r != nil {
			current = r
		}
	}
	return current, nil
}
