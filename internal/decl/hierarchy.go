package decl

import (
	"github.com/rouffj/pdepend/internal/errors"
	"github.com/rouffj/pdepend/internal/symbol"
)

func sameType(a, b Type) bool {
	return a.Key() == b.Key()
}

// isSubtype walks the supertype graph breadth-first with a visited set,
// so cyclic or diamond-shaped hierarchies terminate.
func isSubtype(t, other Type) bool {
	if other == nil {
		return false
	}
	seen := map[symbol.Key]bool{t.Key(): true}
	queue := []Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if sameType(cur, other) {
			return true
		}
		for _, s := range cur.supertypes() {
			if !seen[s.Key()] {
				seen[s.Key()] = true
				queue = append(queue, s)
			}
		}
	}
	return false
}

// Ancestors returns the parent-class chain of c, nearest first. The chain
// ends at the first class without a parent, which may be a placeholder.
// A cyclic chain is cut at the first repeated class and reported.
func Ancestors(c *Class) ([]*Class, error) {
	seen := map[symbol.Key]bool{c.Key(): true}
	names := []string{c.QualifiedName()}

	var chain []*Class
	cur := c
	for {
		parent, ok := cur.ParentClass()
		if !ok {
			return chain, nil
		}
		names = append(names, parent.QualifiedName())
		if seen[parent.Key()] {
			return chain, errors.NewCycleError(names)
		}
		seen[parent.Key()] = true
		chain = append(chain, parent)
		cur = parent
	}
}

// CheckHierarchy reports the first cycle reachable through the supertypes
// of t, or nil.
func CheckHierarchy(t Type) error {
	done := make(map[symbol.Key]bool)
	onPath := make(map[symbol.Key]bool)
	var path []string

	var visit func(t Type) error
	visit = func(t Type) error {
		key := t.Key()
		if onPath[key] {
			chain := append(append([]string(nil), path...), t.QualifiedName())
			return errors.NewCycleError(chain)
		}
		if done[key] {
			return nil
		}
		onPath[key] = true
		path = append(path, t.QualifiedName())
		for _, s := range t.supertypes() {
			if err := visit(s); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		onPath[key] = false
		done[key] = true
		return nil
	}
	return visit(t)
}
