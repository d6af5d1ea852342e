package annotation

import (
	"fmt"
	"strings"

	"github.com/rouffj/pdepend/internal/ast"
)

// Scope is the name context of one position in a file: the active
// namespace, its use aliases and the enclosing type declarations.
type Scope struct {
	namespace string
	aliases   map[string]string
	types     []*ast.Node
}

// NewScope returns an empty global scope.
func NewScope() *Scope {
	return &Scope{aliases: make(map[string]string)}
}

// Namespace returns the active namespace name, "" in the global namespace.
func (s *Scope) Namespace() string {
	return s.namespace
}

// EnterNamespace switches to name and forgets all aliases.
func (s *Scope) EnterNamespace(name string) {
	s.namespace = name
	s.aliases = make(map[string]string)
}

// Reset returns to the global namespace with no aliases and no types.
func (s *Scope) Reset() {
	s.EnterNamespace("")
	s.types = s.types[:0]
}

// Alias imports target under alias. Aliases are case-insensitive; binding
// an alias twice to different targets fails.
func (s *Scope) Alias(alias, target string) error {
	target = strings.TrimPrefix(target, `\`)
	key := strings.ToLower(alias)
	if prev, ok := s.aliases[key]; ok && !strings.EqualFold(prev, target) {
		return fmt.Errorf("cannot use %s as %s because the name is already in use", target, alias)
	}
	s.aliases[key] = target
	return nil
}

// PushType enters a class-like declaration.
func (s *Scope) PushType(n *ast.Node) {
	s.types = append(s.types, n)
}

// PopType leaves the innermost class-like declaration.
func (s *Scope) PopType() {
	if len(s.types) > 0 {
		s.types = s.types[:len(s.types)-1]
	}
}

// CurrentType returns the innermost class-like declaration, or nil.
func (s *Scope) CurrentType() *ast.Node {
	if len(s.types) == 0 {
		return nil
	}
	return s.types[len(s.types)-1]
}

// Qualify prefixes a declared name with the active namespace.
func (s *Scope) Qualify(name string) string {
	if s.namespace == "" {
		return name
	}
	return s.namespace + `\` + name
}

// Resolve qualifies a class name against the current namespace and use
// aliases, the way PHP resolves names in code. self, static and parent
// resolve to "" outside a class.
func (s *Scope) Resolve(name string) string {
	switch strings.ToLower(name) {
	case "self", "static":
		if t := s.CurrentType(); t != nil {
			return t.NamespacedName
		}
		return ""
	case "parent":
		if t := s.CurrentType(); t != nil && len(t.Extends) > 0 {
			return t.Extends[0]
		}
		return ""
	case "":
		return ""
	}

	if strings.HasPrefix(name, `\`) {
		return name[1:]
	}
	if rest, ok := strings.CutPrefix(name, `namespace\`); ok {
		return s.Qualify(rest)
	}

	first, rest, qualified := strings.Cut(name, `\`)
	if target, ok := s.aliases[strings.ToLower(first)]; ok {
		if qualified {
			return target + `\` + rest
		}
		return target
	}
	return s.Qualify(name)
}
