// Package symbol defines declaration identifiers, lookup keys and the
// visitor that assigns identifiers while a tree is walked.
package symbol

import (
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/encoding"
)

// Kind is the closed set of declaration kinds that receive identifiers.
type Kind byte

const (
	KindNamespace Kind = 'n'
	KindClass     Kind = 'c'
	KindInterface Kind = 'i'
	KindFunction  Kind = 'f'
	KindMethod    Kind = 'm'
	KindProperty  Kind = 'p'
)

// Suffix returns the "#x" tag appended to identifiers and keys.
func (k Kind) Suffix() string {
	return "#" + string(k)
}

func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindProperty:
		return "property"
	}
	return "unknown"
}

// KindOf maps a syntax kind to its identifier kind.
func KindOf(k ast.Kind) (Kind, bool) {
	switch k {
	case ast.KindNamespace:
		return KindNamespace, true
	case ast.KindClass:
		return KindClass, true
	case ast.KindInterface:
		return KindInterface, true
	case ast.KindFunction:
		return KindFunction, true
	case ast.KindMethod:
		return KindMethod, true
	case ast.KindProperty:
		return KindProperty, true
	}
	return 0, false
}

func kindFromSuffix(s string) (Kind, bool) {
	if len(s) < 2 || s[len(s)-2] != '#' {
		return 0, false
	}
	switch k := Kind(s[len(s)-1]); k {
	case KindNamespace, KindClass, KindInterface, KindFunction, KindMethod, KindProperty:
		return k, true
	}
	return 0, false
}

// GlobalNamespace names the namespace of declarations that have neither an
// explicit namespace nor a package tag.
const GlobalNamespace = "+global"

// ID identifies one declaration within a registry.
// Format: <file-fingerprint>~<scoped-name-path><kind-suffix>, or
// <name>#n for namespaces.
type ID string

// Kind returns the kind encoded in the identifier suffix.
func (id ID) Kind() (Kind, bool) {
	return kindFromSuffix(string(id))
}

// Fingerprint returns the file fingerprint prefix, or "" for identifiers
// that are not tied to a file (namespaces, placeholders).
func (id ID) Fingerprint() string {
	s := string(id)
	sep := strings.IndexByte(s, '|')
	if sep < 0 {
		return ""
	}
	return s[:sep]
}

func (id ID) String() string {
	return string(id)
}

// Fingerprint derives the stable per-file prefix of identifiers: the
// base-63 xxhash of the slash-separated path, "~", and the tail of the
// file's base name.
func Fingerprint(path string) string {
	slashed := filepath.ToSlash(path)
	base := filepath.Base(slashed)
	if len(base) > 30 {
		base = base[len(base)-30:]
	}
	base = strings.ReplaceAll(base, "|", "_")
	return Sanitize(encoding.Base63Encode(xxhash.Sum64String(slashed)) + "~" + base)
}

// FingerprintHash recovers the path hash from a fingerprint.
func FingerprintHash(fingerprint string) (uint64, error) {
	hash, _, _ := strings.Cut(fingerprint, "~")
	return encoding.Base63Decode(hash)
}

// Sanitize strips characters outside [A-Za-z0-9_:().~|] and any leading
// separators.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '_', c == ':', c == '(', c == ')', c == '.', c == '~', c == '|':
			b.WriteByte(c)
		}
	}
	return strings.TrimLeft(b.String(), "|~:.")
}
