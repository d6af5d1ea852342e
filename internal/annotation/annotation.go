// Package annotation reads type information from doc comments.
package annotation

import (
	"regexp"
	"strings"
	"sync"
)

var (
	patternsMu sync.Mutex
	patterns   = map[string]*regexp.Regexp{}
)

func pattern(name string) *regexp.Regexp {
	patternsMu.Lock()
	defer patternsMu.Unlock()

	re, ok := patterns[name]
	if !ok {
		re = regexp.MustCompile(`\*\s*@` + regexp.QuoteMeta(name) + `\s+([^\s\*]+)`)
		patterns[name] = re
	}
	return re
}

// Tags returns the first word after every @name tag in doc.
func Tags(doc, name string) []string {
	if doc == "" || !strings.Contains(doc, "@"+name) {
		return nil
	}
	matches := pattern(name).FindAllStringSubmatch(doc, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// Tag returns the value of the first @name tag in doc.
func Tag(doc, name string) (string, bool) {
	tags := Tags(doc, name)
	if len(tags) == 0 {
		return "", false
	}
	return tags[0], true
}

// Package returns the @package tag of doc.
func Package(doc string) (string, bool) {
	return Tag(doc, "package")
}

var scalarTypes = func() map[string]bool {
	m := make(map[string]bool)
	for _, name := range strings.Fields(`
		array bool boolean callable double false float int integer iterable
		mixed never null number numeric object real resource scalar string
		true void unknown $this`) {
		m[name] = true
	}
	return m
}()

// IsScalar reports whether name is a built-in pseudo or scalar type that
// can never denote a declaration.
func IsScalar(name string) bool {
	name = strings.ToLower(strings.TrimPrefix(name, `\`))
	return scalarTypes[name] || strings.HasSuffix(name, "[]") || strings.HasPrefix(name, "array<")
}

// TypeName picks the first non-scalar member of a documented type such as
// "?Foo" or "Foo|null". It reports false when every member is scalar.
func TypeName(doc string) (string, bool) {
	for _, part := range strings.Split(doc, "|") {
		part = strings.TrimPrefix(strings.TrimSpace(part), "?")
		if part == "" || IsScalar(part) {
			continue
		}
		return part, true
	}
	return "", false
}
