package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// GitignoreParser matches paths against the patterns of a .gitignore file.
// Matching is delegated to go-gitignore; the parser keeps the raw lines so
// patterns can be added after loading.
type GitignoreParser struct {
	lines    []string
	compiled *ignore.GitIgnore
}

// NewGitignoreParser creates a new gitignore parser
func NewGitignoreParser() *GitignoreParser {
	return &GitignoreParser{}
}

// LoadGitignore loads patterns from rootPath/.gitignore. A missing file is
// not an error.
func (gp *GitignoreParser) LoadGitignore(rootPath string) error {
	file, err := os.Open(filepath.Join(rootPath, ".gitignore"))
	if err != nil {
		return nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		gp.lines = append(gp.lines, line)
	}
	gp.compiled = nil
	return scanner.Err()
}

// AddPattern adds a single pattern line.
func (gp *GitignoreParser) AddPattern(line string) {
	gp.lines = append(gp.lines, line)
	gp.compiled = nil
}

// Len returns the number of loaded patterns.
func (gp *GitignoreParser) Len() int {
	return len(gp.lines)
}

// ShouldIgnore reports whether the slash-separated path relative to the
// root is ignored. Directory-only patterns match a directory only when
// isDir is set, and match every path below it.
func (gp *GitignoreParser) ShouldIgnore(path string, isDir bool) bool {
	if len(gp.lines) == 0 {
		return false
	}
	if gp.compiled == nil {
		gp.compiled = ignore.CompileIgnoreLines(gp.lines...)
	}

	path = filepath.ToSlash(path)
	if isDir && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return gp.compiled.MatchesPath(path)
}
