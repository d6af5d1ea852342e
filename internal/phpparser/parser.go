// Package phpparser turns PHP source into the analyzer's syntax tree using
// tree-sitter. Only constructs the analyzers care about are kept; every
// other grammar node is transparent and its mapped descendants are hoisted
// into the nearest mapped ancestor.
package phpparser

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"

	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/debug"
	pderrors "github.com/rouffj/pdepend/internal/errors"
)

// ErrSyntax is wrapped by the ParseError returned for malformed source.
var ErrSyntax = errors.New("syntax error")

// Extensions lists the file extensions handled by the parser.
var Extensions = []string{".php", ".phtml", ".inc"}

// Parser wraps a tree-sitter parser configured for PHP. A Parser is not
// safe for concurrent use; create one per worker.
type Parser struct {
	mu     sync.Mutex
	parser *tree_sitter.Parser
}

// New creates a PHP parser.
func New() (*Parser, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP())
	if err := parser.SetLanguage(language); err != nil {
		parser.Close()
		return nil, fmt.Errorf("set php language: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.parser != nil {
		p.parser.Close()
		p.parser = nil
	}
}

// Parse builds the compilation unit of one file. Source that does not
// parse cleanly yields a *errors.ParseError pointing at the first broken
// node.
func (p *Parser) Parse(file string, src []byte) (unit *ast.CompilationUnit, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.parser == nil {
		return nil, pderrors.NewFileError("parse", file, errors.New("parser is closed"))
	}

	defer func() {
		if r := recover(); r != nil {
			debug.LogParse("TREE-SITTER PANIC in file %s: %v", file, r)
			unit, err = nil, pderrors.NewParseError(file, 0, 0, "", fmt.Errorf("%w: %v", ErrSyntax, r))
		}
	}()

	// tree-sitter may touch the buffer through cgo; keep the caller's copy intact
	buf := make([]byte, len(src))
	copy(buf, src)

	tree := p.parser.Parse(buf, nil)
	if tree == nil {
		return nil, pderrors.NewParseError(file, 0, 0, "", ErrSyntax)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(file, buf, root)
	}

	b := newBuilder(file, buf)
	unit = &ast.CompilationUnit{
		File:        file,
		ContentHash: xxhash.Sum64(src),
		Root:        b.program(root),
	}
	if b.err != nil {
		return nil, b.err
	}
	debug.LogParse("parsed %s (%d top-level nodes)", file, len(unit.Root.Children))
	return unit, nil
}

func syntaxError(file string, src []byte, root *tree_sitter.Node) error {
	broken := firstBroken(root)
	if broken == nil {
		broken = root
	}
	pos := broken.StartPosition()
	token := broken.Kind()
	if !broken.IsMissing() {
		token = broken.Utf8Text(src)
		if len(token) > 32 {
			token = token[:32]
		}
	}
	return pderrors.NewParseError(file, int(pos.Row)+1, int(pos.Column)+1, token, ErrSyntax)
}

func firstBroken(n *tree_sitter.Node) *tree_sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if c := n.Child(i); c != nil {
			if found := firstBroken(c); found != nil {
				return found
			}
		}
	}
	return nil
}
