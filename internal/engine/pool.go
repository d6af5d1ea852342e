package engine

import (
	"sync"

	"github.com/rouffj/pdepend/internal/phpparser"
)

// parserPool hands out tree-sitter parsers, one per concurrent worker.
// Parsers are created on demand and closed together with the pool.
type parserPool struct {
	mu   sync.Mutex
	idle []*phpparser.Parser
	all  []*phpparser.Parser
}

func newParserPool(size int) *parserPool {
	return &parserPool{
		idle: make([]*phpparser.Parser, 0, size),
		all:  make([]*phpparser.Parser, 0, size),
	}
}

func (pp *parserPool) get() (*phpparser.Parser, error) {
	pp.mu.Lock()
	defer pp.mu.Unlock()

	if n := len(pp.idle); n > 0 {
		p := pp.idle[n-1]
		pp.idle = pp.idle[:n-1]
		return p, nil
	}
	p, err := phpparser.New()
	if err != nil {
		return nil, err
	}
	pp.all = append(pp.all, p)
	return p, nil
}

func (pp *parserPool) put(p *phpparser.Parser) {
	pp.mu.Lock()
	pp.idle = append(pp.idle, p)
	pp.mu.Unlock()
}

func (pp *parserPool) close() {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	for _, p := range pp.all {
		p.Close()
	}
	pp.all, pp.idle = nil, nil
}
