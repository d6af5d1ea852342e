package engine

import (
	"sync/atomic"
	"time"

	"github.com/rouffj/pdepend/internal/debug"
	"github.com/rouffj/pdepend/internal/metrics"
)

// Listener receives progress events of a run. StartFile and EndFile are
// called from the parse workers and must be safe for concurrent use.
type Listener interface {
	StartParse(files int)
	StartFile(path string)
	EndFile(path string, err error)
	EndParse(parsed int)
	StartAnalyze(analyzers []metrics.Analyzer)
	EndAnalyze()
}

// NopListener ignores every event. Embed it to implement a subset.
type NopListener struct{}

func (NopListener) StartParse(int)                  {}
func (NopListener) StartFile(string)                {}
func (NopListener) EndFile(string, error)           {}
func (NopListener) EndParse(int)                    {}
func (NopListener) StartAnalyze([]metrics.Analyzer) {}
func (NopListener) EndAnalyze()                     {}

// debugListener writes progress to the debug log.
type debugListener struct {
	start  time.Time
	failed int64
}

func newDebugListener() *debugListener { return &debugListener{} }

func (l *debugListener) StartParse(files int) {
	l.start = time.Now()
	atomic.StoreInt64(&l.failed, 0)
	debug.Log("ENGINE", "parsing %d files\n", files)
}

func (l *debugListener) StartFile(path string) {
	debug.LogParse("start %s", path)
}

func (l *debugListener) EndFile(path string, err error) {
	if err != nil {
		atomic.AddInt64(&l.failed, 1)
		debug.Log("ENGINE", "%s: %v\n", path, err)
	}
}

func (l *debugListener) EndParse(parsed int) {
	debug.Log("ENGINE", "parsed %d files (%d failed) in %v\n",
		parsed, atomic.LoadInt64(&l.failed), time.Since(l.start))
}

func (l *debugListener) StartAnalyze(analyzers []metrics.Analyzer) {
	l.start = time.Now()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name()
	}
	debug.Log("ENGINE", "analyzing with %v\n", names)
}

func (l *debugListener) EndAnalyze() {
	debug.Log("ENGINE", "analysis finished in %v\n", time.Since(l.start))
}
