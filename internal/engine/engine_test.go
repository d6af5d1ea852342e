package engine

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rouffj/pdepend/internal/cache"
	"github.com/rouffj/pdepend/internal/config"
	"github.com/rouffj/pdepend/internal/decl"
	pderrors "github.com/rouffj/pdepend/internal/errors"
	"github.com/rouffj/pdepend/internal/metrics"
	"github.com/rouffj/pdepend/internal/metrics/inheritance"
	"github.com/rouffj/pdepend/internal/metrics/nodecount"
	"github.com/rouffj/pdepend/testhelpers"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func project(t *testing.T, files map[string]string) (*config.Config, []string) {
	t.Helper()
	dir := t.TempDir()
	names := testhelpers.WriteFiles(t, dir, files)
	return testhelpers.NewTestConfigBuilder(dir).Build(t), names
}

func TestRunBarExtendsFoo(t *testing.T) {
	cfg, files := project(t, map[string]string{
		"src/Bar.php": `<?php class Bar extends Foo { public function run() {} }`,
		"src/Foo.php": `<?php class Foo { public function run() {} }`,
	})

	res, err := New(cfg).Run(context.Background(), files)
	require.NoError(t, err)
	require.Empty(t, res.ParseErrors)
	require.Len(t, res.Units, 2)
	assert.Equal(t, "src/Bar.php", res.Units[0].File)

	foo, ok := decl.LookupClass(res.Registry, "Foo")
	require.True(t, ok)
	bar, ok := decl.LookupClass(res.Registry, "Bar")
	require.True(t, ok)

	assert.Equal(t, 1.0, res.NodeMetrics(foo.ID())[inheritance.NumberOfDerivedClasses])
	assert.Equal(t, 1.0, res.NodeMetrics(bar.ID())[inheritance.DepthOfInheritanceTree])
	assert.Equal(t, 1.0, res.NodeMetrics(bar.ID())[nodecount.NumberOfMethods])
	assert.Equal(t, 2.0, res.ProjectMetrics()[nodecount.NumberOfClasses])

	a, ok := res.Analyzer(config.AnalyzerCodeRank)
	require.True(t, ok)
	assert.Equal(t, config.AnalyzerCodeRank, a.Name())
}

func TestRunIsDeterministic(t *testing.T) {
	cfg, files := project(t, map[string]string{
		"a.php": `<?php namespace App; class A { public function f() { return new B(); } }`,
		"b.php": `<?php namespace App; class B {} function helper() {}`,
		"c.php": `<?php /** @package legacy */ class C extends \App\A {}`,
	})

	e := New(cfg)
	first, err := e.Run(context.Background(), files)
	require.NoError(t, err)
	second, err := e.Run(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, first.Registry.IDs(), second.Registry.IDs())
	assert.NotSame(t, first.Registry, second.Registry)
	for _, id := range first.Registry.IDs() {
		assert.Equal(t, first.NodeMetrics(id), second.NodeMetrics(id), id)
	}
	assert.Equal(t, first.ProjectMetrics(), second.ProjectMetrics())
}

func TestRunRecordsParseErrors(t *testing.T) {
	cfg, files := project(t, map[string]string{
		"bad.php":  `<?php class {`,
		"good.php": `<?php class Good {}`,
	})
	files = append(files, "missing.php")

	res, err := New(cfg).Run(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, res.Units, 1)
	assert.Equal(t, "good.php", res.Units[0].File)
	require.Len(t, res.ParseErrors, 2)

	var perr *pderrors.ParseError
	assert.True(t, stderrors.As(res.ParseErrors[0], &perr))
	var ferr *pderrors.FileError
	assert.True(t, stderrors.As(res.ParseErrors[1], &ferr))
}

func TestRunRejectsBinaryFiles(t *testing.T) {
	cfg, files := project(t, map[string]string{
		"logo.php": "\x89PNG\r\n\x1a\n\x00\x00",
		"ok.php":   `<?php class Ok {}`,
	})

	res, err := New(cfg).Run(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, res.Units, 1)
	require.Len(t, res.ParseErrors, 1)

	var ferr *pderrors.FileError
	require.True(t, stderrors.As(res.ParseErrors[0], &ferr))
	assert.Equal(t, pderrors.ErrorTypeInvalidFile, ferr.Type)
	assert.Contains(t, ferr.Error(), "png")
}

func TestRunReportsDuplicatesAndCycles(t *testing.T) {
	cfg, files := project(t, map[string]string{
		"a.php":    `<?php class A extends B {}`,
		"b.php":    `<?php class B extends A {}`,
		"dup1.php": `<?php class Dup {}`,
		"dup2.php": `<?php class Dup {}`,
	})
	cfg.Analyzers = []string{config.AnalyzerNodeCount}

	res, err := New(cfg).Run(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, res.Duplicates, 1)
	require.Len(t, res.Cycles, 1)
	assert.Contains(t, res.Cycles[0].Chain, "A")
	assert.Contains(t, res.Cycles[0].Chain, "B")
}

func TestRunAnonymousClassMembersAreNotDeclared(t *testing.T) {
	cfg, files := project(t, map[string]string{
		"Outer.php": `<?php
namespace App;

class Outer {
    function make() {
        return new class extends \Base {
            function make() {}
            function extra() {}
        };
    }
    function after() {}
}
`,
	})

	res, err := New(cfg).Run(context.Background(), files)
	require.NoError(t, err)
	require.Empty(t, res.ParseErrors)
	assert.Empty(t, res.Duplicates)

	outer, ok := decl.LookupClass(res.Registry, `App\Outer`)
	require.True(t, ok)
	_, ok = decl.LookupMethod(res.Registry, `App\Outer`, "make")
	assert.True(t, ok)
	_, ok = decl.LookupMethod(res.Registry, `App\Outer`, "extra")
	assert.False(t, ok)
	assert.Equal(t, 2.0, res.NodeMetrics(outer.ID())[nodecount.NumberOfMethods])
	assert.Equal(t, 2.0, res.ProjectMetrics()[nodecount.NumberOfMethods])
}

func TestRunFunctionDeclaredInMethod(t *testing.T) {
	cfg, files := project(t, map[string]string{
		"Outer.php": `<?php
class Outer {
    function one() { function helper() {} }
    function two() {}
    function three() {}
}
`,
	})

	res, err := New(cfg).Run(context.Background(), files)
	require.NoError(t, err)
	require.Empty(t, res.ParseErrors)

	outer, ok := decl.LookupClass(res.Registry, "Outer")
	require.True(t, ok)
	_, ok = decl.LookupFunction(res.Registry, "helper")
	assert.True(t, ok)
	assert.Equal(t, 3.0, res.NodeMetrics(outer.ID())[nodecount.NumberOfMethods])
	assert.Equal(t, 3.0, res.ProjectMetrics()[nodecount.NumberOfMethods])
	assert.Equal(t, 1.0, res.ProjectMetrics()[nodecount.NumberOfFunctions])
	assert.Equal(t, 1.0, res.ProjectMetrics()[nodecount.NumberOfPackages])
}

func TestRunWithCache(t *testing.T) {
	cfg, files := project(t, map[string]string{
		"src/Bar.php": `<?php namespace App; class Bar extends Foo { public function run(): Foo { return new Foo(); } }`,
		"src/Foo.php": `<?php namespace App; class Foo { private $x; public function run() { if ($this->x) { return 1; } } }`,
	})
	store, err := cache.Open(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	e := New(cfg, WithCache(store))
	cold, err := e.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Zero(t, cold.Restored)
	assert.Equal(t, int64(2), store.Stats().Writes)

	warm, err := e.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 2, warm.Restored)
	assert.Equal(t, int64(2), store.Stats().Hits)

	assert.Equal(t, cold.Registry.IDs(), warm.Registry.IDs())
	for _, id := range cold.Registry.IDs() {
		assert.Equal(t, cold.NodeMetrics(id), warm.NodeMetrics(id), id)
	}
	assert.Equal(t, cold.ProjectMetrics(), warm.ProjectMetrics())

	// a changed file is parsed again
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Project.Root, "src", "Foo.php"),
		[]byte(`<?php namespace App; class Foo {}`), 0o644))
	changed, err := e.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 1, changed.Restored)
}

func TestRunCancelled(t *testing.T) {
	cfg, files := project(t, map[string]string{"a.php": `<?php class A {}`})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(cfg).Run(ctx, files)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunUnknownAnalyzer(t *testing.T) {
	cfg, files := project(t, map[string]string{"a.php": `<?php class A {}`})
	cfg.Analyzers = []string{"couplin"}

	_, err := New(cfg).Run(context.Background(), files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "coupling"`)
}

func TestRunBadCodeRankMode(t *testing.T) {
	cfg, files := project(t, map[string]string{"a.php": `<?php class A {}`})
	cfg.CodeRank.Modes = []string{"bogus"}

	_, err := New(cfg).Run(context.Background(), files)
	assert.Error(t, err)
}

func TestEveryKnownAnalyzerHasAFactory(t *testing.T) {
	assert.Len(t, factories, len(config.KnownAnalyzers))
	for _, name := range config.KnownAnalyzers {
		_, ok := factories[name]
		assert.True(t, ok, name)
	}
}

type recordingListener struct {
	NopListener
	mu        sync.Mutex
	started   []string
	parsed    int
	analyzers []string
	ended     bool
}

func (l *recordingListener) StartFile(path string) {
	l.mu.Lock()
	l.started = append(l.started, path)
	l.mu.Unlock()
}

func (l *recordingListener) EndParse(parsed int) { l.parsed = parsed }

func (l *recordingListener) StartAnalyze(as []metrics.Analyzer) {
	for _, a := range as {
		l.analyzers = append(l.analyzers, a.Name())
	}
}

func (l *recordingListener) EndAnalyze() { l.ended = true }

func TestListenerEvents(t *testing.T) {
	cfg, files := project(t, map[string]string{
		"a.php": `<?php class A {}`,
		"b.php": `<?php class B {}`,
		"c.php": `<?php class {`,
	})

	l := &recordingListener{}
	_, err := New(cfg, WithListener(l)).Run(context.Background(), files)
	require.NoError(t, err)

	sort.Strings(l.started)
	assert.Equal(t, files, l.started)
	assert.Equal(t, 2, l.parsed)
	assert.Equal(t, cfg.Analyzers, l.analyzers)
	assert.True(t, l.ended)
}

func TestCycleKey(t *testing.T) {
	assert.Equal(t, cycleKey([]string{"A", "B", "A"}), cycleKey([]string{"B", "A", "B"}))
	assert.Equal(t, cycleKey([]string{"X", "A", "B", "A"}), cycleKey([]string{"A", "B", "A"}))
	assert.NotEqual(t, cycleKey([]string{"A", "B", "A"}), cycleKey([]string{"A", "C", "A"}))
}
