package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/decorate"
	"github.com/rouffj/pdepend/internal/metrics"
	"github.com/rouffj/pdepend/internal/phpparser"
	"github.com/rouffj/pdepend/internal/registry"
)

// SourceFile is one PHP file of a test project.
type SourceFile struct {
	Path   string
	Source string
}

// PHP builds a SourceFile.
func PHP(path, source string) SourceFile {
	return SourceFile{Path: path, Source: source}
}

// Project is a set of decorated compilation units sharing one registry.
type Project struct {
	Registry *registry.Registry
	Units    []*ast.CompilationUnit
}

// Decorate parses and decorates files in the given order into a fresh
// registry.
func Decorate(t testing.TB, files ...SourceFile) *Project {
	t.Helper()

	p, err := phpparser.New()
	require.NoError(t, err)
	defer p.Close()

	project := &Project{Registry: registry.New()}
	pass := decorate.NewPass(project.Registry)
	for _, f := range files {
		unit, err := p.Parse(f.Path, []byte(f.Source))
		require.NoError(t, err, "parse %s", f.Path)
		require.NoError(t, pass.Decorate(unit), "decorate %s", f.Path)
		project.Units = append(project.Units, unit)
	}
	return project
}

// Process feeds every unit of the project through the analyzers and
// finishes them.
func (p *Project) Process(t testing.TB, analyzers ...metrics.Analyzer) {
	t.Helper()

	proc := metrics.NewProcessor()
	for _, a := range analyzers {
		proc.Register(a)
	}
	for _, u := range p.Units {
		require.NoError(t, proc.Process(u), "process %s", u.File)
	}
	proc.Finish()
}
