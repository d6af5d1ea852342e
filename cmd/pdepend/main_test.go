package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rouffj/pdepend/internal/report"
	"github.com/rouffj/pdepend/testhelpers"
)

// setupTestProject writes a small PHP project and isolates the user
// config directory.
func setupTestProject(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	testhelpers.WriteFiles(t, dir, map[string]string{
		"src/Foo.php": `<?php
namespace App;

class Foo {
    public function run($x) {
        if ($x) { return 1; }
        return 0;
    }
}
`,
		"src/Bar.php": `<?php
namespace App;

class Bar extends Foo {}
`,
		"vendor/lib/Dep.php": `<?php class Dep {}`,
		"README.md":          "# project",
	})
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"pdepend"}, args...))
	return out.String(), err
}

func TestAnalyzeText(t *testing.T) {
	dir := setupTestProject(t)

	out, err := runCLI(t, "--root", dir, "analyze", "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Files: 2, Namespaces: 1")
	assert.Contains(t, out, `class App\Bar`)
	assert.Contains(t, out, "ccn=2")
	assert.NotContains(t, out, "Dep")
}

func TestAnalyzeJSONWithAnalyzerSelection(t *testing.T) {
	dir := setupTestProject(t)

	out, err := runCLI(t, "--root", dir, "analyze", "--format", "json", "--analyzer", "nodecount", "--no-cache")
	require.NoError(t, err)

	var s report.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 2, s.Files)
	assert.Equal(t, 2.0, s.Metrics["noc"])
	_, hasCCN := s.Metrics["ccn"]
	assert.False(t, hasCCN)
}

func TestAnalyzeOutputFileAndCache(t *testing.T) {
	dir := setupTestProject(t)
	target := filepath.Join(t.TempDir(), "summary.xml")

	for i := 0; i < 2; i++ {
		out, err := runCLI(t, "--root", dir, "analyze", "--format", "xml", "--cache-dir", ".pdepend-cache", "-o", target)
		require.NoError(t, err)
		assert.Empty(t, out)
	}

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<package name="App"`)

	entries, err := os.ReadDir(filepath.Join(dir, ".pdepend-cache"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAnalyzeUnknownAnalyzer(t *testing.T) {
	dir := setupTestProject(t)

	_, err := runCLI(t, "--root", dir, "analyze", "--analyzer", "cyclomatc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cyclomatic")
}

func TestAnalyzeUnknownFormat(t *testing.T) {
	dir := setupTestProject(t)

	_, err := runCLI(t, "--root", dir, "analyze", "--format", "yaml", "--no-cache")
	assert.Error(t, err)
}

func TestAnalyzeProjectConfig(t *testing.T) {
	dir := setupTestProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".pdepend.kdl"), []byte(`
analyzers "inheritance"
include "src/**"
`), 0o644))

	out, err := runCLI(t, "--root", dir, "analyze", "--format", "compact", "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "files=2")
	assert.Contains(t, out, "maxDIT=1")
	assert.NotContains(t, out, "noc=")
}

func TestFilesCommand(t *testing.T) {
	dir := setupTestProject(t)

	out, err := runCLI(t, "--root", dir, "--exclude", "**/Bar.php", "files")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/Foo.php"}, strings.Fields(out))
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "pdepend "))
}
