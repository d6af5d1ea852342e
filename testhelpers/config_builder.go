package testhelpers

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rouffj/pdepend/internal/config"
)

// TestConfigBuilder provides a fluent API for building test configs with
// safe defaults.
//
//	cfg := testhelpers.NewTestConfigBuilder(dir).
//		WithAnalyzers("inheritance").
//		WithExclusions("**/Tests/**").
//		Build(t)
type TestConfigBuilder struct {
	cfg *config.Config
}

// NewTestConfigBuilder starts from the default configuration rooted at
// projectRoot, with gitignore handling off and a fixed worker count.
func NewTestConfigBuilder(projectRoot string) *TestConfigBuilder {
	cfg := config.Default()
	cfg.Project.Root = projectRoot
	cfg.Project.Name = "test-project"
	cfg.Index.RespectGitignore = false
	cfg.Performance.Workers = 4
	cfg.Watch.DebounceMs = 50
	return &TestConfigBuilder{cfg: cfg}
}

// WithAnalyzers replaces the analyzer list.
func (b *TestConfigBuilder) WithAnalyzers(names ...string) *TestConfigBuilder {
	b.cfg.Analyzers = names
	return b
}

// WithCodeRankModes replaces the code rank strategies.
func (b *TestConfigBuilder) WithCodeRankModes(modes ...string) *TestConfigBuilder {
	b.cfg.CodeRank.Modes = modes
	return b
}

// WithExclusions adds exclusion patterns to the defaults.
func (b *TestConfigBuilder) WithExclusions(patterns ...string) *TestConfigBuilder {
	b.cfg.Exclude = append(b.cfg.Exclude, patterns...)
	return b
}

// WithIncludePatterns replaces the include patterns.
func (b *TestConfigBuilder) WithIncludePatterns(patterns ...string) *TestConfigBuilder {
	b.cfg.Include = patterns
	return b
}

func (b *TestConfigBuilder) WithWorkers(n int) *TestConfigBuilder {
	b.cfg.Performance.Workers = n
	return b
}

func (b *TestConfigBuilder) WithCacheDir(dir string) *TestConfigBuilder {
	b.cfg.Cache.Dir = dir
	return b
}

func (b *TestConfigBuilder) WithDebounceMs(ms int) *TestConfigBuilder {
	b.cfg.Watch.DebounceMs = ms
	return b
}

// Build validates and returns the config.
func (b *TestConfigBuilder) Build(t testing.TB) *config.Config {
	t.Helper()
	require.NoError(t, config.ValidateConfig(b.cfg))
	return b.cfg
}

// WriteFiles writes files, keyed by slash-separated relative path, under
// dir and returns the sorted relative paths.
func WriteFiles(t testing.TB, dir string, files map[string]string) []string {
	t.Helper()
	names := make([]string, 0, len(files))
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
