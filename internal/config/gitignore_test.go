package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitignoreParser_Patterns(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		isDir    bool
		expected bool
	}{
		{"simple file match", []string{"config.php"}, "config.php", false, true},
		{"simple file no match", []string{"config.php"}, "index.php", false, false},
		{"nested file match", []string{"config.php"}, "app/config.php", false, true},
		{"wildcard", []string{"*.log"}, "var/app.log", false, true},
		{"directory pattern matches files inside", []string{"cache/"}, "var/cache/a.php", false, true},
		{"directory pattern matches directory", []string{"cache/"}, "var/cache", true, true},
		{"directory pattern no match outside", []string{"cache/"}, "src/Cache.php", false, false},
		{"anchored pattern", []string{"/build"}, "build/x.php", false, true},
		{"anchored pattern elsewhere", []string{"/build"}, "src/build/x.php", false, false},
		{"negation", []string{"*.php", "!keep.php"}, "keep.php", false, false},
		{"no patterns", nil, "anything.php", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gp := NewGitignoreParser()
			for _, p := range tt.patterns {
				gp.AddPattern(p)
			}
			assert.Equal(t, tt.expected, gp.ShouldIgnore(tt.path, tt.isDir))
		})
	}
}

func TestGitignoreParser_LoadGitignore(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "# generated\n\n/generated/\n*.cache.php\n")

	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(dir))
	assert.Equal(t, 2, gp.Len())
	assert.True(t, gp.ShouldIgnore("generated/Proxy.php", false))
	assert.True(t, gp.ShouldIgnore("src/routes.cache.php", false))
	assert.False(t, gp.ShouldIgnore("src/Kernel.php", false))

	// patterns added after loading take effect
	gp.AddPattern("src/")
	assert.True(t, gp.ShouldIgnore("src/Kernel.php", false))
}

func TestGitignoreParser_MissingFile(t *testing.T) {
	gp := NewGitignoreParser()
	require.NoError(t, gp.LoadGitignore(t.TempDir()))
	assert.Zero(t, gp.Len())
}

func TestBuildArtifactDetector(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "composer.json", `{"config": {"vendor-dir": "deps", "bin-dir": "deps/bin"}}`)
	writeFile(t, dir, "package.json", `{"build": {"outDir": "public/build"}}`)

	got := NewBuildArtifactDetector(dir).DetectOutputDirectories()
	assert.Equal(t, []string{"**/deps/**", "**/deps/bin/**", "**/public/build/**"}, got)

	assert.Empty(t, NewBuildArtifactDetector(t.TempDir()).DetectOutputDirectories())
}
