package pathutil

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToRelative(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}

	tests := []struct {
		name     string
		absPath  string
		rootDir  string
		expected string
	}{
		{"nested", "/home/user/project/src/Geo/Circle.php", "/home/user/project", "src/Geo/Circle.php"},
		{"root level file", "/home/user/project/index.php", "/home/user/project", "index.php"},
		{"same directory", "/home/user/project", "/home/user/project", "."},
		{"already relative", "src/Foo.php", "/home/user/project", "src/Foo.php"},
		{"outside root", "/other/Foo.php", "/home/user/project", "/other/Foo.php"},
		{"sibling with common prefix", "/home/user/project2/Foo.php", "/home/user/project", "/home/user/project2/Foo.php"},
		{"dotdot file name", "/home/user/project/..Foo.php", "/home/user/project", "..Foo.php"},
		{"empty root", "/home/user/project/Foo.php", "", "/home/user/project/Foo.php"},
		{"unclean path", "/home/user/project/src/../lib/Foo.php", "/home/user/project/", "lib/Foo.php"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToRelative(tt.absPath, tt.rootDir))
		})
	}
}

func TestToAbsolute(t *testing.T) {
	root := t.TempDir()

	assert.Equal(t, filepath.Join(root, "src", "Foo.php"), ToAbsolute("src/Foo.php", root))
	assert.Equal(t, "src/Foo.php", ToAbsolute("src/Foo.php", ""))
	assert.Equal(t, root, ToAbsolute(root, "/elsewhere"))
	assert.Equal(t, "", ToAbsolute("", root))
}

func TestRoundTrip(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"Foo.php", "src/App/Bar.php", "a/b/c/d.php"} {
		assert.Equal(t, rel, ToRelative(ToAbsolute(rel, root), root))
	}
}
