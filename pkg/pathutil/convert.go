// Package pathutil converts between the absolute paths used to touch the
// filesystem and the slash-separated, root-relative paths pdepend stores
// in units, cache entries and reports.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to a slash-separated path relative
// to rootDir. Paths that are already relative, or that lie outside rootDir,
// are returned in slash form unchanged.
//
// Examples:
//   - ToRelative("/home/user/project/src/Foo.php", "/home/user/project") → "src/Foo.php"
//   - ToRelative("/other/Foo.php", "/home/user/project") → "/other/Foo.php"
//   - ToRelative("src/Foo.php", "/home/user/project") → "src/Foo.php"
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" || !filepath.IsAbs(absPath) {
		return filepath.ToSlash(absPath)
	}

	absPath = filepath.Clean(absPath)
	relPath, err := filepath.Rel(filepath.Clean(rootDir), absPath)
	if err != nil {
		// different volumes on Windows
		return filepath.ToSlash(absPath)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(absPath)
	}
	return filepath.ToSlash(relPath)
}

// ToAbsolute resolves a slash-separated relative path against rootDir.
// Absolute paths, and any path when rootDir is empty, are returned as-is.
func ToAbsolute(relPath, rootDir string) string {
	if relPath == "" || rootDir == "" || filepath.IsAbs(relPath) {
		return relPath
	}
	return filepath.Join(rootDir, filepath.FromSlash(relPath))
}
