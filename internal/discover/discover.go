// Package discover finds the PHP files of a project.
package discover

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rouffj/pdepend/internal/config"
	"github.com/rouffj/pdepend/internal/debug"
	pderrors "github.com/rouffj/pdepend/internal/errors"
)

// DefaultExtensions are used when Options.Extensions is empty.
var DefaultExtensions = []string{".php"}

// Options controls which files are kept.
type Options struct {
	Include          []string // doublestar globs; empty keeps everything
	Exclude          []string // doublestar globs, applied to files and directories
	Extensions       []string
	RespectGitignore bool
	FollowSymlinks   bool
	MaxFileSize      int64 // 0 disables the limit
}

// OptionsFromConfig derives discovery options from a configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Include:          cfg.Include,
		Exclude:          cfg.Exclude,
		Extensions:       cfg.Index.Extensions,
		RespectGitignore: cfg.Index.RespectGitignore,
		FollowSymlinks:   cfg.Index.FollowSymlinks,
		MaxFileSize:      cfg.Index.MaxFileSize,
	}
}

// Files walks root and returns the sorted slash-separated paths, relative
// to root, of the PHP files that pass the include and exclude globs and
// the root .gitignore.
func Files(root string, include, exclude []string, respectGitignore bool) ([]string, error) {
	return Discover(context.Background(), root, Options{
		Include:          include,
		Exclude:          exclude,
		RespectGitignore: respectGitignore,
	})
}

// Discover is Files with full options and cancellation.
func Discover(ctx context.Context, root string, opts Options) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, pderrors.NewFileError("discover", root, err)
	}
	if !info.IsDir() {
		return nil, pderrors.NewFileError("discover", root, os.ErrInvalid)
	}

	m := NewMatcher(root, opts)
	seen := make(map[string]bool)
	visitedDirs := make(map[string]bool)
	var files []string

	var walk func(dir, prefix string) error
	walk = func(dir, prefix string) error {
		return filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if walkErr != nil {
				debug.Log("DISCOVER", "skipping %s: %v\n", path, walkErr)
				return nil
			}

			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return nil
			}
			rel = filepath.ToSlash(filepath.Join(prefix, rel))

			if d.IsDir() {
				if path == dir {
					// symlink cycles
					real, err := filepath.EvalSymlinks(path)
					if err == nil {
						if visitedDirs[real] {
							return filepath.SkipDir
						}
						visitedDirs[real] = true
					}
					return nil
				}
				if m.ExcludeDir(rel) {
					return filepath.SkipDir
				}
				return nil
			}

			if d.Type()&os.ModeSymlink != 0 {
				if !opts.FollowSymlinks {
					return nil
				}
				target, err := os.Stat(path)
				if err != nil {
					return nil
				}
				if target.IsDir() {
					if m.ExcludeDir(rel) {
						return nil
					}
					return walk(path, rel)
				}
			}

			if !m.Match(rel) || seen[rel] {
				return nil
			}
			if opts.MaxFileSize > 0 {
				if fi, err := os.Stat(path); err == nil && fi.Size() > opts.MaxFileSize {
					debug.Log("DISCOVER", "skipping %s: %d bytes exceeds limit\n", rel, fi.Size())
					return nil
				}
			}
			seen[rel] = true
			files = append(files, rel)
			return nil
		})
	}

	if err := walk(root, ""); err != nil {
		return nil, err
	}

	sort.Strings(files)
	debug.Log("DISCOVER", "found %d files under %s\n", len(files), root)
	return files, nil
}

// Matcher applies discovery filters to root-relative paths. It is shared
// with the watcher so changed files are filtered the same way.
type Matcher struct {
	include    []string
	exclude    []string
	extensions map[string]bool
	gitignore  *config.GitignoreParser
}

// NewMatcher builds a matcher, loading root/.gitignore when requested.
// Invalid globs are dropped.
func NewMatcher(root string, opts Options) *Matcher {
	m := &Matcher{
		include:    validPatterns(opts.Include),
		exclude:    validPatterns(opts.Exclude),
		extensions: make(map[string]bool),
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	for _, ext := range exts {
		m.extensions[strings.ToLower(ext)] = true
	}

	if opts.RespectGitignore {
		m.gitignore = config.NewGitignoreParser()
		if err := m.gitignore.LoadGitignore(root); err != nil {
			debug.Warn("DISCOVER", "failed to load .gitignore: %v", err)
		}
	}
	return m
}

func validPatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if doublestar.ValidatePattern(p) {
			out = append(out, p)
		} else {
			debug.Warn("DISCOVER", "ignoring invalid glob %q", p)
		}
	}
	return out
}

// Match reports whether the file at rel is kept.
func (m *Matcher) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	if !m.extensions[strings.ToLower(filepath.Ext(rel))] {
		return false
	}
	if matchAny(m.exclude, rel) {
		return false
	}
	if m.gitignore != nil && m.gitignore.ShouldIgnore(rel, false) {
		return false
	}
	return len(m.include) == 0 || matchAny(m.include, rel)
}

// ExcludeDir reports whether the directory at rel is pruned. Patterns are
// tried with and without a trailing slash so "dir/**" prunes dir itself.
func (m *Matcher) ExcludeDir(rel string) bool {
	rel = filepath.ToSlash(rel)
	if matchAny(m.exclude, rel) || matchAny(m.exclude, rel+"/") {
		return true
	}
	return m.gitignore != nil && m.gitignore.ShouldIgnore(rel, true)
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, path); err == nil && matched {
			return true
		}
	}
	return false
}
