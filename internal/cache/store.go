// Package cache persists decorated compilation units between runs.
//
// Each unit is stored as one JSON file named after the hash of its path
// fingerprint. An entry is only served when the content hash and the build
// id recorded with it still match, so a changed file or a new binary is a
// plain miss.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/debug"
	pderrors "github.com/rouffj/pdepend/internal/errors"
	"github.com/rouffj/pdepend/internal/symbol"
	"github.com/rouffj/pdepend/internal/version"
)

const entryExt = ".json"

// entry is the on-disk form of one unit.
type entry struct {
	Build       string               `json:"build"`
	Path        string               `json:"path"`
	ContentHash uint64               `json:"content_hash"`
	SavedAt     time.Time            `json:"saved_at"`
	Unit        *ast.CompilationUnit `json:"unit"`
}

// Store is a directory of cached units. It is safe for concurrent use as
// long as no two goroutines save the same path at once.
type Store struct {
	dir     string
	buildID string

	hits   int64
	misses int64
	writes int64
}

// Open creates dir if needed and returns a store rooted there.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, pderrors.NewFileError("open cache", dir, os.ErrInvalid)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pderrors.NewFileError("open cache", dir, err)
	}
	return &Store{dir: dir, buildID: version.BuildID()}, nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) entryPath(path string) (string, error) {
	hash, err := symbol.FingerprintHash(symbol.Fingerprint(path))
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, fmt.Sprintf("%016x%s", hash, entryExt)), nil
}

// Load returns the cached unit for path when its content hash matches.
// Missing, stale and unreadable entries are misses, not errors.
func (s *Store) Load(path string, contentHash uint64) (*ast.CompilationUnit, bool, error) {
	file, err := s.entryPath(path)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		return s.miss(path, "absent")
	}
	if err != nil {
		return nil, false, pderrors.NewFileError("read cache", file, err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return s.miss(path, "corrupt entry")
	}
	switch {
	case e.Build != s.buildID:
		return s.miss(path, "built by another binary")
	case e.Path != filepath.ToSlash(path):
		return s.miss(path, "fingerprint collision with "+e.Path)
	case e.ContentHash != contentHash:
		return s.miss(path, "content changed")
	case e.Unit == nil || e.Unit.Root == nil:
		return s.miss(path, "empty unit")
	}

	atomic.AddInt64(&s.hits, 1)
	debug.Log("CACHE", "hit %s\n", path)
	return e.Unit, true, nil
}

func (s *Store) miss(path, reason string) (*ast.CompilationUnit, bool, error) {
	atomic.AddInt64(&s.misses, 1)
	debug.Log("CACHE", "miss %s: %s\n", path, reason)
	return nil, false, nil
}

// Save writes unit, replacing any previous entry for its path. The write
// goes through a temporary file so readers never see a partial entry.
func (s *Store) Save(unit *ast.CompilationUnit) error {
	if unit == nil || unit.Root == nil {
		return pderrors.NewFileError("write cache", "", os.ErrInvalid)
	}
	file, err := s.entryPath(unit.File)
	if err != nil {
		return err
	}

	data, err := json.Marshal(entry{
		Build:       s.buildID,
		Path:        filepath.ToSlash(unit.File),
		ContentHash: unit.ContentHash,
		SavedAt:     time.Now().UTC(),
		Unit:        unit,
	})
	if err != nil {
		return fmt.Errorf("encode cache entry for %s: %w", unit.File, err)
	}

	tmp, err := os.CreateTemp(s.dir, "entry-*.tmp")
	if err != nil {
		return pderrors.NewFileError("write cache", s.dir, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return pderrors.NewFileError("write cache", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return pderrors.NewFileError("write cache", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), file); err != nil {
		os.Remove(tmp.Name())
		return pderrors.NewFileError("write cache", file, err)
	}

	atomic.AddInt64(&s.writes, 1)
	return nil
}

// Clear removes every entry and resets statistics.
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return pderrors.NewFileError("clear cache", s.dir, err)
	}
	var errs []error
	for _, de := range entries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), entryExt) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, de.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	atomic.StoreInt64(&s.hits, 0)
	atomic.StoreInt64(&s.misses, 0)
	atomic.StoreInt64(&s.writes, 0)
	return pderrors.NewMultiError(errs).ErrorOrNil()
}

// Stats returns cache statistics
func (s *Store) Stats() Stats {
	hits := atomic.LoadInt64(&s.hits)
	misses := atomic.LoadInt64(&s.misses)

	hitRate := float64(0)
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Hits:    hits,
		Misses:  misses,
		Writes:  atomic.LoadInt64(&s.writes),
		HitRate: hitRate,
	}
}

// Stats holds cache statistics
type Stats struct {
	Hits    int64
	Misses  int64
	Writes  int64
	HitRate float64
}
