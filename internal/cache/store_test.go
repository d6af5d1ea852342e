package cache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rouffj/pdepend/internal/ast"
	"github.com/rouffj/pdepend/internal/decl"
	"github.com/rouffj/pdepend/internal/registry"
	"github.com/rouffj/pdepend/testhelpers"
)

const fixture = `<?php
namespace App;

interface Greeter { public function greet(): string; }

class Hello implements Greeter {
    private $name;
    public function greet(): string { return "hi"; }
}
`

func decorated(t *testing.T) (*ast.CompilationUnit, *registry.Registry) {
	t.Helper()
	p := testhelpers.Decorate(t, testhelpers.PHP("src/Hello.php", fixture))
	require.Len(t, p.Units, 1)
	return p.Units[0], p.Registry
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	unit, reg := decorated(t)
	require.NoError(t, store.Save(unit))

	loaded, ok, err := store.Load("src/Hello.php", unit.ContentHash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, unit.File, loaded.File)
	assert.Equal(t, unit.ContentHash, loaded.ContentHash)

	fresh := registry.New()
	restored := decl.Restore(fresh, loaded)
	assert.Equal(t, reg.Len(), fresh.Len())
	assert.Positive(t, restored)
	assert.Equal(t, reg.IDs(), fresh.IDs())

	hello, ok := decl.LookupType(fresh, `App\Hello`)
	require.True(t, ok)
	assert.True(t, hello.IsUserDefined())

	stats := store.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Writes)
	assert.InDelta(t, 1.0, stats.HitRate, 1e-9)
}

func TestStoreMisses(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	unit, _ := decorated(t)

	_, ok, err := store.Load(unit.File, unit.ContentHash)
	require.NoError(t, err)
	assert.False(t, ok, "absent")

	require.NoError(t, store.Save(unit))

	_, ok, err = store.Load(unit.File, unit.ContentHash+1)
	require.NoError(t, err)
	assert.False(t, ok, "content changed")

	file, err := store.entryPath(unit.File)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0o644))
	_, ok, err = store.Load(unit.File, unit.ContentHash)
	require.NoError(t, err)
	assert.False(t, ok, "corrupt")

	stats := store.Stats()
	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(3), stats.Misses)
	assert.Zero(t, stats.HitRate)
}

func TestStoreOtherBuildIsMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	unit, _ := decorated(t)
	require.NoError(t, store.Save(unit))

	other := &Store{dir: dir, buildID: "other"}
	_, ok, err := other.Load(unit.File, unit.ContentHash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreClear(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	unit, _ := decorated(t)
	require.NoError(t, store.Save(unit))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0o644))

	require.NoError(t, store.Clear())
	_, ok, err := store.Load(unit.File, unit.ContentHash)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.FileExists(t, filepath.Join(dir, "keep.txt"))
	assert.Equal(t, int64(0), store.Stats().Writes)
}

func TestStoreConcurrentSaves(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unit := &ast.CompilationUnit{
				File:        filepath.ToSlash(filepath.Join("src", string(rune('a'+i))+".php")),
				ContentHash: uint64(i),
				Root:        &ast.Node{Kind: ast.KindCompilationUnit},
			}
			assert.NoError(t, store.Save(unit))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(8), store.Stats().Writes)
	_, ok, err := store.Load("src/c.php", 2)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenEmptyDir(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestSaveRejectsEmptyUnit(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, store.Save(&ast.CompilationUnit{File: "a.php"}))
}
