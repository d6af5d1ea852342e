package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rouffj/pdepend/internal/symbol"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type entry struct {
	id   symbol.ID
	key  symbol.Key
	name string
}

func (e *entry) ID() symbol.ID   { return e.id }
func (e *entry) Key() symbol.Key { return e.key }

func class(file, name string) *entry {
	return &entry{
		id:   symbol.ID(symbol.Fingerprint(file) + "|" + name + "#c"),
		key:  symbol.TypeKey(name, symbol.KindClass),
		name: name,
	}
}

func TestRegisterAndLookupRoundTrip(t *testing.T) {
	r := New()
	foo := class("a.php", "Foo")
	r.Register(foo)

	got, ok := r.Lookup(foo.ID())
	require.True(t, ok)
	assert.Same(t, foo, got)

	got, ok = r.LookupKey(symbol.TypeKey("foo", symbol.KindClass))
	require.True(t, ok)
	assert.Same(t, foo, got)

	assert.Equal(t, 1, r.Len())
}

func TestLookupMissingIsNotAnError(t *testing.T) {
	r := New()
	_, ok := r.Lookup("nope#c")
	assert.False(t, ok)
	_, ok = r.LookupKey("nope#c")
	assert.False(t, ok)
}

func TestLookupKindDiscriminates(t *testing.T) {
	r := New()
	foo := class("a.php", "Foo")
	r.Register(foo)

	_, ok := r.LookupKind(foo.ID(), symbol.KindClass)
	assert.True(t, ok)
	_, ok = r.LookupKind(foo.ID(), symbol.KindInterface)
	assert.False(t, ok)
}

func TestRegisterIsIdempotent(t *testing.T) {
	r := New()
	foo := class("a.php", "Foo")
	bar := class("a.php", "Bar")
	r.Register(foo)
	r.Register(bar)

	again := class("a.php", "Foo")
	r.Register(again)

	assert.Equal(t, 2, r.Len())
	got, _ := r.Lookup(foo.ID())
	assert.Same(t, again, got)
	got, _ = r.Lookup(bar.ID())
	assert.Same(t, bar, got)
	assert.Empty(t, r.Duplicates())
}

func TestDuplicateKeyLastWriterWins(t *testing.T) {
	r := New()
	first := class("a.php", "Foo")
	second := class("b.php", "Foo")
	r.Register(first)
	r.Register(second)

	got, ok := r.LookupKey(first.Key())
	require.True(t, ok)
	assert.Same(t, second, got)

	dups := r.Duplicates()
	require.Len(t, dups, 1)
	assert.Equal(t, string(first.ID()), dups[0].First)
	assert.Equal(t, string(second.ID()), dups[0].Second)

	// both stay reachable by id
	_, ok = r.Lookup(first.ID())
	assert.True(t, ok)
}

func TestPlaceholderIsStable(t *testing.T) {
	r := New()
	key := symbol.TypeKey("Missing", symbol.KindClass)
	calls := 0
	create := func() Node {
		calls++
		return &entry{id: "Missing#c", key: key}
	}

	a := r.Placeholder(key, create)
	b := r.Placeholder(key, create)
	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, r.Len())

	defined := class("m.php", "Missing")
	r.Register(defined)
	assert.Same(t, defined, r.Placeholder(key, create))
}

func TestIDsAndEach(t *testing.T) {
	r := New()
	r.Register(class("a.php", "Zed"))
	r.Register(class("a.php", "Alpha"))

	ids := r.IDs()
	require.Len(t, ids, 2)
	assert.Less(t, string(ids[0]), string(ids[1]))

	var names []string
	r.Each(func(n Node) bool {
		names = append(names, n.(*entry).name)
		return true
	})
	assert.Equal(t, []string{"Zed", "Alpha"}, names)

	count := 0
	r.Each(func(Node) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}

func TestReset(t *testing.T) {
	r := New()
	r.Register(class("a.php", "Foo"))
	r.Register(class("b.php", "Foo"))
	r.Placeholder("x#c", func() Node { return &entry{id: "x#c"} })

	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Duplicates())
	_, ok := r.LookupKey(symbol.TypeKey("Foo", symbol.KindClass))
	assert.False(t, ok)
}

func TestConcurrentRegister(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Register(class("f.php", string(rune('A'+i))+string(rune('a'+j%26))))
				r.Lookup("nothing#c")
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 8*26, r.Len())
}
