// Package registry holds the identifier to declaration mapping shared by
// one analysis run.
package registry

import (
	"sort"
	"sync"

	"github.com/rouffj/pdepend/internal/debug"
	"github.com/rouffj/pdepend/internal/errors"
	"github.com/rouffj/pdepend/internal/symbol"
)

// Node is anything that can be registered: it has an identifier and a
// name-based key references resolve through.
type Node interface {
	ID() symbol.ID
	Key() symbol.Key
}

// Registry maps identifiers to declarations. Absent entries are a normal
// outcome of a lookup, never an error.
//
// Storage uses parallel arrays plus an index map so iteration follows
// registration order.
type Registry struct {
	mu sync.RWMutex

	data  []Node
	ids   []symbol.ID
	index map[symbol.ID]int

	// key -> id of the declaration currently owning the key
	keys map[symbol.Key]symbol.ID

	placeholders map[symbol.Key]Node
	duplicates   []*errors.DuplicateDeclarationError
}

// New creates an empty registry.
func New() *Registry {
	r := &Registry{}
	r.init()
	return r
}

func (r *Registry) init() {
	r.data = make([]Node, 0, 256)
	r.ids = make([]symbol.ID, 0, 256)
	r.index = make(map[symbol.ID]int, 512)
	r.keys = make(map[symbol.Key]symbol.ID, 512)
	r.placeholders = make(map[symbol.Key]Node)
	r.duplicates = nil
}

// Register stores n under its identifier. Registering the same identifier
// again overwrites the previous entry. When a different identifier claims
// a key that is already owned, the later declaration wins and the
// collision is recorded.
func (r *Registry) Register(n Node) {
	id := n.ID()
	key := n.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.index[id]; ok {
		r.data[idx] = n
	} else {
		r.index[id] = len(r.data)
		r.data = append(r.data, n)
		r.ids = append(r.ids, id)
	}

	if key == "" {
		return
	}
	if owner, ok := r.keys[key]; ok && owner != id && !isSynthetic(owner, id) {
		dup := errors.NewDuplicateDeclarationError(string(key), string(owner), string(id))
		r.duplicates = append(r.duplicates, dup)
		debug.Log("REGISTRY", "%s\n", dup.Error())
	}
	r.keys[key] = id
}

// isSynthetic reports whether two ids for one key are namespace entries,
// which many files legitimately share.
func isSynthetic(a, b symbol.ID) bool {
	ka, _ := a.Kind()
	kb, _ := b.Kind()
	return ka == symbol.KindNamespace && kb == symbol.KindNamespace
}

// Lookup returns the declaration registered under id.
func (r *Registry) Lookup(id symbol.ID) (Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.data[idx], true
}

// LookupKind is Lookup restricted to identifiers carrying the given kind.
func (r *Registry) LookupKind(id symbol.ID, kind symbol.Kind) (Node, bool) {
	if k, ok := id.Kind(); !ok || k != kind {
		return nil, false
	}
	return r.Lookup(id)
}

// LookupKey returns the declaration currently owning key.
func (r *Registry) LookupKey(key symbol.Key) (Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.keys[key]
	if !ok {
		return nil, false
	}
	return r.data[r.index[id]], true
}

// Placeholder returns the registered declaration for key if there is one,
// otherwise a placeholder built by create. The same placeholder is
// returned for every later miss on key, so callers can compare identities.
// Placeholders are never indexed by key and never shadow real entries.
func (r *Registry) Placeholder(key symbol.Key, create func() Node) Node {
	if n, ok := r.LookupKey(key); ok {
		return n
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// another writer may have registered the key meanwhile
	if id, ok := r.keys[key]; ok {
		return r.data[r.index[id]]
	}
	if p, ok := r.placeholders[key]; ok {
		return p
	}
	p := create()
	r.placeholders[key] = p
	return p
}

// Len returns the number of registered declarations, placeholders excluded.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// IDs returns every registered identifier in sorted order.
func (r *Registry) IDs() []symbol.ID {
	r.mu.RLock()
	ids := make([]symbol.ID, len(r.ids))
	copy(ids, r.ids)
	r.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Each calls fn for every registered declaration in registration order
// until fn returns false.
func (r *Registry) Each(fn func(Node) bool) {
	r.mu.RLock()
	nodes := make([]Node, len(r.data))
	copy(nodes, r.data)
	r.mu.RUnlock()

	for _, n := range nodes {
		if !fn(n) {
			return
		}
	}
}

// Duplicates returns the key collisions recorded so far.
func (r *Registry) Duplicates() []*errors.DuplicateDeclarationError {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*errors.DuplicateDeclarationError, len(r.duplicates))
	copy(out, r.duplicates)
	return out
}

// Reset drops every entry, placeholder and recorded duplicate.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.init()
}
