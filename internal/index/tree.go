package index

import (
	"bytes"
	"sort"
	"sync"

	"github.com/iamNilotpal/ignitedb/internal/codec"
)

// treeIndex is the ordered in-memory backend: a plain map guarded by a
// single RWMutex, with keys sorted on demand for iteration. It is the
// cheapest backend to build and the simplest to reason about; every access
// serializes on mu, so it trades concurrency for simplicity.
type treeIndex struct {
	mu      sync.RWMutex
	entries map[string]codec.Pos
}

func newTreeIndex(_ Config) *treeIndex {
	return &treeIndex{entries: make(map[string]codec.Pos, 2048)}
}

func (t *treeIndex) Put(key []byte, pos codec.Pos) (codec.Pos, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	old, had := t.entries[string(key)]
	t.entries[string(key)] = pos
	return old, had
}

func (t *treeIndex) Get(key []byte) (codec.Pos, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	pos, ok := t.entries[string(key)]
	return pos, ok
}

func (t *treeIndex) Delete(key []byte) (codec.Pos, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	old, had := t.entries[string(key)]
	if had {
		delete(t.entries, string(key))
	}
	return old, had
}

func (t *treeIndex) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func (t *treeIndex) Iterator(opts IteratorOptions) Iterator {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := make([]item, 0, len(t.entries))
	for k, v := range t.entries {
		snapshot = append(snapshot, item{key: []byte(k), pos: v})
	}
	sort.Slice(snapshot, func(i, j int) bool { return bytes.Compare(snapshot[i].key, snapshot[j].key) < 0 })

	return newMaterializedIterator(snapshot, opts)
}

func (t *treeIndex) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.entries)
	t.entries = nil
	return nil
}
