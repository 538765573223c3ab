package index

import (
	"bytes"
	"sort"

	"github.com/iamNilotpal/ignitedb/internal/codec"
)

// item is one key/position pair captured at the moment an iterator was
// constructed. Every backend snapshots its keys into a slice of these when
// Iterator is called rather than walking live structure, so a long-running
// scan never observes a torn view of a concurrently mutating index and
// never holds the backend's lock for the scan's duration.
type item struct {
	key []byte
	pos codec.Pos
}

// newMaterializedIterator builds an Iterator over entries, which must
// already be sorted ascending by key. It applies opts.Prefix and
// opts.Reverse and positions the cursor at Rewind.
func newMaterializedIterator(entries []item, opts IteratorOptions) Iterator {
	if len(opts.Prefix) > 0 {
		filtered := entries[:0:0]
		for _, e := range entries {
			if bytes.HasPrefix(e.key, opts.Prefix) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	it := &materializedIterator{entries: entries, reverse: opts.Reverse}
	it.Rewind()
	return it
}

type materializedIterator struct {
	entries []item
	reverse bool
	cursor  int
}

func (it *materializedIterator) Rewind() {
	if it.reverse {
		it.cursor = len(it.entries) - 1
	} else {
		it.cursor = 0
	}
}

// Seek moves the cursor to the first entry satisfying the scan direction's
// ordering relative to key: the first key >= target when ascending, the
// first key <= target when descending.
func (it *materializedIterator) Seek(key []byte) {
	n := len(it.entries)
	idx := sort.Search(n, func(i int) bool { return bytes.Compare(it.entries[i].key, key) >= 0 })

	if it.reverse {
		if idx == n || !bytes.Equal(it.entries[idx].key, key) {
			idx--
		}
	}
	it.cursor = idx
}

func (it *materializedIterator) Next() {
	if it.reverse {
		it.cursor--
	} else {
		it.cursor++
	}
}

func (it *materializedIterator) Valid() bool {
	return it.cursor >= 0 && it.cursor < len(it.entries)
}

func (it *materializedIterator) Key() []byte {
	return it.entries[it.cursor].key
}

func (it *materializedIterator) Value() codec.Pos {
	return it.entries[it.cursor].pos
}

func (it *materializedIterator) Close() {
	it.entries = nil
}
