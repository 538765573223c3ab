package engine

import (
	"github.com/iamNilotpal/ignitedb/internal/index"
	bkerrors "github.com/iamNilotpal/ignitedb/pkg/errors"
	"github.com/iamNilotpal/ignitedb/pkg/options"
)

// Iterator walks an Engine's keys in sorted order, resolving each key's
// value lazily against the data files rather than materializing every
// value up front.
type Iterator struct {
	engine *Engine
	inner  index.Iterator
}

// NewIterator returns an Iterator honoring opts, positioned at the first
// entry (per opts.Reverse).
func (e *Engine) NewIterator(opts options.IteratorOptions) *Iterator {
	inner := e.idx.Iterator(index.IteratorOptions{Prefix: opts.Prefix, Reverse: opts.Reverse})
	return &Iterator{engine: e, inner: inner}
}

// Rewind repositions the iterator at its first entry.
func (it *Iterator) Rewind() { it.inner.Rewind() }

// Seek moves to the first entry at or after (or, in reverse, at or before) key.
func (it *Iterator) Seek(key []byte) { it.inner.Seek(key) }

// Next advances to the following entry.
func (it *Iterator) Next() { it.inner.Next() }

// Valid reports whether the cursor currently references an entry.
func (it *Iterator) Valid() bool { return it.inner.Valid() }

// Key returns the current entry's raw key.
func (it *Iterator) Key() []byte { return it.inner.Key() }

// Value reads and returns the current entry's value from its data file.
func (it *Iterator) Value() ([]byte, error) {
	if it.engine.closed.Load() {
		return nil, bkerrors.ErrEngineClosed()
	}
	return it.engine.readValueAt(it.inner.Value(), it.inner.Key())
}

// Close releases the iterator's snapshot.
func (it *Iterator) Close() { it.inner.Close() }

// Fold invokes fn for every live key in ascending order, stopping early if
// fn returns false or a non-nil error.
func (e *Engine) Fold(fn func(key, value []byte) (bool, error)) error {
	if e.closed.Load() {
		return bkerrors.ErrEngineClosed()
	}

	it := e.idx.Iterator(index.IteratorOptions{})
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		value, err := e.readValueAt(it.Value(), it.Key())
		if err != nil {
			return err
		}
		cont, err := fn(it.Key(), value)
		if err != nil {
			return err
		}
		if !cont {
			break
		}
	}
	return nil
}
