// Package index provides the in-memory key-location index for the storage
// engine: a map from a raw key to the LogRecordPos of its most recent write.
// Three interchangeable backends implement the same Indexer contract — an
// ordered in-memory tree, a concurrent skiplist, and a persistent B+-tree —
// so the engine can trade memory footprint, concurrency, and startup
// rebuild cost against one another without changing a single call site.
package index

import (
	"context"
	stdErrors "errors"

	"go.uber.org/zap"

	"github.com/iamNilotpal/ignitedb/internal/codec"
	"github.com/iamNilotpal/ignitedb/pkg/errors"
)

var ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")

// Type selects which backend New constructs.
type Type int

const (
	// BTree is an ordered in-memory map guarded by a single RWMutex. Cheapest
	// to build and to iterate in order; every access serializes on the lock.
	BTree Type = iota
	// SkipList is an ordered skip list guarded by a single RWMutex: readers
	// share the lock, and every write holds it exclusively.
	SkipList
	// BPTree persists the index itself to disk (go.etcd.io/bbolt), trading
	// write latency for instant-open durability: no data-file scan needed
	// to rebuild it on restart.
	BPTree
)

// Config carries what every backend needs to construct itself.
type Config struct {
	// DirPath is the data directory. Only BPTree uses it, to place its
	// sidecar file; BTree and SkipList ignore it.
	DirPath string
	Logger  *zap.SugaredLogger
}

// New constructs the requested backend.
func New(ctx context.Context, kind Type, cfg Config) (Indexer, error) {
	if cfg.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "index configuration requires a logger",
		).WithField("Logger").WithRule("required")
	}

	switch kind {
	case SkipList:
		return newSkipListIndex(cfg), nil
	case BPTree:
		return newBPTreeIndex(ctx, cfg)
	default:
		return newTreeIndex(cfg), nil
	}
}

// Indexer is the contract every backend satisfies. Put and Delete return the
// position that occupied the key before the call (and whether one existed)
// so the engine can account the displaced record's bytes toward its
// reclaimable total without a second lookup.
type Indexer interface {
	// Put records that key now lives at pos, returning whatever position it
	// previously held.
	Put(key []byte, pos codec.Pos) (old codec.Pos, hadOld bool)
	// Get returns the current position of key.
	Get(key []byte) (codec.Pos, bool)
	// Delete removes key from the index, returning the position it held.
	Delete(key []byte) (old codec.Pos, hadOld bool)
	// Size returns the number of keys currently indexed.
	Size() int
	// Iterator returns a cursor over the index honoring opts.
	Iterator(opts IteratorOptions) Iterator
	// Close releases backend resources (e.g. the BPTree's underlying file).
	Close() error
}

// IteratorOptions controls the view an Iterator walks.
type IteratorOptions struct {
	// Prefix restricts iteration to keys sharing this byte prefix. Nil or
	// empty means no restriction.
	Prefix []byte
	// Reverse walks from the greatest key down to the least.
	Reverse bool
}

// Iterator walks an Indexer's keys in sorted order.
type Iterator interface {
	Rewind()
	Seek(key []byte)
	Next()
	Valid() bool
	Key() []byte
	Value() codec.Pos
	Close()
}
