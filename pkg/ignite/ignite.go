// Package ignite provides a high-performance key/value data store designed
// for fast read and write operations, inspired by Bitcask. It combines a
// pluggable in-memory or persistent index with an append-only log structure
// on disk to achieve high throughput. It is designed for applications
// requiring fast read and write operations, such as caching, session
// management, and real-time data processing.
package ignite

import (
	"context"

	"github.com/iamNilotpal/ignitedb/internal/engine"
	"github.com/iamNilotpal/ignitedb/pkg/options"
)

// Instance is the primary entry point for interacting with the Ignite
// store: it wraps the underlying engine and the options it was opened
// with.
type Instance struct {
	engine  *engine.Engine
	options *options.Options
}

// Open creates and initializes a new Ignite instance at the directory given
// by opts (after WithDefaultOptions and any overrides have been applied).
func Open(ctx context.Context, opts ...options.OptionFunc) (*Instance, error) {
	resolved := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&resolved)
	}

	eng, err := engine.Open(ctx, &resolved)
	if err != nil {
		return nil, err
	}
	return &Instance{engine: eng, options: &resolved}, nil
}

// Put stores a key-value pair in the database. If the key already exists,
// its value is updated. The write is durable according to the instance's
// SyncWrites and BytesPerSync configuration.
func (i *Instance) Put(ctx context.Context, key string, value []byte) error {
	return i.engine.Put([]byte(key), value)
}

// Get retrieves the value associated with the given key.
func (i *Instance) Get(ctx context.Context, key string) ([]byte, error) {
	return i.engine.Get([]byte(key))
}

// Delete removes a key-value pair from the database by appending a
// tombstone record; the space it occupied is reclaimed by a later Merge.
func (i *Instance) Delete(ctx context.Context, key string) error {
	return i.engine.Delete([]byte(key))
}

// Sync flushes the active data file durably.
func (i *Instance) Sync() error {
	return i.engine.Sync()
}

// Stat returns a point-in-time snapshot of engine-level statistics.
func (i *Instance) Stat() (engine.Stat, error) {
	return i.engine.Stat()
}

// Backup copies the data directory (excluding the advisory lock file) to dest.
func (i *Instance) Backup(dest string) error {
	return i.engine.Backup(dest)
}

// Merge reclaims space held by overwritten and deleted keys.
func (i *Instance) Merge(ctx context.Context) error {
	return i.engine.Merge(ctx)
}

// NewWriteBatch opens an atomic write batch against this instance.
func (i *Instance) NewWriteBatch(opts options.BatchOptions) (*engine.WriteBatch, error) {
	return i.engine.NewWriteBatch(opts)
}

// NewIterator returns a key-value iterator honoring opts.
func (i *Instance) NewIterator(opts options.IteratorOptions) *engine.Iterator {
	return i.engine.NewIterator(opts)
}

// Fold invokes fn for every live key in ascending order.
func (i *Instance) Fold(fn func(key, value []byte) (bool, error)) error {
	return i.engine.Fold(fn)
}

// Close gracefully shuts down the Ignite instance, releasing all associated
// resources and ensuring data durability.
func (i *Instance) Close(ctx context.Context) error {
	return i.engine.Close()
}
