// Package options provides data structures and functions for configuring
// the Ignite storage engine. It defines the parameters that control an
// Engine's durability behavior, index backend, merge threshold, and the
// smaller-scope options for write batches and iterators.
package options

import (
	"strings"

	"go.uber.org/zap"

	"github.com/iamNilotpal/ignitedb/internal/index"
)

// Options configures an Engine at Open time.
type Options struct {
	// DirPath is the filesystem directory the engine reads and writes.
	// Required; Open rejects an empty value.
	DirPath string `json:"dirPath"`

	// DataFileSize is the maximum number of bytes an active data file may
	// grow to before the engine rotates it into a new one.
	//
	//  - Default: 256 MiB
	DataFileSize uint64 `json:"dataFileSize"`

	// SyncWrites, when true, fsyncs the active file after every append.
	SyncWrites bool `json:"syncWrites"`

	// BytesPerSync accumulates written bytes since the last fsync and
	// triggers one once the threshold is crossed. Zero disables this and
	// leaves durability entirely to SyncWrites and explicit Sync calls.
	BytesPerSync uint64 `json:"bytesPerSync"`

	// IndexType selects which Indexer backend the engine builds.
	IndexType index.Type `json:"indexType"`

	// MmapAtStartup, when true, uses memory-mapped reads during the startup
	// recovery scan, then rebinds every file to buffered I/O once recovery
	// completes.
	MmapAtStartup bool `json:"mmapAtStartup"`

	// DataFileMergeRatio is the minimum reclaimable/total byte ratio that
	// must be reached before Merge will proceed. Must be within [0, 1].
	DataFileMergeRatio float64 `json:"dataFileMergeRatio"`

	// Logger receives structured engine logs. NewDefaultOptions installs a
	// production logger; Open rejects an Options whose Logger is nil.
	Logger *zap.SugaredLogger `json:"-"`
}

// BatchOptions configures a write batch at NewWriteBatch time.
type BatchOptions struct {
	// MaxBatchNum bounds how many pending records a batch may accumulate
	// before Put/Delete start failing with ExceedMaxBatchNum.
	//
	//  - Default: 10,000
	MaxBatchNum int `json:"maxBatchNum"`

	// SyncWrites, when true, fsyncs the active file as part of Commit.
	SyncWrites bool `json:"syncWrites"`
}

// IteratorOptions configures a key-value iterator at NewIterator time.
type IteratorOptions struct {
	// Prefix restricts iteration to keys sharing this byte prefix.
	Prefix []byte `json:"prefix"`
	// Reverse walks from the greatest key down to the least.
	Reverse bool `json:"reverse"`
}

// OptionFunc modifies an in-progress Options value.
type OptionFunc func(*Options)

// WithDefaultOptions applies every §6 default in one call.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		defaults := NewDefaultOptions()
		*o = defaults
	}
}

// WithDirPath sets the engine's data directory.
func WithDirPath(dirPath string) OptionFunc {
	return func(o *Options) {
		dirPath = strings.TrimSpace(dirPath)
		if dirPath != "" {
			o.DirPath = dirPath
		}
	}
}

// WithDataFileSize sets the active file rotation threshold.
func WithDataFileSize(size uint64) OptionFunc {
	return func(o *Options) {
		if size > 0 {
			o.DataFileSize = size
		}
	}
}

// WithSyncWrites toggles per-append fsync.
func WithSyncWrites(sync bool) OptionFunc {
	return func(o *Options) {
		o.SyncWrites = sync
	}
}

// WithBytesPerSync sets the accumulated-bytes fsync trigger; zero disables it.
func WithBytesPerSync(bytes uint64) OptionFunc {
	return func(o *Options) {
		o.BytesPerSync = bytes
	}
}

// WithIndexType selects the index backend.
func WithIndexType(kind index.Type) OptionFunc {
	return func(o *Options) {
		o.IndexType = kind
	}
}

// WithMmapAtStartup toggles memory-mapped reads during the recovery scan.
func WithMmapAtStartup(enabled bool) OptionFunc {
	return func(o *Options) {
		o.MmapAtStartup = enabled
	}
}

// WithMergeRatio sets the minimum reclaimable ratio Merge requires.
func WithMergeRatio(ratio float64) OptionFunc {
	return func(o *Options) {
		if ratio >= 0 && ratio <= 1 {
			o.DataFileMergeRatio = ratio
		}
	}
}

// WithLogger injects a structured logger.
func WithLogger(logger *zap.SugaredLogger) OptionFunc {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}
