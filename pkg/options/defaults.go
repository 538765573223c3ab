package options

import (
	"go.uber.org/zap"

	"github.com/iamNilotpal/ignitedb/internal/index"
)

const (
	// DefaultDataFileSize is the default active-file rotation threshold
	// (256 MiB).
	DefaultDataFileSize uint64 = 256 * 1024 * 1024

	// DefaultMergeRatio is the default minimum reclaimable fraction
	// required before Merge proceeds.
	DefaultMergeRatio float64 = 0.5

	// DefaultMaxBatchNum is the default upper bound on a write batch's
	// pending record count.
	DefaultMaxBatchNum = 10_000
)

// NewDefaultOptions returns the §6 default configuration. DirPath is left
// empty; callers must supply one, either via WithDirPath or by setting the
// field directly, since Open rejects an empty directory.
func NewDefaultOptions() Options {
	logger, _ := zap.NewProduction()
	return Options{
		DataFileSize:       DefaultDataFileSize,
		SyncWrites:         false,
		BytesPerSync:       0,
		IndexType:          index.BTree,
		MmapAtStartup:      true,
		DataFileMergeRatio: DefaultMergeRatio,
		Logger:             logger.Sugar(),
	}
}

// NewDefaultBatchOptions returns the default write-batch configuration.
func NewDefaultBatchOptions() BatchOptions {
	return BatchOptions{MaxBatchNum: DefaultMaxBatchNum, SyncWrites: true}
}
