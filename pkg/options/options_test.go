package options

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iamNilotpal/ignitedb/internal/index"
)

func TestNewDefaultOptions(t *testing.T) {
	opts := NewDefaultOptions()
	require.Equal(t, DefaultDataFileSize, opts.DataFileSize)
	require.Equal(t, DefaultMergeRatio, opts.DataFileMergeRatio)
	require.Equal(t, index.BTree, opts.IndexType)
	require.NotNil(t, opts.Logger)
}

func TestNewDefaultBatchOptions(t *testing.T) {
	opts := NewDefaultBatchOptions()
	require.Equal(t, DefaultMaxBatchNum, opts.MaxBatchNum)
	require.True(t, opts.SyncWrites)
}

func TestWithDirPathIgnoresBlank(t *testing.T) {
	opts := Options{DirPath: "/keep"}
	WithDirPath("   ")(&opts)
	require.Equal(t, "/keep", opts.DirPath)

	WithDirPath("/new")(&opts)
	require.Equal(t, "/new", opts.DirPath)
}

func TestWithDataFileSizeIgnoresZero(t *testing.T) {
	opts := Options{DataFileSize: 100}
	WithDataFileSize(0)(&opts)
	require.EqualValues(t, 100, opts.DataFileSize)

	WithDataFileSize(200)(&opts)
	require.EqualValues(t, 200, opts.DataFileSize)
}

func TestWithMergeRatioRejectsOutOfRange(t *testing.T) {
	opts := Options{DataFileMergeRatio: 0.5}
	WithMergeRatio(-0.1)(&opts)
	require.Equal(t, 0.5, opts.DataFileMergeRatio)

	WithMergeRatio(1.1)(&opts)
	require.Equal(t, 0.5, opts.DataFileMergeRatio)

	WithMergeRatio(0.75)(&opts)
	require.Equal(t, 0.75, opts.DataFileMergeRatio)
}

func TestWithLoggerIgnoresNil(t *testing.T) {
	logger := zap.NewNop().Sugar()
	opts := Options{Logger: logger}
	WithLogger(nil)(&opts)
	require.Same(t, logger, opts.Logger)

	other := zap.NewNop().Sugar()
	WithLogger(other)(&opts)
	require.Same(t, other, opts.Logger)
}

func TestWithIndexTypeAndMmapAndBytesPerSync(t *testing.T) {
	var opts Options
	WithIndexType(index.BPTree)(&opts)
	WithMmapAtStartup(true)(&opts)
	WithBytesPerSync(4096)(&opts)
	WithSyncWrites(true)(&opts)

	require.Equal(t, index.BPTree, opts.IndexType)
	require.True(t, opts.MmapAtStartup)
	require.EqualValues(t, 4096, opts.BytesPerSync)
	require.True(t, opts.SyncWrites)
}

func TestWithDefaultOptionsOverwritesPriorFields(t *testing.T) {
	opts := Options{DirPath: "/should-be-kept-by-caller-ordering", DataFileSize: 1}
	WithDefaultOptions()(&opts)
	require.Equal(t, DefaultDataFileSize, opts.DataFileSize)
}
