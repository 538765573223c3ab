package engine

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/iamNilotpal/ignitedb/internal/codec"
	"github.com/iamNilotpal/ignitedb/internal/index"
	"github.com/iamNilotpal/ignitedb/internal/iomanager"
	"github.com/iamNilotpal/ignitedb/internal/storage"
	bkerrors "github.com/iamNilotpal/ignitedb/pkg/errors"
	"github.com/iamNilotpal/ignitedb/pkg/filesys"
	"github.com/iamNilotpal/ignitedb/pkg/options"
)

// CapacitySource reports how many bytes are free on the filesystem backing
// dirPath. Injectable so merge's space check can be exercised without a
// real disk-full condition; production code uses statfsCapacitySource.
type CapacitySource interface {
	AvailableBytes(dirPath string) (uint64, error)
}

type statfsCapacitySource struct{}

func (statfsCapacitySource) AvailableBytes(dirPath string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dirPath, &stat); err != nil {
		return 0, bkerrors.NewStorageError(err, bkerrors.ErrorCodeIO, "failed to statfs data directory").
			WithPath(dirPath)
	}
	return uint64(stat.Bavail) * uint64(stat.Bsize), nil
}

// DefaultCapacitySource is the production statfs-backed implementation.
var DefaultCapacitySource CapacitySource = statfsCapacitySource{}

// SetCapacitySource overrides the source Merge consults for its free-space
// check. Exposed for tests that need to simulate low disk space.
func (e *Engine) SetCapacitySource(src CapacitySource) {
	e.capacitySource = src
}

// Merge rewrites every live key into a fresh set of data files, reclaiming
// the space held by overwritten and deleted records. It refuses to run
// concurrently with another merge, below the configured reclaim ratio, or
// without enough free disk space to hold the rewrite.
func (e *Engine) Merge(ctx context.Context) error {
	if e.closed.Load() {
		return bkerrors.ErrEngineClosed()
	}
	if !e.isMerging.CompareAndSwap(false, true) {
		return bkerrors.ErrMergeInProgress()
	}
	defer e.isMerging.Store(false)

	e.mergeMu.Lock()
	defer e.mergeMu.Unlock()

	stat, err := e.Stat()
	if err != nil {
		return err
	}
	if stat.DiskSize > 0 {
		ratio := float64(stat.ReclaimableSize) / float64(stat.DiskSize)
		if ratio < e.options.DataFileMergeRatio {
			return bkerrors.ErrMergeRatioUnreached(ratio, e.options.DataFileMergeRatio)
		}
	}

	capacitySource := e.capacitySource
	if capacitySource == nil {
		capacitySource = DefaultCapacitySource
	}
	available, err := capacitySource.AvailableBytes(e.options.DirPath)
	if err != nil {
		return err
	}
	needed := uint64(stat.DiskSize - stat.ReclaimableSize)
	if available < needed {
		return bkerrors.ErrMergeNoEnoughSpace(needed, available)
	}

	boundary, fileIDs, err := e.rotateForMerge()
	if err != nil {
		return err
	}

	mergeDir := storage.MergeDirPath(e.options.DirPath)
	os.RemoveAll(mergeDir)
	if err := os.MkdirAll(mergeDir, 0o755); err != nil {
		return bkerrors.ClassifyDirectoryCreationError(err, mergeDir)
	}

	if err := e.rewriteLiveRecords(ctx, mergeDir, fileIDs); err != nil {
		os.RemoveAll(mergeDir)
		return err
	}

	if err := writeMergeFinMarker(mergeDir, boundary+1, e.log); err != nil {
		os.RemoveAll(mergeDir)
		return err
	}

	// Installation — deleting the old data files and renaming the merge
	// directory's files over them — never happens here. This engine's own
	// olderFiles map and index still point at the pre-merge files, and
	// swapping them out from under a live, open Engine would make every
	// already-indexed position stale. Installation happens only at the next
	// Open, via loadMergeFiles, once the index is about to be rebuilt from
	// scratch anyway.
	return nil
}

// rotateForMerge closes out the current active file (so it becomes an
// immutable merge candidate) and returns the boundary file id plus every
// file id at or below it.
func (e *Engine) rotateForMerge() (boundary uint32, fileIDs []uint32, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.activeFile.Sync(); err != nil {
		return 0, nil, err
	}
	boundary = e.activeFile.FileID
	e.olderFiles[boundary] = e.activeFile

	newActive, err := storage.Open(e.options.DirPath, boundary+1, iomanager.Buffered, e.log)
	if err != nil {
		return 0, nil, err
	}
	e.activeFile = newActive

	fileIDs = make([]uint32, 0, len(e.olderFiles))
	for id := range e.olderFiles {
		if id <= boundary {
			fileIDs = append(fileIDs, id)
		}
	}
	sort.Slice(fileIDs, func(i, j int) bool { return fileIDs[i] < fileIDs[j] })
	return boundary, fileIDs, nil
}

// rewriteLiveRecords scans fileIDs in order and, for every record that is
// still the index's current position for its key (the liveness test),
// writes it into a fresh sequence of data files inside mergeDir along with
// a matching hint record.
func (e *Engine) rewriteLiveRecords(ctx context.Context, mergeDir string, fileIDs []uint32) error {
	innerLog := e.log
	innerOpts := &options.Options{
		DirPath:      mergeDir,
		DataFileSize: e.options.DataFileSize,
		IndexType:    index.BTree,
		Logger:       innerLog,
	}

	inner, err := Open(ctx, innerOpts)
	if err != nil {
		return err
	}
	defer inner.Close()

	hintFile, err := storage.OpenHint(mergeDir, innerLog)
	if err != nil {
		return err
	}
	defer hintFile.Close()

	for _, fileID := range fileIDs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		e.mu.RLock()
		df := e.olderFiles[fileID]
		e.mu.RUnlock()

		var offset uint64
		for {
			result, readErr := df.ReadLogRecord(offset)
			if readErr != nil {
				if storage.IsEOF(readErr) {
					break
				}
				return readErr
			}
			size := uint64(result.Size)
			pos := codec.Pos{FileID: fileID, Offset: offset, Size: uint32(size)}
			offset += size

			if result.Record.Type != codec.RecordNormal {
				continue
			}
			_, rawKey := codec.ParseKeyWithSeq(result.Record.Key)

			current, ok := e.idx.Get(rawKey)
			if !ok || current != pos {
				continue
			}

			if err := inner.Put(rawKey, result.Record.Value); err != nil {
				return err
			}
			newPos, ok := inner.idx.Get(rawKey)
			if !ok {
				continue
			}
			if err := hintFile.WriteHintRecord(rawKey, newPos); err != nil {
				return err
			}
		}
	}

	return hintFile.Sync()
}

func writeMergeFinMarker(mergeDir string, boundary uint32, log *zap.SugaredLogger) error {
	df, err := storage.OpenMergeFin(mergeDir, log)
	if err != nil {
		return err
	}
	defer df.Close()

	record := codec.Record{
		Type:  codec.RecordNormal,
		Key:   []byte(codec.MergeFinishedKey),
		Value: []byte(strconv.FormatUint(uint64(boundary), 10)),
	}
	if _, err := df.Write(codec.Encode(record)); err != nil {
		return err
	}
	return df.Sync()
}

// loadMergeFiles installs a previous merge run's result, if one is sitting
// in the merge directory with a completion marker. This is the only place
// installation ever happens: it runs at the very start of Open, before
// loadDataFiles and before any Index exists, so it only ever touches the
// filesystem, never a live engine's in-memory state. Returns whether a
// merge was installed, so the caller knows whether the Index it is about
// to build needs a full rebuild even on a backend that would otherwise
// trust its own persisted state.
func (e *Engine) loadMergeFiles() (installed bool, err error) {
	mergeDir := storage.MergeDirPath(e.options.DirPath)
	exists, err := filesys.Exists(mergeDir)
	if err != nil {
		return false, bkerrors.NewStorageError(err, bkerrors.ErrorCodeIO, "failed to stat merge directory").WithPath(mergeDir)
	}
	if !exists {
		return false, nil
	}

	finPath := filepath.Join(mergeDir, storage.MergeFinFileName)
	finExists, err := filesys.Exists(finPath)
	if err != nil {
		return false, bkerrors.NewStorageError(err, bkerrors.ErrorCodeIO, "failed to stat merge-fin marker").WithPath(finPath)
	}
	if !finExists {
		os.RemoveAll(mergeDir)
		return false, nil
	}

	df, err := storage.OpenMergeFin(mergeDir, e.log)
	if err != nil {
		return false, err
	}
	result, err := df.ReadLogRecord(0)
	df.Close()
	if err != nil {
		os.RemoveAll(mergeDir)
		return false, nil
	}
	boundary, err := strconv.ParseUint(string(result.Record.Value), 10, 32)
	if err != nil {
		os.RemoveAll(mergeDir)
		return false, nil
	}

	entries, err := os.ReadDir(e.options.DirPath)
	if err != nil {
		return false, bkerrors.NewStorageError(err, bkerrors.ErrorCodeIO, "failed to read data directory").
			WithPath(e.options.DirPath)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, err := storage.ParseDataFileID(entry.Name())
		if err == nil && uint64(id) < boundary {
			os.Remove(filepath.Join(e.options.DirPath, entry.Name()))
		}
	}
	os.Remove(filepath.Join(e.options.DirPath, storage.HintFileName))
	os.Remove(finPath)

	mergeEntries, err := os.ReadDir(mergeDir)
	if err != nil {
		return false, bkerrors.NewStorageError(err, bkerrors.ErrorCodeIO, "failed to read merge directory").WithPath(mergeDir)
	}
	for _, entry := range mergeEntries {
		if entry.IsDir() {
			continue
		}
		// The inner merge engine (opened by rewriteLiveRecords) is a full
		// Engine and so carries its own lock file and sequence-number
		// sidecar; neither belongs in the main directory.
		if entry.Name() == storage.LockFileName || entry.Name() == storage.SeqNoFileName {
			continue
		}
		src := filepath.Join(mergeDir, entry.Name())
		dst := filepath.Join(e.options.DirPath, entry.Name())
		if err := os.Rename(src, dst); err != nil {
			return false, bkerrors.NewStorageError(err, bkerrors.ErrorCodeIO, "failed to install merged file during startup recovery").
				WithPath(dst)
		}
	}

	if err := os.RemoveAll(mergeDir); err != nil {
		return false, bkerrors.NewStorageError(err, bkerrors.ErrorCodeIO, "failed to remove merge directory after install").WithPath(mergeDir)
	}
	return true, nil
}
