// Package engine provides the core database engine implementation for the
// Ignite storage system.
//
// The engine serves as the central coordinator and entry point for all
// database operations. It orchestrates the interaction between three main
// subsystems:
//   - Index: an in-memory or persistent map from key to on-disk position
//   - Storage: the append-only data files and their fixed-name sidecars
//   - Merge: background compaction that reclaims space held by overwritten
//     and deleted keys
//
// Write batches, the merge engine, and the key-value iterator live in this
// same package rather than as separate sub-packages, because each needs
// direct access to the engine's unexported active-file lock, older-files
// map, and index — state that must never be reachable from outside the
// engine's own lock discipline.
package engine

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/iamNilotpal/ignitedb/internal/codec"
	"github.com/iamNilotpal/ignitedb/internal/index"
	"github.com/iamNilotpal/ignitedb/internal/iomanager"
	"github.com/iamNilotpal/ignitedb/internal/storage"
	bkerrors "github.com/iamNilotpal/ignitedb/pkg/errors"
	"github.com/iamNilotpal/ignitedb/pkg/filesys"
	"github.com/iamNilotpal/ignitedb/pkg/options"

	"go.uber.org/zap"
)

// Engine is the main database engine that coordinates the index, storage,
// and merge subsystems. It is safe for concurrent use by multiple
// goroutines.
type Engine struct {
	options *options.Options
	log     *zap.SugaredLogger

	// mu guards activeFile and olderFiles: every structural change to which
	// files exist and which one is active.
	mu         sync.RWMutex
	activeFile *storage.DataFile
	olderFiles map[uint32]*storage.DataFile

	idx index.Indexer

	seqNo         atomic.Uint64
	seqFileExists bool

	isMerging      atomic.Bool
	mergeMu        sync.Mutex
	commitLock     sync.Mutex
	capacitySource CapacitySource

	bytesSinceSync atomic.Uint64
	reclaimSize    atomic.Int64

	lockFile *os.File
	closed   atomic.Bool
}

// Open acquires the directory's advisory lock, loads (or rebuilds) the
// index, and returns a ready-to-use Engine.
func Open(ctx context.Context, opts *options.Options) (*Engine, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	log := opts.Logger
	if err := filesys.CreateDir(opts.DirPath, 0o755, true); err != nil {
		return nil, bkerrors.ClassifyDirectoryCreationError(err, opts.DirPath)
	}

	lockFile, err := acquireLock(opts.DirPath)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		options:    opts,
		log:        log,
		olderFiles: make(map[uint32]*storage.DataFile),
		lockFile:   lockFile,
	}

	mergeInstalled, err := e.loadMergeFiles()
	if err != nil {
		lockFile.Close()
		return nil, err
	}

	if err := e.loadDataFiles(); err != nil {
		lockFile.Close()
		return nil, err
	}

	idx, err := index.New(ctx, opts.IndexType, index.Config{DirPath: opts.DirPath, Logger: log})
	if err != nil {
		e.closeDataFiles()
		lockFile.Close()
		return nil, err
	}
	e.idx = idx

	// A persistent B+-tree index normally trusts its own on-disk state and
	// only needs its seq-no checkpoint restored. But if a merge was just
	// installed, the files that index's positions point into no longer
	// exist under those ids, so it needs the same full rebuild every other
	// backend always does.
	if opts.IndexType != index.BPTree || mergeInstalled {
		if err := e.loadIndexFromHintFile(); err != nil {
			e.closeDataFiles()
			lockFile.Close()
			return nil, err
		}
		if err := e.loadIndexFromDataFiles(); err != nil {
			e.closeDataFiles()
			lockFile.Close()
			return nil, err
		}
		if opts.MmapAtStartup {
			if err := e.resetIOManagers(); err != nil {
				e.closeDataFiles()
				lockFile.Close()
				return nil, err
			}
		}
		if opts.IndexType == index.BPTree {
			e.seqFileExists = true
		}
	} else {
		if err := e.loadSeqNoFromFile(); err != nil {
			e.closeDataFiles()
			lockFile.Close()
			return nil, err
		}
	}

	log.Infow("engine opened", "dirPath", opts.DirPath, "indexType", opts.IndexType)
	return e, nil
}

func validateOptions(opts *options.Options) error {
	if opts.DirPath == "" {
		return bkerrors.NewRequiredFieldError("DirPath").WithCode(bkerrors.ErrorCodeDirPathIsEmpty)
	}
	if opts.DataFileSize == 0 {
		return bkerrors.NewFieldRangeError("DataFileSize", opts.DataFileSize, 1, nil).
			WithCode(bkerrors.ErrorCodeDataFileSizeTooSmall)
	}
	if opts.DataFileMergeRatio < 0 || opts.DataFileMergeRatio > 1 {
		return bkerrors.NewFieldRangeError("DataFileMergeRatio", opts.DataFileMergeRatio, 0, 1).
			WithCode(bkerrors.ErrorCodeInvalidMergeRatio)
	}
	if opts.Logger == nil {
		return bkerrors.NewRequiredFieldError("Logger")
	}
	return nil
}

func acquireLock(dirPath string) (*os.File, error) {
	path := filepath.Join(dirPath, storage.LockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, bkerrors.ClassifyFileOpenError(err, path, "")
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, bkerrors.ErrDatabaseIsUsing(dirPath)
	}
	return f, nil
}

// loadDataFiles discovers every *.data file, opens the highest-numbered one
// as the active file, and opens the rest as read-only older files.
func (e *Engine) loadDataFiles() error {
	ids, err := storage.ListDataFileIDs(e.options.DirPath)
	if err != nil {
		return bkerrors.NewStorageError(err, bkerrors.ErrorCodeIO, "failed to list data files").
			WithPath(e.options.DirPath)
	}

	if len(ids) == 0 {
		df, err := storage.Open(e.options.DirPath, 0, iomanager.Buffered, e.log)
		if err != nil {
			return err
		}
		e.activeFile = df
		return nil
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	kind := iomanager.Buffered
	if e.options.MmapAtStartup {
		kind = iomanager.Mapped
	}

	for _, id := range ids[:len(ids)-1] {
		df, err := storage.Open(e.options.DirPath, id, kind, e.log)
		if err != nil {
			return err
		}
		e.olderFiles[id] = df
	}

	activeID := ids[len(ids)-1]
	activeFile, err := storage.Open(e.options.DirPath, activeID, kind, e.log)
	if err != nil {
		return err
	}
	e.activeFile = activeFile
	return nil
}

// resetIOManagers rebinds every file from mmap reads back to buffered I/O,
// once the startup scan that justified mmap has finished.
func (e *Engine) resetIOManagers() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rebind := func(df *storage.DataFile, fileID uint32) error {
		mgr, err := iomanager.New(iomanager.Buffered, storage.DataFilePath(e.options.DirPath, fileID))
		if err != nil {
			return err
		}
		return df.SetIOManager(mgr)
	}

	if err := rebind(e.activeFile, e.activeFile.FileID); err != nil {
		return err
	}
	for id, df := range e.olderFiles {
		if err := rebind(df, id); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) closeDataFiles() {
	if e.activeFile != nil {
		e.activeFile.Close()
	}
	for _, df := range e.olderFiles {
		df.Close()
	}
}

// Put stores key with value, durably if SyncWrites is set.
func (e *Engine) Put(key, value []byte) error {
	if e.closed.Load() {
		return bkerrors.ErrEngineClosed()
	}
	if len(key) == 0 {
		return bkerrors.ErrKeyIsEmpty()
	}

	record := codec.Record{Type: codec.RecordNormal, Key: codec.EncodeKeyWithSeq(codec.NonTxnSeqNo, key), Value: value}
	pos, err := e.appendLogRecord(record)
	if err != nil {
		return err
	}
	e.updateIndex(key, pos)
	return nil
}

// Get returns the value stored for key, or a KeyNotFound EngineError.
func (e *Engine) Get(key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, bkerrors.ErrEngineClosed()
	}
	if len(key) == 0 {
		return nil, bkerrors.ErrKeyIsEmpty()
	}

	pos, ok := e.idx.Get(key)
	if !ok {
		return nil, bkerrors.ErrKeyNotFound(string(key))
	}
	return e.readValueAt(pos, key)
}

// Delete removes key, appending a tombstone record.
func (e *Engine) Delete(key []byte) error {
	if e.closed.Load() {
		return bkerrors.ErrEngineClosed()
	}
	if len(key) == 0 {
		return bkerrors.ErrKeyIsEmpty()
	}

	if _, ok := e.idx.Get(key); !ok {
		return nil
	}

	record := codec.Record{Type: codec.RecordDeleted, Key: codec.EncodeKeyWithSeq(codec.NonTxnSeqNo, key)}
	pos, err := e.appendLogRecord(record)
	if err != nil {
		return err
	}
	e.reclaimSize.Add(int64(pos.Size))

	if old, had := e.idx.Delete(key); had {
		e.reclaimSize.Add(int64(old.Size))
	}
	return nil
}

func (e *Engine) updateIndex(key []byte, pos codec.Pos) {
	if old, had := e.idx.Put(key, pos); had {
		e.reclaimSize.Add(int64(old.Size))
	}
}

// appendLogRecord serializes record and appends it to the active file,
// rotating to a new active file first if the write would exceed
// DataFileSize.
func (e *Engine) appendLogRecord(record codec.Record) (codec.Pos, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	buf := codec.Encode(record)
	size := uint64(len(buf))

	if e.activeFile.WriteOff()+size > e.options.DataFileSize {
		if err := e.activeFile.Sync(); err != nil {
			return codec.Pos{}, err
		}
		e.olderFiles[e.activeFile.FileID] = e.activeFile

		df, err := storage.Open(e.options.DirPath, e.activeFile.FileID+1, iomanager.Buffered, e.log)
		if err != nil {
			return codec.Pos{}, err
		}
		e.activeFile = df
	}

	offset, err := e.activeFile.Write(buf)
	if err != nil {
		return codec.Pos{}, err
	}

	shouldSync := e.options.SyncWrites
	if !shouldSync && e.options.BytesPerSync > 0 {
		if e.bytesSinceSync.Add(size) >= e.options.BytesPerSync {
			shouldSync = true
		}
	}
	if shouldSync {
		if err := e.activeFile.Sync(); err != nil {
			return codec.Pos{}, err
		}
		e.bytesSinceSync.Store(0)
	}

	return codec.Pos{FileID: e.activeFile.FileID, Offset: offset, Size: uint32(size)}, nil
}

func (e *Engine) readValueAt(pos codec.Pos, key []byte) ([]byte, error) {
	e.mu.RLock()
	df := e.activeFile
	if pos.FileID != df.FileID {
		var ok bool
		df, ok = e.olderFiles[pos.FileID]
		if !ok {
			e.mu.RUnlock()
			return nil, bkerrors.NewStorageError(nil, bkerrors.ErrorCodeDataFileNotFound, "index points at a data file with no open handle").
				WithSegmentID(int(pos.FileID))
		}
	}
	e.mu.RUnlock()

	result, err := df.ReadLogRecord(pos.Offset)
	if err != nil {
		return nil, err
	}
	if result.Record.Type == codec.RecordDeleted {
		return nil, bkerrors.ErrKeyNotFound(string(key))
	}
	return result.Record.Value, nil
}

// Sync flushes the active file durably.
func (e *Engine) Sync() error {
	if e.closed.Load() {
		return bkerrors.ErrEngineClosed()
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activeFile.Sync()
}

// Stat reports the engine's current key count and reclaimable bytes.
type Stat struct {
	KeyCount        int
	DataFileCount   int
	ReclaimableSize int64
	DiskSize        int64
}

// Stat returns a point-in-time snapshot of engine-level statistics.
func (e *Engine) Stat() (Stat, error) {
	if e.closed.Load() {
		return Stat{}, bkerrors.ErrEngineClosed()
	}

	e.mu.RLock()
	fileCount := len(e.olderFiles) + 1
	e.mu.RUnlock()

	var diskSize int64
	entries, err := os.ReadDir(e.options.DirPath)
	if err == nil {
		for _, entry := range entries {
			info, err := entry.Info()
			if err == nil {
				diskSize += info.Size()
			}
		}
	}

	return Stat{
		KeyCount:        e.idx.Size(),
		DataFileCount:   fileCount,
		ReclaimableSize: e.reclaimSize.Load(),
		DiskSize:        diskSize,
	}, nil
}

// Backup copies every file in the data directory except the advisory lock
// into dest.
func (e *Engine) Backup(dest string) error {
	if e.closed.Load() {
		return bkerrors.ErrEngineClosed()
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return filesys.CopyDirExcludingFiles(e.options.DirPath, dest, storage.LockFileName)
}

// Close persists the sequence number checkpoint (if the index is
// persistent), flushes and closes every data file, releases the directory
// lock, and closes the index.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return bkerrors.ErrEngineClosed()
	}

	if e.options.IndexType == index.BPTree {
		if err := e.persistSeqNo(); err != nil {
			e.log.Warnw("failed to persist sequence number checkpoint", "error", err)
		}
	}

	e.mu.Lock()
	var firstErr error
	if err := e.activeFile.Sync(); err != nil {
		firstErr = err
	}
	if err := e.activeFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	for _, df := range e.olderFiles {
		if err := df.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	e.mu.Unlock()

	if err := e.idx.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	unix.Flock(int(e.lockFile.Fd()), unix.LOCK_UN)
	e.lockFile.Close()

	e.log.Infow("engine closed", "dirPath", e.options.DirPath)
	return firstErr
}

func (e *Engine) persistSeqNo() error {
	record := codec.Record{
		Type:  codec.RecordNormal,
		Key:   []byte(codec.SeqNoKey),
		Value: []byte(strconv.FormatUint(e.seqNo.Load(), 10)),
	}

	path := filepath.Join(e.options.DirPath, storage.SeqNoFileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return bkerrors.NewStorageError(err, bkerrors.ErrorCodeIO, "failed to remove previous seq-no checkpoint").
			WithPath(path)
	}

	df, err := storage.OpenSeqNo(e.options.DirPath, e.log)
	if err != nil {
		return err
	}
	defer df.Close()

	if _, err := df.Write(codec.Encode(record)); err != nil {
		return err
	}
	return df.Sync()
}
