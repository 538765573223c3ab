package engine

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/iamNilotpal/ignitedb/internal/codec"
	"github.com/iamNilotpal/ignitedb/internal/storage"
	bkerrors "github.com/iamNilotpal/ignitedb/pkg/errors"
)

// loadIndexFromHintFile replays the hint-index sidecar left by a previous
// merge, if one exists. Every record in it is an already-deduplicated,
// already-live key: no transaction buffering is needed here, since the
// merge that produced it only ever writes the winning version of each key.
func (e *Engine) loadIndexFromHintFile() error {
	df, err := storage.OpenHint(e.options.DirPath, e.log)
	if err != nil {
		return err
	}
	defer df.Close()

	if df.WriteOff() == 0 {
		return nil
	}

	var offset uint64
	for {
		result, err := df.ReadLogRecord(offset)
		if err != nil {
			if storage.IsEOF(err) {
				break
			}
			return err
		}
		pos := codec.DecodePos(result.Record.Value)
		e.idx.Put(result.Record.Key, pos)
		offset += uint64(result.Size)
	}
	return nil
}

// loadIndexFromDataFiles scans every data file in ascending id order and
// replays its records into the index, reconstructing exactly the state a
// live engine would have accumulated. Sequence numbers greater than
// NonTxnSeqNo are buffered per transaction until a matching TXN_FINISHED
// record is observed; transactions left incomplete at end of scan are
// discarded and logged at Warn, never applied.
func (e *Engine) loadIndexFromDataFiles() error {
	e.mu.RLock()
	ids := make([]uint32, 0, len(e.olderFiles)+1)
	for id := range e.olderFiles {
		ids = append(ids, id)
	}
	ids = append(ids, e.activeFile.FileID)
	e.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var maxSeqNo uint64
	pending := make(map[uint64][]pendingWrite)

	for _, fileID := range ids {
		df := e.activeFile
		if fileID != df.FileID {
			e.mu.RLock()
			df = e.olderFiles[fileID]
			e.mu.RUnlock()
		}

		var offset uint64
		for {
			result, err := df.ReadLogRecord(offset)
			if err != nil {
				if storage.IsEOF(err) {
					break
				}
				return err
			}

			size := uint64(result.Size)
			pos := codec.Pos{FileID: fileID, Offset: offset, Size: uint32(size)}
			offset += size

			seqNo, rawKey := codec.ParseKeyWithSeq(result.Record.Key)
			if seqNo > maxSeqNo {
				maxSeqNo = seqNo
			}

			if result.Record.Type == codec.RecordTxnFinished {
				if string(rawKey) != codec.TxnFinKey {
					continue
				}
				for _, w := range pending[seqNo] {
					e.applyRecoveredWrite(w.rawKey, w.recordType, w.pos)
				}
				delete(pending, seqNo)
				continue
			}

			if seqNo == codec.NonTxnSeqNo {
				e.applyRecoveredWrite(rawKey, result.Record.Type, pos)
				continue
			}

			pending[seqNo] = append(pending[seqNo], pendingWrite{
				rawKey:     append([]byte(nil), rawKey...),
				recordType: result.Record.Type,
				pos:        pos,
			})
		}
	}

	for seqNo, writes := range pending {
		for _, w := range writes {
			e.log.Warnw("discarding record of incomplete transaction found during recovery",
				"seqNo", seqNo, "fileID", w.pos.FileID, "offset", w.pos.Offset)
		}
	}

	e.seqNo.Store(maxSeqNo)
	return nil
}

type pendingWrite struct {
	rawKey     []byte
	recordType codec.RecordType
	pos        codec.Pos
}

func (e *Engine) applyRecoveredWrite(key []byte, recordType codec.RecordType, pos codec.Pos) {
	if recordType == codec.RecordDeleted {
		if old, had := e.idx.Delete(key); had {
			e.reclaimSize.Add(int64(old.Size))
		}
		e.reclaimSize.Add(int64(pos.Size))
		return
	}
	if old, had := e.idx.Put(key, pos); had {
		e.reclaimSize.Add(int64(old.Size))
	}
}

// loadSeqNoFromFile reads the seq-no checkpoint written at the previous
// close, used instead of a full data-file scan under the persistent index
// backend, which already has the rest of the index on disk. Its absence on
// a non-empty directory means this engine cannot safely anchor new write
// batches until one is established.
func (e *Engine) loadSeqNoFromFile() error {
	df, err := storage.OpenSeqNo(e.options.DirPath, e.log)
	if err != nil {
		return err
	}

	if df.WriteOff() == 0 {
		e.seqFileExists = false
		return df.Close()
	}

	result, err := df.ReadLogRecord(0)
	if err != nil {
		df.Close()
		return err
	}
	if string(result.Record.Key) != codec.SeqNoKey {
		df.Close()
		return bkerrors.NewStorageError(nil, bkerrors.ErrorCodeDataDirCorrupted, "seq-no checkpoint has an unexpected key").
			WithPath(e.options.DirPath)
	}

	seqNo, err := strconv.ParseUint(string(result.Record.Value), 10, 64)
	if err != nil {
		df.Close()
		return bkerrors.NewStorageError(err, bkerrors.ErrorCodeDataDirCorrupted, "seq-no checkpoint value is not a valid integer").
			WithPath(e.options.DirPath)
	}

	e.seqNo.Store(seqNo)
	e.seqFileExists = true

	if err := df.Close(); err != nil {
		return err
	}

	// Consumed; the checkpoint is rewritten fresh at the next graceful close.
	path := filepath.Join(e.options.DirPath, storage.SeqNoFileName)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return bkerrors.NewStorageError(err, bkerrors.ErrorCodeIO, "failed to remove consumed seq-no checkpoint").
			WithPath(path)
	}
	return nil
}
