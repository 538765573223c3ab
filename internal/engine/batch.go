package engine

import (
	"sync"

	"github.com/iamNilotpal/ignitedb/internal/codec"
	"github.com/iamNilotpal/ignitedb/internal/index"
	bkerrors "github.com/iamNilotpal/ignitedb/pkg/errors"
	"github.com/iamNilotpal/ignitedb/pkg/options"
)

// WriteBatch stages a set of writes under one sequence number and makes
// them visible atomically on Commit: either every staged write lands in the
// index, or (on a crash partway through appending) recovery sees an
// incomplete transaction and discards all of it.
type WriteBatch struct {
	engine  *Engine
	opts    options.BatchOptions
	mu      sync.Mutex
	pending map[string]batchWrite
}

type batchWrite struct {
	recordType codec.RecordType
	value      []byte
}

// NewWriteBatch opens a batch against e. Fails if e is closed, or if e uses
// the persistent index backend and has no sequence-number checkpoint to
// anchor transaction replay (the backend was opened fresh with no prior
// graceful close to establish one).
func (e *Engine) NewWriteBatch(opts options.BatchOptions) (*WriteBatch, error) {
	if e.closed.Load() {
		return nil, bkerrors.ErrEngineClosed()
	}
	if e.options.IndexType == index.BPTree && !e.seqFileExists {
		return nil, bkerrors.ErrUnableToUseWriteBatch()
	}
	return &WriteBatch{engine: e, opts: opts, pending: make(map[string]batchWrite)}, nil
}

// Put stages a key/value write, replacing any earlier staged write for the
// same key in this batch.
func (wb *WriteBatch) Put(key, value []byte) error {
	if len(key) == 0 {
		return bkerrors.ErrKeyIsEmpty()
	}

	wb.mu.Lock()
	defer wb.mu.Unlock()

	if _, exists := wb.pending[string(key)]; !exists && len(wb.pending) >= wb.opts.MaxBatchNum {
		return bkerrors.ErrExceedMaxBatchNum(len(wb.pending), wb.opts.MaxBatchNum)
	}
	wb.pending[string(key)] = batchWrite{recordType: codec.RecordNormal, value: append([]byte(nil), value...)}
	return nil
}

// Delete stages a tombstone write for key. If the index holds no entry for
// key, nothing is staged and any write already staged for key in this batch
// is dropped.
func (wb *WriteBatch) Delete(key []byte) error {
	if len(key) == 0 {
		return bkerrors.ErrKeyIsEmpty()
	}

	wb.mu.Lock()
	defer wb.mu.Unlock()

	if _, ok := wb.engine.idx.Get(key); !ok {
		delete(wb.pending, string(key))
		return nil
	}

	if _, exists := wb.pending[string(key)]; !exists && len(wb.pending) >= wb.opts.MaxBatchNum {
		return bkerrors.ErrExceedMaxBatchNum(len(wb.pending), wb.opts.MaxBatchNum)
	}
	wb.pending[string(key)] = batchWrite{recordType: codec.RecordDeleted}
	return nil
}

// Commit appends every staged write under one shared sequence number,
// followed by a TXN_FINISHED finalizer record, then applies them all to the
// index. commitLock serializes commits against one another so sequence
// numbers are handed out and consumed in the same order they were
// allocated.
func (wb *WriteBatch) Commit() error {
	wb.mu.Lock()
	defer wb.mu.Unlock()

	if len(wb.pending) == 0 {
		return nil
	}

	e := wb.engine
	e.commitLock.Lock()
	defer e.commitLock.Unlock()

	seqNo := e.seqNo.Add(1)
	positions := make(map[string]codec.Pos, len(wb.pending))

	for key, w := range wb.pending {
		record := codec.Record{
			Type:  w.recordType,
			Key:   codec.EncodeKeyWithSeq(seqNo, []byte(key)),
			Value: w.value,
		}
		pos, err := e.appendLogRecord(record)
		if err != nil {
			return err
		}
		positions[key] = pos
	}

	finRecord := codec.Record{
		Type: codec.RecordTxnFinished,
		Key:  codec.EncodeKeyWithSeq(seqNo, []byte(codec.TxnFinKey)),
	}
	if _, err := e.appendLogRecord(finRecord); err != nil {
		return err
	}

	if wb.opts.SyncWrites {
		if err := e.Sync(); err != nil {
			return err
		}
	}

	for key, w := range wb.pending {
		pos := positions[key]
		if w.recordType == codec.RecordDeleted {
			if old, had := e.idx.Delete([]byte(key)); had {
				e.reclaimSize.Add(int64(old.Size))
			}
			e.reclaimSize.Add(int64(pos.Size))
			continue
		}
		e.updateIndex([]byte(key), pos)
	}

	wb.pending = make(map[string]batchWrite)
	return nil
}
