// Package storage owns the on-disk Data File abstraction: a single numbered
// append-only segment, plus the fixed-name sidecar files (hint, merge-fin,
// seq-no) that share the same record-framed wire format.
//
// This package was the teacher's original home for segment rotation
// bootstrap logic; that responsibility now belongs to internal/engine
// (which owns the active-file/older-files rotation protocol end to end).
// What remains here is the lower-level concern: one DataFile knows how to
// read and write records at byte offsets inside itself, and nothing about
// which file is "active" or when to roll.
package storage

import (
	stderrors "errors"
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/iamNilotpal/ignitedb/internal/codec"
	"github.com/iamNilotpal/ignitedb/internal/iomanager"
	bkerrors "github.com/iamNilotpal/ignitedb/pkg/errors"
)

// DataFile is a single append-only segment: it owns its write offset and
// wraps an I/O Manager, and can read one record at a given offset.
type DataFile struct {
	FileID  uint32
	writeOff atomic.Uint64

	mu  sync.RWMutex
	io  iomanager.Manager
	log *zap.SugaredLogger
}

// Open opens (creating if absent) the numbered data file fileID inside
// dirPath using the requested I/O backend. WriteOff starts at the file's
// current on-disk size so reopening a partially-written active file resumes
// appends at the right place.
func Open(dirPath string, fileID uint32, kind iomanager.Type, log *zap.SugaredLogger) (*DataFile, error) {
	return open(DataFilePath(dirPath, fileID), fileID, kind, log)
}

// OpenHint opens the fixed-name hint-index sidecar.
func OpenHint(dirPath string, log *zap.SugaredLogger) (*DataFile, error) {
	return open(dirPath+"/"+HintFileName, 0, iomanager.Buffered, log)
}

// OpenMergeFin opens the fixed-name merge-fin completion marker.
func OpenMergeFin(dirPath string, log *zap.SugaredLogger) (*DataFile, error) {
	return open(dirPath+"/"+MergeFinFileName, 0, iomanager.Buffered, log)
}

// OpenSeqNo opens the fixed-name seq-no sequence checkpoint.
func OpenSeqNo(dirPath string, log *zap.SugaredLogger) (*DataFile, error) {
	return open(dirPath+"/"+SeqNoFileName, 0, iomanager.Buffered, log)
}

func open(path string, fileID uint32, kind iomanager.Type, log *zap.SugaredLogger) (*DataFile, error) {
	mgr, err := iomanager.New(kind, path)
	if err != nil {
		return nil, err
	}
	size, err := mgr.Size()
	if err != nil {
		return nil, err
	}

	df := &DataFile{FileID: fileID, io: mgr, log: log}
	df.writeOff.Store(uint64(size))
	return df, nil
}

// WriteOff returns the number of bytes written to this file so far.
func (d *DataFile) WriteOff() uint64 {
	return d.writeOff.Load()
}

// Write appends buf to the file and advances WriteOff. Returns the offset
// the record was written at.
func (d *DataFile) Write(buf []byte) (offset uint64, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	offset = d.writeOff.Load()
	n, err := d.io.Write(buf)
	if err != nil {
		return 0, err
	}
	d.writeOff.Add(uint64(n))
	return offset, nil
}

// WriteHintRecord encodes pos as a NORMAL record whose value is the encoded
// position, keyed by rawKey, and appends it. The hint-file record type is
// deliberately RecordNormal (spec leaves it so for on-disk compatibility),
// not a dedicated type.
func (d *DataFile) WriteHintRecord(rawKey []byte, pos codec.Pos) error {
	record := codec.Record{Type: codec.RecordNormal, Key: rawKey, Value: codec.EncodePos(pos)}
	_, err := d.Write(codec.Encode(record))
	return err
}

// Sync flushes any buffered writes durably.
func (d *DataFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.io.Sync()
}

// Close releases the underlying I/O resources.
func (d *DataFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.io.Close()
}

// SetIOManager rebinds the backend in place, used after the startup scan to
// switch every file from mmap reads back to buffered reads.
func (d *DataFile) SetIOManager(mgr iomanager.Manager) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.io.Close(); err != nil {
		d.log.Warnw("failed to close previous io manager during rebind", "fileID", d.FileID, "error", err)
	}
	d.io = mgr
	return nil
}

// ReadResult is one decoded record plus the exact number of bytes it
// occupied on disk, which callers use to advance a scan cursor.
type ReadResult struct {
	Record codec.Record
	Size   int
}

// errEOF is returned internally when a read hits the clean end-of-scan
// sentinel (both lengths zero); callers translate it into a normal scan
// terminator, never surfacing it further. Kept as a plain sentinel error
// rather than an EngineError: it never leaves this package, so it has no
// reason to carry the engine layer's error taxonomy.
var errEOF = stderrors.New("storage: end of data file reached")

// IsEOF reports whether err is the scan-termination sentinel ReadLogRecord
// returns at a clean end of content.
func IsEOF(err error) bool {
	return err == errEOF
}

// ReadLogRecord decodes one record starting at offset, per the record codec:
// read the fixed header window, decode lengths, read key+value+crc, verify.
func (d *DataFile) ReadLogRecord(offset uint64) (ReadResult, error) {
	headerBuf := make([]byte, codec.MaxHeaderSize)
	n, err := d.readAt(headerBuf, int64(offset))
	if err != nil && !stderrors.Is(err, io.EOF) {
		return ReadResult{}, bkerrors.NewStorageError(err, bkerrors.ErrorCodeHeaderReadFailure, "failed to read record header").
			WithOffset(int(offset))
	}
	if n < codec.MaxHeaderSize {
		headerBuf = headerBuf[:n]
		if len(headerBuf) == 0 {
			return ReadResult{}, errEOF
		}
	}

	header := codec.DecodeHeader(headerBuf)
	if header.IsEOF() {
		return ReadResult{}, errEOF
	}

	payloadSize := int(header.KeyLen) + int(header.ValueLen) + 4
	payload := make([]byte, payloadSize)
	if _, err := d.readAt(payload, int64(offset)+int64(header.HeaderSize)); err != nil {
		return ReadResult{}, bkerrors.NewStorageError(err, bkerrors.ErrorCodePayloadReadFailure, "failed to read record payload").
			WithOffset(int(offset))
	}

	full := make([]byte, header.HeaderSize+payloadSize)
	copy(full, headerBuf[:header.HeaderSize])
	copy(full[header.HeaderSize:], payload)

	if !codec.VerifyCRC(full) {
		return ReadResult{}, bkerrors.NewStorageError(nil, bkerrors.ErrorCodeInvalidRecordCrc, "record failed CRC verification").
			WithOffset(int(offset))
	}

	key := payload[:header.KeyLen]
	value := payload[header.KeyLen : header.KeyLen+header.ValueLen]
	return ReadResult{
		Record: codec.Record{Type: header.Type, Key: key, Value: value},
		Size:   header.HeaderSize + payloadSize,
	}, nil
}

func (d *DataFile) readAt(buf []byte, offset int64) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.io.ReadAt(buf, offset)
}
