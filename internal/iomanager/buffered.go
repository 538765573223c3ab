package iomanager

import (
	"io"
	"os"
	"sync"

	bkerrors "github.com/iamNilotpal/ignitedb/pkg/errors"
)

// bufferedFile is the default Manager: a regular file opened for append and
// positioned reads. Append-writes are serialized through mu so that
// concurrent callers never interleave partial writes; reads take no lock
// since pread is already positioned and safe for concurrent use on the same
// descriptor.
type bufferedFile struct {
	path string
	file *os.File
	mu   sync.Mutex
}

func newBufferedFile(path string) (Manager, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, classifyOpenError(err, path)
	}
	return &bufferedFile{path: path, file: f}, nil
}

func (b *bufferedFile) ReadAt(buf []byte, offset int64) (int, error) {
	n, err := b.file.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return n, bkerrors.NewStorageError(err, bkerrors.ErrorCodeIO, "failed to read data file").
			WithPath(b.path).WithOffset(int(offset))
	}
	return n, err
}

func (b *bufferedFile) Write(buf []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, err := b.file.Write(buf)
	if err != nil {
		return n, bkerrors.NewStorageError(err, bkerrors.ErrorCodeIO, "failed to write data file").
			WithPath(b.path)
	}
	return n, nil
}

func (b *bufferedFile) Sync() error {
	if err := b.file.Sync(); err != nil {
		return bkerrors.ClassifySyncError(err, "", b.path, 0)
	}
	return nil
}

func (b *bufferedFile) Size() (int64, error) {
	info, err := b.file.Stat()
	if err != nil {
		return 0, bkerrors.NewStorageError(err, bkerrors.ErrorCodeIO, "failed to stat data file").
			WithPath(b.path)
	}
	return info.Size(), nil
}

func (b *bufferedFile) Close() error {
	return b.file.Close()
}
