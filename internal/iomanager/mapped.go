package iomanager

import (
	"io"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	bkerrors "github.com/iamNilotpal/ignitedb/pkg/errors"
)

// mappedFile is a read-only memory-mapped view of a data file, used only
// during the startup recovery scan when MmapAtStartup is set. Write and
// Sync are unsupported; after the scan completes the engine rebinds every
// file to a bufferedFile via DataFile.SetIOManager.
type mappedFile struct {
	path string
	data []byte
	mu   sync.RWMutex
}

func newMappedFile(path string) (Manager, error) {
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, classifyOpenError(err, path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, bkerrors.NewStorageError(err, bkerrors.ErrorCodeIO, "failed to stat data file for mmap").
			WithPath(path)
	}

	// mmap of a zero-length file is invalid; a freshly created active file
	// legitimately has zero bytes, so fall back to an empty in-memory view.
	if info.Size() == 0 {
		return &mappedFile{path: path, data: nil}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, bkerrors.NewStorageError(err, bkerrors.ErrorCodeIO, "failed to mmap data file").
			WithPath(path)
	}
	return &mappedFile{path: path, data: data}, nil
}

func (m *mappedFile) ReadAt(buf []byte, offset int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if offset < 0 || offset > int64(len(m.data)) {
		return 0, bkerrors.NewStorageError(nil, bkerrors.ErrorCodeIO, "read past end of mapped data file").
			WithPath(m.path).WithOffset(int(offset))
	}
	// offset == len(data) is a clean end of content, exactly like os.File's
	// ReadAt at EOF; callers rely on this to terminate a scan rather than
	// treat it as corruption.
	if offset == int64(len(m.data)) {
		return 0, io.EOF
	}

	n := copy(buf, m.data[offset:])
	if n < len(buf) {
		return n, io.EOF
	}
	return n, nil
}

func (m *mappedFile) Write([]byte) (int, error) {
	return 0, ErrReadOnly
}

func (m *mappedFile) Sync() error {
	return ErrReadOnly
}

func (m *mappedFile) Size() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.data)), nil
}

func (m *mappedFile) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}
