// Package iomanager provides the uniform positioned-read / append-write /
// fsync / size capability every data file is built on, over two interchangeable
// backends: a buffered file handle and a read-only memory map.
package iomanager

import (
	stderrors "errors"

	bkerrors "github.com/iamNilotpal/ignitedb/pkg/errors"
)

// Type selects which backend a Manager is constructed with.
type Type int

const (
	// Buffered wraps a regular *os.File with positioned reads and an
	// append-only writer; every operation is durable once Sync returns.
	Buffered Type = iota
	// Mapped memory-maps the file read-only; Write and Sync are refused.
	// Used only for the startup recovery scan when MmapAtStartup is set.
	Mapped
)

// ErrReadOnly is returned by a Mapped manager's Write and Sync methods. This
// is the "fail loudly" requirement rendered as an ordinary Go error rather
// than a panic: a host process should not crash because recovery happened
// to run with mmap enabled.
var ErrReadOnly = stderrors.New("iomanager: mapped manager is read-only")

// Manager is the capability set every data file operates through,
// regardless of backend.
type Manager interface {
	// ReadAt fills buf starting at offset and returns the number of bytes
	// read. Returns io.EOF, unwrapped, when fewer than len(buf) bytes remain
	// from offset (including offset == Size()); a Mapped manager returns a
	// StorageError for an offset past Size().
	ReadAt(buf []byte, offset int64) (int, error)
	// Write appends buf and returns the number of bytes written.
	Write(buf []byte) (int, error)
	// Sync flushes any buffered writes durably to the underlying device.
	Sync() error
	// Size returns the current length of the underlying file.
	Size() (int64, error)
	// Close releases any resources (file descriptors, mappings) held by
	// the manager.
	Close() error
}

// New opens path with the requested backend, creating it if it does not
// already exist (both backends).
func New(kind Type, path string) (Manager, error) {
	switch kind {
	case Mapped:
		return newMappedFile(path)
	default:
		return newBufferedFile(path)
	}
}

// classifyOpenError turns a raw os error from opening a data file into a
// StorageError carrying the right ErrorCode, reusing the teacher's
// syscall-aware classification helpers.
func classifyOpenError(err error, path string) error {
	if err == nil {
		return nil
	}
	return bkerrors.ClassifyFileOpenError(err, path, "")
}
