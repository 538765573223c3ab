package iomanager

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferedFileWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "000000001.data")
	mgr, err := New(Buffered, path)
	require.NoError(t, err)
	defer mgr.Close()

	n, err := mgr.Write([]byte("hello world"))
	require.NoError(t, err)
	require.Equal(t, 11, n)

	size, err := mgr.Size()
	require.NoError(t, err)
	require.EqualValues(t, 11, size)

	buf := make([]byte, 5)
	n, err = mgr.ReadAt(buf, 0)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(buf))
}

func TestBufferedFileReadAtEOFReturnsIOEOF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "000000001.data")
	mgr, err := New(Buffered, path)
	require.NoError(t, err)
	defer mgr.Close()

	_, err = mgr.Write([]byte("abc"))
	require.NoError(t, err)

	buf := make([]byte, 11)
	n, err := mgr.ReadAt(buf, 3)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 0, n)
}

func TestBufferedFileSyncAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "000000001.data")
	mgr, err := New(Buffered, path)
	require.NoError(t, err)

	_, err = mgr.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, mgr.Sync())
	require.NoError(t, mgr.Close())
}

func TestBufferedFileReopenResumesAtExistingSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "000000001.data")
	mgr1, err := New(Buffered, path)
	require.NoError(t, err)
	_, err = mgr1.Write([]byte("persisted"))
	require.NoError(t, err)
	require.NoError(t, mgr1.Close())

	mgr2, err := New(Buffered, path)
	require.NoError(t, err)
	defer mgr2.Close()

	size, err := mgr2.Size()
	require.NoError(t, err)
	require.EqualValues(t, len("persisted"), size)
}
