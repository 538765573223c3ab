package filesys

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateDirCreatesMissingDirectory(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "nested", "data")

	require.NoError(t, CreateDir(dir, 0o755, true))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestCreateDirWithoutForceRejectsExisting(t *testing.T) {
	dir := t.TempDir()
	err := CreateDir(dir, 0o755, false)
	require.Error(t, err)
}

func TestCreateDirRejectsFileAtPath(t *testing.T) {
	base := t.TempDir()
	filePath := filepath.Join(base, "not-a-dir")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0o644))

	err := CreateDir(filePath, 0o755, true)
	require.ErrorIs(t, err, ErrIsNotDir)
}

func TestCopyDirExcludingFilesSkipsNamedFiles(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "keep.data"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "flock"), []byte("b"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "nested.data"), []byte("c"), 0o644))

	dest := filepath.Join(t.TempDir(), "out")
	require.NoError(t, CopyDirExcludingFiles(src, dest, "flock"))

	_, err := os.Stat(filepath.Join(dest, "keep.data"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dest, "flock"))
	require.True(t, os.IsNotExist(err))

	_, err = os.Stat(filepath.Join(dest, "sub", "nested.data"))
	require.NoError(t, err)
}

func TestCopyDirExcludingFilesRejectsNonDirSource(t *testing.T) {
	base := t.TempDir()
	filePath := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0o644))

	err := CopyDirExcludingFiles(filePath, filepath.Join(base, "out"))
	require.ErrorIs(t, err, ErrIsNotDir)
}

func TestExistsReportsPresenceAndAbsence(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "present")
	require.NoError(t, os.WriteFile(filePath, []byte("x"), 0o644))

	ok, err := Exists(filePath)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Exists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	require.False(t, ok)
}
