package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iamNilotpal/ignitedb/internal/codec"
	"github.com/iamNilotpal/ignitedb/internal/iomanager"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestDataFileWriteAndReadLogRecord(t *testing.T) {
	dir := t.TempDir()
	df, err := Open(dir, 1, iomanager.Buffered, testLogger())
	require.NoError(t, err)
	defer df.Close()

	record := codec.Record{Type: codec.RecordNormal, Key: []byte("k"), Value: []byte("v")}
	offset, err := df.Write(codec.Encode(record))
	require.NoError(t, err)
	require.EqualValues(t, 0, offset)

	result, err := df.ReadLogRecord(offset)
	require.NoError(t, err)
	require.Equal(t, codec.RecordNormal, result.Record.Type)
	require.Equal(t, "k", string(result.Record.Key))
	require.Equal(t, "v", string(result.Record.Value))
}

func TestDataFileReadLogRecordReturnsEOFAtEndOfContent(t *testing.T) {
	dir := t.TempDir()
	df, err := Open(dir, 1, iomanager.Buffered, testLogger())
	require.NoError(t, err)
	defer df.Close()

	record := codec.Record{Type: codec.RecordNormal, Key: []byte("k"), Value: []byte("v")}
	buf := codec.Encode(record)
	_, err = df.Write(buf)
	require.NoError(t, err)

	_, err = df.ReadLogRecord(uint64(len(buf)))
	require.True(t, IsEOF(err), "expected IsEOF, got %v", err)
}

func TestDataFileScanMultipleRecords(t *testing.T) {
	dir := t.TempDir()
	df, err := Open(dir, 1, iomanager.Buffered, testLogger())
	require.NoError(t, err)
	defer df.Close()

	records := []codec.Record{
		{Type: codec.RecordNormal, Key: []byte("a"), Value: []byte("1")},
		{Type: codec.RecordNormal, Key: []byte("b"), Value: []byte("2")},
		{Type: codec.RecordDeleted, Key: []byte("a")},
	}
	for _, r := range records {
		_, err := df.Write(codec.Encode(r))
		require.NoError(t, err)
	}

	var offset uint64
	var scanned []codec.Record
	for {
		result, err := df.ReadLogRecord(offset)
		if IsEOF(err) {
			break
		}
		require.NoError(t, err)
		scanned = append(scanned, result.Record)
		offset += uint64(result.Size)
	}

	require.Len(t, scanned, 3)
	require.Equal(t, "a", string(scanned[0].Key))
	require.Equal(t, codec.RecordDeleted, scanned[2].Type)
}

func TestDataFileWriteHintRecord(t *testing.T) {
	dir := t.TempDir()
	df, err := OpenHint(dir, testLogger())
	require.NoError(t, err)
	defer df.Close()

	pos := codec.Pos{FileID: 7, Offset: 128, Size: 64}
	require.NoError(t, df.WriteHintRecord([]byte("key"), pos))

	result, err := df.ReadLogRecord(0)
	require.NoError(t, err)
	require.Equal(t, "key", string(result.Record.Key))
	require.Equal(t, pos, codec.DecodePos(result.Record.Value))
}

func TestDataFileReopenResumesWriteOffset(t *testing.T) {
	dir := t.TempDir()
	df1, err := Open(dir, 1, iomanager.Buffered, testLogger())
	require.NoError(t, err)
	record := codec.Record{Type: codec.RecordNormal, Key: []byte("k"), Value: []byte("v")}
	_, err = df1.Write(codec.Encode(record))
	require.NoError(t, err)
	require.NoError(t, df1.Close())

	df2, err := Open(dir, 1, iomanager.Buffered, testLogger())
	require.NoError(t, err)
	defer df2.Close()
	require.Equal(t, df1.WriteOff(), df2.WriteOff())
}

func TestDataFileSetIOManagerRebindsBackend(t *testing.T) {
	dir := t.TempDir()
	df, err := Open(dir, 1, iomanager.Mapped, testLogger())
	require.NoError(t, err)
	defer df.Close()

	buffered, err := iomanager.New(iomanager.Buffered, filepath.Join(dir, DataFileName(1)))
	require.NoError(t, err)
	require.NoError(t, df.SetIOManager(buffered))

	record := codec.Record{Type: codec.RecordNormal, Key: []byte("k"), Value: []byte("v")}
	_, err = df.Write(codec.Encode(record))
	require.NoError(t, err)
}
