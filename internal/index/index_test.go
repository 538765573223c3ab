package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iamNilotpal/ignitedb/internal/codec"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func newBackend(t *testing.T, kind Type) Indexer {
	t.Helper()
	idx, err := New(context.Background(), kind, Config{DirPath: t.TempDir(), Logger: testLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func allBackends() []Type {
	return []Type{BTree, SkipList, BPTree}
}

func TestNewRequiresLogger(t *testing.T) {
	_, err := New(context.Background(), BTree, Config{DirPath: t.TempDir()})
	require.Error(t, err)
}

func TestIndexerPutGetDelete(t *testing.T) {
	for _, kind := range allBackends() {
		idx := newBackend(t, kind)

		_, had := idx.Get([]byte("missing"))
		require.False(t, had)

		old, had := idx.Put([]byte("a"), codec.Pos{FileID: 1, Offset: 0, Size: 10})
		require.False(t, had)
		require.Zero(t, old)

		pos, ok := idx.Get([]byte("a"))
		require.True(t, ok)
		require.Equal(t, uint32(1), pos.FileID)

		old, had = idx.Put([]byte("a"), codec.Pos{FileID: 2, Offset: 5, Size: 20})
		require.True(t, had)
		require.Equal(t, uint32(1), old.FileID)

		old, had = idx.Delete([]byte("a"))
		require.True(t, had)
		require.Equal(t, uint32(2), old.FileID)

		_, had = idx.Delete([]byte("a"))
		require.False(t, had)
	}
}

func TestIndexerSize(t *testing.T) {
	for _, kind := range allBackends() {
		idx := newBackend(t, kind)
		require.Equal(t, 0, idx.Size())

		idx.Put([]byte("a"), codec.Pos{})
		idx.Put([]byte("b"), codec.Pos{})
		require.Equal(t, 2, idx.Size())

		idx.Delete([]byte("a"))
		require.Equal(t, 1, idx.Size())
	}
}

func TestIndexerIteratorOrderingAndSeek(t *testing.T) {
	for _, kind := range allBackends() {
		idx := newBackend(t, kind)
		keys := []string{"banana", "apple", "cherry"}
		for i, k := range keys {
			idx.Put([]byte(k), codec.Pos{FileID: uint32(i)})
		}

		it := idx.Iterator(IteratorOptions{})
		var got []string
		for it.Rewind(); it.Valid(); it.Next() {
			got = append(got, string(it.Key()))
		}
		it.Close()
		require.Equal(t, []string{"apple", "banana", "cherry"}, got)

		it = idx.Iterator(IteratorOptions{})
		it.Seek([]byte("banana"))
		require.True(t, it.Valid())
		require.Equal(t, "banana", string(it.Key()))
		it.Close()
	}
}

func TestIndexerIteratorReverse(t *testing.T) {
	for _, kind := range allBackends() {
		idx := newBackend(t, kind)
		for _, k := range []string{"a", "b", "c"} {
			idx.Put([]byte(k), codec.Pos{})
		}

		it := idx.Iterator(IteratorOptions{Reverse: true})
		var got []string
		for it.Rewind(); it.Valid(); it.Next() {
			got = append(got, string(it.Key()))
		}
		it.Close()
		require.Equal(t, []string{"c", "b", "a"}, got)
	}
}

func TestIndexerIteratorPrefix(t *testing.T) {
	for _, kind := range allBackends() {
		idx := newBackend(t, kind)
		for _, k := range []string{"user:1", "user:2", "order:1"} {
			idx.Put([]byte(k), codec.Pos{})
		}

		it := idx.Iterator(IteratorOptions{Prefix: []byte("user:")})
		var got []string
		for it.Rewind(); it.Valid(); it.Next() {
			got = append(got, string(it.Key()))
		}
		it.Close()
		require.Equal(t, []string{"user:1", "user:2"}, got)
	}
}
