package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/ignitedb/internal/codec"
)

func TestBPTreeIndexPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{DirPath: dir, Logger: testLogger()}

	idx1, err := New(context.Background(), BPTree, cfg)
	require.NoError(t, err)
	idx1.Put([]byte("durable"), codec.Pos{FileID: 3, Offset: 99, Size: 7})
	require.NoError(t, idx1.Close())

	idx2, err := New(context.Background(), BPTree, cfg)
	require.NoError(t, err)
	defer idx2.Close()

	pos, ok := idx2.Get([]byte("durable"))
	require.True(t, ok)
	require.Equal(t, codec.Pos{FileID: 3, Offset: 99, Size: 7}, pos)
}
