package index

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/ignitedb/internal/codec"
)

func TestSkipListIndexGrowsBeyondLevelOne(t *testing.T) {
	idx := newSkipListIndex(Config{})
	for i := 0; i < 500; i++ {
		idx.Put([]byte(fmt.Sprintf("key-%04d", i)), codec.Pos{FileID: uint32(i)})
	}
	require.Equal(t, 500, idx.Size())
	require.Greater(t, idx.level, 1)

	pos, ok := idx.Get([]byte("key-0250"))
	require.True(t, ok)
	require.EqualValues(t, 250, pos.FileID)
}

func TestSkipListIndexConcurrentAccess(t *testing.T) {
	idx := newSkipListIndex(Config{})
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			idx.Put([]byte(fmt.Sprintf("k%d", i)), codec.Pos{FileID: uint32(i)})
		}(i)
	}
	wg.Wait()

	require.Equal(t, 100, idx.Size())
}
