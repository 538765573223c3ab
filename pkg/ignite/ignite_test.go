package ignite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/ignitedb/pkg/options"
)

func openTestInstance(t *testing.T) *Instance {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	inst, err := Open(context.Background(), options.WithDefaultOptions(), options.WithDirPath(dir))
	require.NoError(t, err)
	t.Cleanup(func() { inst.Close(context.Background()) })
	return inst
}

func TestInstancePutGetDelete(t *testing.T) {
	inst := openTestInstance(t)
	ctx := context.Background()

	require.NoError(t, inst.Put(ctx, "k", []byte("v")))
	val, err := inst.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), val)

	require.NoError(t, inst.Delete(ctx, "k"))
	_, err = inst.Get(ctx, "k")
	require.Error(t, err)
}

func TestInstanceStatAndBackup(t *testing.T) {
	inst := openTestInstance(t)
	ctx := context.Background()

	require.NoError(t, inst.Put(ctx, "k", []byte("v")))

	stat, err := inst.Stat()
	require.NoError(t, err)
	require.Equal(t, 1, stat.KeyCount)

	dest := filepath.Join(t.TempDir(), "backup")
	require.NoError(t, inst.Backup(dest))
}

func TestInstanceIteratorAndFold(t *testing.T) {
	inst := openTestInstance(t)
	ctx := context.Background()

	require.NoError(t, inst.Put(ctx, "a", []byte("1")))
	require.NoError(t, inst.Put(ctx, "b", []byte("2")))

	it := inst.NewIterator(options.IteratorOptions{})
	defer it.Close()

	var keys []string
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
	}
	require.Equal(t, []string{"a", "b"}, keys)

	var folded int
	require.NoError(t, inst.Fold(func(key, value []byte) (bool, error) {
		folded++
		return true, nil
	}))
	require.Equal(t, 2, folded)
}

func TestInstanceWriteBatch(t *testing.T) {
	inst := openTestInstance(t)
	ctx := context.Background()

	wb, err := inst.NewWriteBatch(options.NewDefaultBatchOptions())
	require.NoError(t, err)
	require.NoError(t, wb.Put([]byte("k"), []byte("v")))
	require.NoError(t, wb.Commit())

	val, err := inst.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), val)
}
