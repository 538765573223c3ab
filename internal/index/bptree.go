package index

import (
	"context"
	"path/filepath"

	"go.etcd.io/bbolt"

	"github.com/iamNilotpal/ignitedb/internal/codec"
	"github.com/iamNilotpal/ignitedb/internal/storage"
	bkerrors "github.com/iamNilotpal/ignitedb/pkg/errors"
)

var bptreeBucket = []byte(storage.BPTreeBucketName)

// bptreeIndex persists the index itself to a go.etcd.io/bbolt file rather
// than rebuilding it from a data-file scan on every open. Every key's value
// is its codec.EncodePos encoding, stored in a single bucket.
type bptreeIndex struct {
	db *bbolt.DB
}

func newBPTreeIndex(_ context.Context, cfg Config) (*bptreeIndex, error) {
	path := filepath.Join(cfg.DirPath, storage.BPTreeFileName)
	db, err := bbolt.Open(path, 0o644, bbolt.DefaultOptions)
	if err != nil {
		return nil, bkerrors.NewStorageError(err, bkerrors.ErrorCodeIO, "failed to open persistent index file").
			WithPath(path)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bptreeBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, bkerrors.NewIndexCorruptionError("initialize bucket", 0, err)
	}

	return &bptreeIndex{db: db}, nil
}

func (b *bptreeIndex) Put(key []byte, pos codec.Pos) (codec.Pos, bool) {
	var old codec.Pos
	var had bool

	_ = b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bptreeBucket)
		if existing := bucket.Get(key); existing != nil {
			old = codec.DecodePos(existing)
			had = true
		}
		return bucket.Put(key, codec.EncodePos(pos))
	})
	return old, had
}

func (b *bptreeIndex) Get(key []byte) (codec.Pos, bool) {
	var pos codec.Pos
	var found bool

	_ = b.db.View(func(tx *bbolt.Tx) error {
		val := tx.Bucket(bptreeBucket).Get(key)
		if val == nil {
			return nil
		}
		pos = codec.DecodePos(val)
		found = true
		return nil
	})
	return pos, found
}

func (b *bptreeIndex) Delete(key []byte) (codec.Pos, bool) {
	var old codec.Pos
	var had bool

	_ = b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bptreeBucket)
		if existing := bucket.Get(key); existing != nil {
			old = codec.DecodePos(existing)
			had = true
		}
		return bucket.Delete(key)
	})
	return old, had
}

func (b *bptreeIndex) Size() int {
	var n int
	_ = b.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bptreeBucket).Stats().KeyN
		return nil
	})
	return n
}

func (b *bptreeIndex) Iterator(opts IteratorOptions) Iterator {
	var snapshot []item

	_ = b.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket(bptreeBucket).Cursor()
		snapshot = make([]item, 0, tx.Bucket(bptreeBucket).Stats().KeyN)
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			key := append([]byte(nil), k...)
			snapshot = append(snapshot, item{key: key, pos: codec.DecodePos(v)})
		}
		return nil
	})

	return newMaterializedIterator(snapshot, opts)
}

func (b *bptreeIndex) Close() error {
	return b.db.Close()
}
