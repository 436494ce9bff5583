package storage

import (
	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("slots")

// BoltDB is a persistent key-value store backed by a single bbolt bucket.
// It trades LevelDB's write throughput for a single-file layout, which the
// CLI prefers for portable state directories.
type BoltDB struct {
	db *bolt.DB
}

// NewBoltDB creates or opens a bbolt database at the specified path.
func NewBoltDB(path string) (*BoltDB, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &BoltDB{db: db}, nil
}

func (bdb *BoltDB) Get(key []byte) ([]byte, error) {
	var value []byte
	err := bdb.db.View(func(tx *bolt.Tx) error {
		stored := tx.Bucket(boltBucket).Get(key)
		if stored != nil {
			value = make([]byte, len(stored))
			copy(value, stored)
		}
		return nil
	})
	return value, err
}

func (bdb *BoltDB) Put(key []byte, value []byte) error {
	return bdb.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put(key, value)
	})
}

func (bdb *BoltDB) Has(key []byte) (bool, error) {
	var ok bool
	err := bdb.db.View(func(tx *bolt.Tx) error {
		ok = tx.Bucket(boltBucket).Get(key) != nil
		return nil
	})
	return ok, err
}

func (bdb *BoltDB) Close() error {
	return bdb.db.Close()
}
