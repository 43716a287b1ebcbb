package snapshot

import (
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/cachekv/cachekv/internal/store"
)

var recordsBucket = []byte("records")

// BoltStore persists the mapping in a bbolt database, one entry per key.
// Each value carries the same JSON record object as the file backend, so
// the two backends stay interchangeable (including legacy raw values).
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt creates or opens a bbolt database at the given path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open bolt db %s: %w", path, err)
	}
	return &BoltStore{db: db}, nil
}

// Load reads every record from the records bucket.
func (b *BoltStore) Load() (map[string]store.Record, error) {
	records := make(map[string]store.Record)
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(recordsBucket)
		if bkt == nil {
			return nil
		}
		return bkt.ForEach(func(k, v []byte) error {
			raw := make([]byte, len(v))
			copy(raw, v)
			records[string(k)] = decodeRecord(raw)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: load bolt records: %w", err)
	}
	return records, nil
}

// Save replaces the records bucket with the given mapping in one transaction.
func (b *BoltStore) Save(records map[string]store.Record) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(recordsBucket) != nil {
			if err := tx.DeleteBucket(recordsBucket); err != nil {
				return err
			}
		}
		bkt, err := tx.CreateBucket(recordsBucket)
		if err != nil {
			return err
		}
		for key, rec := range records {
			data, err := encodeRecord(rec)
			if err != nil {
				return err
			}
			if err := bkt.Put([]byte(key), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("snapshot: save bolt records: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (b *BoltStore) Close() error {
	return b.db.Close()
}
