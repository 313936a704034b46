package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	specsyncerrors "specsync/pkg/errors"
)

var checksumBucket = []byte("checksums")

// BoltStore keeps checksum records in a bbolt database, one key per service.
// Suited to hosts that prefer a single db file over a rewritten JSON file.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if needed) the database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, specsyncerrors.NewStoreError("open", "", fmt.Errorf("create store directory: %w", err))
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, specsyncerrors.NewStoreError("open", "", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(checksumBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, specsyncerrors.NewStoreError("open", "", err)
	}

	return &BoltStore{db: db}, nil
}

// Get returns the record for a service, if one exists.
func (s *BoltStore) Get(serviceName string) (Record, bool, error) {
	var rec Record
	var found bool

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(checksumBucket).Get([]byte(serviceName))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("decode record: %w", err)
		}
		found = true
		return nil
	})
	if err != nil {
		return Record{}, false, specsyncerrors.NewStoreError("get", serviceName, err)
	}
	return rec, found, nil
}

// Set writes a service's record in a single transaction.
func (s *BoltStore) Set(serviceName string, rec Record) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		return tx.Bucket(checksumBucket).Put([]byte(serviceName), data)
	})
	if err != nil {
		return specsyncerrors.NewStoreError("set", serviceName, err)
	}
	return nil
}

// List returns all records, stale entries included.
func (s *BoltStore) List() (map[string]Record, error) {
	out := make(map[string]Record)

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(checksumBucket).ForEach(func(k, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode record %s: %w", k, err)
			}
			out[string(k)] = rec
			return nil
		})
	})
	if err != nil {
		return nil, specsyncerrors.NewStoreError("list", "", err)
	}
	return out, nil
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

var _ ChecksumStore = (*BoltStore)(nil)
