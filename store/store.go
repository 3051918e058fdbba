// Package store persists the request ledger and the referrer registry in a
// single bbolt database.
package store

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	bucketRequests       = []byte("requests")
	bucketPlayerRequests = []byte("player_requests")
	bucketReferrers      = []byte("referrers")
)

// BoltStore wraps a bbolt database for lottery requests and referrer ratios.
type BoltStore struct {
	db *bbolt.DB
}

// Open opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func Open(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketRequests, bucketPlayerRequests, bucketReferrers} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Requests returns a ledger.Store backed by this database.
func (s *BoltStore) Requests() *BoltRequestStore { return &BoltRequestStore{db: s.db} }

// Referrers returns a referrer.Store backed by this database.
func (s *BoltStore) Referrers() *BoltReferrerStore { return &BoltReferrerStore{db: s.db} }

// idKey encodes a request id as an 8-byte big-endian key for sorted storage.
func idKey(id uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, id)
	return k
}
