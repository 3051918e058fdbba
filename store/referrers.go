package store

import (
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/lott3ry/libxbit-go/chain"
	"github.com/lott3ry/libxbit-go/referrer"
)

// BoltReferrerStore persists referrer ratios in bbolt.
type BoltReferrerStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ referrer.Store = (*BoltReferrerStore)(nil)

// PutRatio sets addr's ratio.
func (s *BoltReferrerStore) PutRatio(addr chain.Address, ratio uint32) error {
	v := make([]byte, 4)
	binary.BigEndian.PutUint32(v, ratio)
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketReferrers).Put(addr[:], v); err != nil {
			return fmt.Errorf("store: put referrer: %w", err)
		}
		return nil
	})
}

// GetRatio returns addr's ratio and whether it was ever registered.
func (s *BoltReferrerStore) GetRatio(addr chain.Address) (uint32, bool, error) {
	var (
		ratio uint32
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketReferrers).Get(addr[:])
		if v == nil {
			return nil
		}
		if len(v) != 4 {
			return fmt.Errorf("store: referrer %s: bad value length %d", addr, len(v))
		}
		ratio, found = binary.BigEndian.Uint32(v), true
		return nil
	})
	return ratio, found, err
}

// ListEntries returns every entry ordered by address.
func (s *BoltReferrerStore) ListEntries() ([]referrer.Entry, error) {
	var entries []referrer.Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketReferrers).ForEach(func(k, v []byte) error {
			if len(k) != chain.AddressSize || len(v) != 4 {
				return fmt.Errorf("store: malformed referrer entry")
			}
			var e referrer.Entry
			copy(e.Address[:], k)
			e.RatioPerMillion = binary.BigEndian.Uint32(v)
			entries = append(entries, e)
			return nil
		})
	})
	return entries, err
}
