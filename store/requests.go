package store

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/lott3ry/libxbit-go/chain"
	"github.com/lott3ry/libxbit-go/ledger"
)

// BoltRequestStore persists lottery requests in bbolt.
type BoltRequestStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ ledger.Store = (*BoltRequestStore)(nil)

// playerKey is player(20) || id(8), so a prefix scan yields ids in order.
func playerKey(player chain.Address, id uint64) []byte {
	k := make([]byte, chain.AddressSize+8)
	copy(k, player[:])
	binary.BigEndian.PutUint64(k[chain.AddressSize:], id)
	return k
}

// countTx returns the highest stored id. The caller holds a transaction.
func countTx(tx *bbolt.Tx) uint64 {
	k, _ := tx.Bucket(bucketRequests).Cursor().Last()
	if k == nil {
		return 0
	}
	return binary.BigEndian.Uint64(k)
}

func getTx(tx *bbolt.Tx, id uint64) (*ledger.Request, error) {
	data := tx.Bucket(bucketRequests).Get(idKey(id))
	if data == nil {
		return nil, nil
	}
	return ledger.DeserializeRequest(data)
}

// Put inserts the next request or replaces a pending one.
func (s *BoltRequestStore) Put(req *ledger.Request) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		var prev *ledger.Request
		if req != nil {
			var err error
			if prev, err = getTx(tx, req.RequestID); err != nil {
				return err
			}
		}
		if err := ledger.ValidatePut(prev, countTx(tx), req); err != nil {
			return err
		}

		data, err := ledger.SerializeRequest(req)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketRequests).Put(idKey(req.RequestID), data); err != nil {
			return fmt.Errorf("store: put request: %w", err)
		}
		if prev == nil {
			if err := tx.Bucket(bucketPlayerRequests).Put(playerKey(req.Player, req.RequestID), []byte{}); err != nil {
				return fmt.Errorf("store: put player index: %w", err)
			}
		}
		return nil
	})
}

// Get retrieves a request by id.
func (s *BoltRequestStore) Get(id uint64) (*ledger.Request, error) {
	var req *ledger.Request
	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		req, err = getTx(tx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return fmt.Errorf("%w: %d", ledger.ErrRequestNotFound, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// IDsByPlayer returns the player's request ids in creation order.
func (s *BoltRequestStore) IDsByPlayer(player chain.Address) ([]uint64, error) {
	var ids []uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketPlayerRequests).Cursor()
		prefix := player[:]
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			ids = append(ids, binary.BigEndian.Uint64(k[chain.AddressSize:]))
		}
		return nil
	})
	return ids, err
}

// Count returns the number of stored requests.
func (s *BoltRequestStore) Count() (uint64, error) {
	var n uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = countTx(tx)
		return nil
	})
	return n, err
}
