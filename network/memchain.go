package network

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/bsv-blockchain/go-sdk/chainhash"
)

// MemChain is an in-memory chain of empty blocks for simulations and tests.
// Block hashes are a double-SHA256 chain seeded from a label, so two chains
// built from the same seed agree block for block. Safe for concurrent use.
type MemChain struct {
	mu     sync.RWMutex
	hashes []chainhash.Hash
}

var _ ChainService = (*MemChain)(nil)

// NewMemChain creates a chain holding only its genesis block (height 0).
func NewMemChain(seed string) *MemChain {
	return &MemChain{hashes: []chainhash.Hash{chainhash.DoubleHashH([]byte(seed))}}
}

// Mine appends n blocks and returns the new tip height.
func (m *MemChain) Mine(n int) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		prev := m.hashes[len(m.hashes)-1]
		var buf [chainhash.HashSize + 8]byte
		copy(buf[:], prev[:])
		binary.BigEndian.PutUint64(buf[chainhash.HashSize:], uint64(len(m.hashes)))
		m.hashes = append(m.hashes, chainhash.DoubleHashH(buf[:]))
	}
	return uint64(len(m.hashes) - 1)
}

// BlockNumber returns the tip height.
func (m *MemChain) BlockNumber(_ context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.hashes) - 1), nil
}

// BlockHash returns the hash of the block at height.
func (m *MemChain) BlockHash(_ context.Context, height uint64) (chainhash.Hash, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if height >= uint64(len(m.hashes)) {
		return chainhash.Hash{}, fmt.Errorf("%w: height %d, tip %d", ErrBlockNotFound, height, len(m.hashes)-1)
	}
	return m.hashes[height], nil
}
