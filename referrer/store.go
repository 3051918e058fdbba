package referrer

import (
	"slices"
	"sync"

	"github.com/lott3ry/libxbit-go/chain"
)

// Store persists referrer ratios.
type Store interface {
	// PutRatio sets addr's ratio.
	PutRatio(addr chain.Address, ratio uint32) error

	// GetRatio returns addr's ratio and whether it was ever registered.
	GetRatio(addr chain.Address) (uint32, bool, error)

	// ListEntries returns every entry ordered by address (for backup/export).
	ListEntries() ([]Entry, error)
}

// MemStore is an in-memory implementation of Store.
type MemStore struct {
	mu     sync.RWMutex
	ratios map[chain.Address]uint32
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory referrer store.
func NewMemStore() *MemStore {
	return &MemStore{ratios: make(map[chain.Address]uint32)}
}

// PutRatio sets addr's ratio.
func (s *MemStore) PutRatio(addr chain.Address, ratio uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratios[addr] = ratio
	return nil
}

// GetRatio returns addr's ratio.
func (s *MemStore) GetRatio(addr chain.Address) (uint32, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.ratios[addr]
	return r, ok, nil
}

// ListEntries returns every entry ordered by address.
func (s *MemStore) ListEntries() ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]Entry, 0, len(s.ratios))
	for addr, r := range s.ratios {
		entries = append(entries, Entry{Address: addr, RatioPerMillion: r})
	}
	slices.SortFunc(entries, func(a, b Entry) int { return a.Address.Compare(b.Address) })
	return entries, nil
}
