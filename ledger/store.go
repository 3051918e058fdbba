package ledger

import (
	"fmt"
	"slices"
	"sync"

	"github.com/lott3ry/libxbit-go/chain"
)

// Store persists lottery requests.
type Store interface {
	// Put inserts the next request (RequestID == Count()+1) or replaces a
	// pending one. Fulfilled requests are immutable.
	Put(req *Request) error

	// Get retrieves a request by id.
	Get(id uint64) (*Request, error)

	// IDsByPlayer returns the player's request ids in creation order.
	IDsByPlayer(player chain.Address) ([]uint64, error)

	// Count returns the number of requests, which is also the last id issued.
	Count() (uint64, error)
}

// ValidatePut checks req against the stored prev (nil if absent) and the
// current request count. Store implementations call it before writing.
func ValidatePut(prev *Request, count uint64, req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request", ErrNilParam)
	}
	if !req.Exists {
		return fmt.Errorf("%w: request %d does not exist", ErrInvalidRequestData, req.RequestID)
	}
	if prev == nil {
		if req.RequestID != count+1 {
			return fmt.Errorf("%w: got %d, next is %d", ErrOutOfOrder, req.RequestID, count+1)
		}
		return nil
	}
	if prev.Fulfilled {
		return fmt.Errorf("%w: %d", ErrImmutable, req.RequestID)
	}
	if !samePurchase(prev, req) {
		return fmt.Errorf("%w: %d", ErrDuplicateRequest, req.RequestID)
	}
	return nil
}

// samePurchase reports whether a and b record the same ticket purchase.
// Only the settlement fields may change when a pending request is replaced.
func samePurchase(a, b *Request) bool {
	return a.Player == b.Player &&
		a.InitialBlock == b.InitialBlock &&
		a.Referrer == b.Referrer &&
		a.ReferrerRatio == b.ReferrerRatio &&
		a.Quantity == b.Quantity &&
		a.USDTIn.Eq(&b.USDTIn) &&
		a.WBTCTicket.Eq(&b.WBTCTicket)
}

// MemStore is an in-memory implementation of Store.
type MemStore struct {
	mu       sync.RWMutex
	requests []*Request // requests[i] has id i+1
	byPlayer map[chain.Address][]uint64
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory request store.
func NewMemStore() *MemStore {
	return &MemStore{byPlayer: make(map[chain.Address][]uint64)}
}

// Put inserts or replaces a request.
func (s *MemStore) Put(req *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prev *Request
	if req != nil && req.RequestID >= 1 && req.RequestID <= uint64(len(s.requests)) {
		prev = s.requests[req.RequestID-1]
	}
	if err := ValidatePut(prev, uint64(len(s.requests)), req); err != nil {
		return err
	}
	if prev != nil {
		s.requests[req.RequestID-1] = req.Clone()
		return nil
	}
	s.requests = append(s.requests, req.Clone())
	s.byPlayer[req.Player] = append(s.byPlayer[req.Player], req.RequestID)
	return nil
}

// Get retrieves a request by id.
func (s *MemStore) Get(id uint64) (*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id == 0 || id > uint64(len(s.requests)) {
		return nil, fmt.Errorf("%w: %d", ErrRequestNotFound, id)
	}
	return s.requests[id-1].Clone(), nil
}

// IDsByPlayer returns the player's request ids in creation order.
func (s *MemStore) IDsByPlayer(player chain.Address) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.byPlayer[player]), nil
}

// Count returns the number of stored requests.
func (s *MemStore) Count() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.requests)), nil
}
