package token

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/lott3ry/libxbit-go/chain"
)

type allowanceKey struct {
	owner, spender chain.Address
}

type tokenState struct {
	supply     uint256.Int
	balances   map[chain.Address]uint256.Int
	allowances map[allowanceKey]uint256.Int
}

func newTokenState() *tokenState {
	return &tokenState{
		balances:   make(map[chain.Address]uint256.Int),
		allowances: make(map[allowanceKey]uint256.Int),
	}
}

func (s *tokenState) clone() *tokenState {
	c := &tokenState{
		supply:     s.supply,
		balances:   make(map[chain.Address]uint256.Int, len(s.balances)),
		allowances: make(map[allowanceKey]uint256.Int, len(s.allowances)),
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.allowances {
		c.allowances[k] = v
	}
	return c
}

func (s *tokenState) setBalance(owner chain.Address, bal uint256.Int) {
	if bal.IsZero() {
		delete(s.balances, owner)
		return
	}
	s.balances[owner] = bal
}

// move is the shared transfer path. The caller holds the ledger lock.
func (s *tokenState) move(from, to chain.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return fmt.Errorf("%w: transfer to the zero address", ErrTransferFailed)
	}
	fromBal := s.balances[from]
	if fromBal.Lt(amount) {
		return ErrInsufficientBalance
	}
	if from == to {
		return nil
	}
	fromBal.Sub(&fromBal, amount)
	s.setBalance(from, fromBal)
	toBal := s.balances[to]
	toBal.Add(&toBal, amount)
	s.setBalance(to, toBal)
	return nil
}

// Ledger is an in-memory multi-token state with snapshot/revert, standing in
// for the host chain's token contracts. Safe for concurrent use.
type Ledger struct {
	mu        sync.RWMutex
	tokens    map[chain.Address]*tokenState
	snapshots []map[chain.Address]*tokenState
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{tokens: make(map[chain.Address]*tokenState)}
}

// NewToken registers a token at addr and returns its handle.
func (l *Ledger) NewToken(addr chain.Address, symbol string, decimals uint8, opts Options) (*Token, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.tokens[addr]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateToken, addr)
	}
	l.tokens[addr] = newTokenState()
	return &Token{ledger: l, addr: addr, symbol: symbol, decimals: decimals, opts: opts}, nil
}

// state returns the token state. The caller holds the lock.
func (l *Ledger) state(addr chain.Address) *tokenState {
	st, ok := l.tokens[addr]
	if !ok {
		// Tokens are only reachable through handles issued by NewToken.
		panic(fmt.Sprintf("token: unregistered token %s", addr))
	}
	return st
}

// Snapshot records the current state of every token and returns its id.
func (l *Ledger) Snapshot() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	snap := make(map[chain.Address]*tokenState, len(l.tokens))
	for addr, st := range l.tokens {
		snap[addr] = st.clone()
	}
	l.snapshots = append(l.snapshots, snap)
	return len(l.snapshots) - 1
}

// Revert restores the state recorded by Snapshot(id) and discards it and
// every later snapshot.
func (l *Ledger) Revert(id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id < 0 || id >= len(l.snapshots) {
		return fmt.Errorf("%w: %d", ErrUnknownSnapshot, id)
	}
	for addr, st := range l.snapshots[id] {
		l.tokens[addr] = st
	}
	l.snapshots = l.snapshots[:id]
	return nil
}

// Release discards snapshot id and every later one, keeping current state.
func (l *Ledger) Release(id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id < 0 || id >= len(l.snapshots) {
		return fmt.Errorf("%w: %d", ErrUnknownSnapshot, id)
	}
	l.snapshots = l.snapshots[:id]
	return nil
}
