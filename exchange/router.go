package exchange

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/lott3ry/libxbit-go/chain"
	"github.com/lott3ry/libxbit-go/token"
)

// Pair holds the reserves of two assets at its own address. Reserves are the
// pair's live token balances, so direct transfers into a pair count.
type Pair struct {
	addr   chain.Address
	token0 token.Asset
	token1 token.Asset
}

// Address returns the pair's account.
func (p *Pair) Address() chain.Address { return p.addr }

// Reserves returns the pair's balances of tokenIn and the other asset.
func (p *Pair) Reserves(tokenIn chain.Address) (reserveIn, reserveOut *uint256.Int) {
	in, out := p.token0, p.token1
	if tokenIn == p.token1.Address() {
		in, out = p.token1, p.token0
	}
	return in.BalanceOf(p.addr), out.BalanceOf(p.addr)
}

func (p *Pair) other(tokenIn chain.Address) token.Asset {
	if tokenIn == p.token0.Address() {
		return p.token1
	}
	return p.token0
}

type pairKey struct{ a, b chain.Address }

func newPairKey(x, y chain.Address) pairKey {
	if x.Compare(y) > 0 {
		x, y = y, x
	}
	return pairKey{x, y}
}

// Router is an in-memory constant-product exchange routing swaps across
// registered pairs. Safe for concurrent use.
type Router struct {
	mu    sync.Mutex
	addr  chain.Address
	pairs map[pairKey]*Pair
}

var _ Swapper = (*Router)(nil)

// NewRouter creates a router whose spender account is addr.
func NewRouter(addr chain.Address) *Router {
	return &Router{addr: addr, pairs: make(map[pairKey]*Pair)}
}

// Address returns the spender account callers approve.
func (r *Router) Address() chain.Address { return r.addr }

// CreatePair registers a pair for a and b, returning the existing one if present.
func (r *Router) CreatePair(a, b token.Asset) (*Pair, error) {
	if a.Address() == b.Address() {
		return nil, fmt.Errorf("%w: identical tokens", ErrInvalidPath)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := newPairKey(a.Address(), b.Address())
	if p, ok := r.pairs[key]; ok {
		return p, nil
	}
	t0, t1 := a, b
	if a.Address() != key.a {
		t0, t1 = b, a
	}
	p := &Pair{
		addr:   chain.AddressFromSeed("pair:" + key.a.Hex() + key.b.Hex()),
		token0: t0,
		token1: t1,
	}
	r.pairs[key] = p
	return p, nil
}

// Pair returns the pair for x and y.
func (r *Router) Pair(x, y chain.Address) (*Pair, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pairLocked(x, y)
}

func (r *Router) pairLocked(x, y chain.Address) (*Pair, error) {
	p, ok := r.pairs[newPairKey(x, y)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownPair, x, y)
	}
	return p, nil
}

// AddLiquidity moves amountA of a and amountB of b from provider into their pair.
func (r *Router) AddLiquidity(provider chain.Address, a, b token.Asset, amountA, amountB *uint256.Int) error {
	p, err := r.CreatePair(a, b)
	if err != nil {
		return err
	}
	if err := a.Transfer(provider, p.addr, amountA); err != nil {
		return fmt.Errorf("exchange: add liquidity %s: %w", a.Symbol(), err)
	}
	if err := b.Transfer(provider, p.addr, amountB); err != nil {
		return fmt.Errorf("exchange: add liquidity %s: %w", b.Symbol(), err)
	}
	return nil
}

// amountsOut mirrors the router's getAmountsOut: amounts[0] is the input and
// amounts[i] the output of hop i. The caller holds the lock.
func (r *Router) amountsOut(amountIn *uint256.Int, path []chain.Address) ([]*uint256.Int, []*Pair, error) {
	if err := validatePath(path); err != nil {
		return nil, nil, err
	}
	amounts := make([]*uint256.Int, len(path))
	pairs := make([]*Pair, len(path)-1)
	amounts[0] = amountIn.Clone()
	for i := 0; i < len(path)-1; i++ {
		p, err := r.pairLocked(path[i], path[i+1])
		if err != nil {
			return nil, nil, err
		}
		reserveIn, reserveOut := p.Reserves(path[i])
		out, err := GetAmountOut(amounts[i], reserveIn, reserveOut)
		if err != nil {
			return nil, nil, fmt.Errorf("hop %d: %w", i, err)
		}
		amounts[i+1] = out
		pairs[i] = p
	}
	return amounts, pairs, nil
}

// EstimateOut returns the output of swapping amountIn along path.
func (r *Router) EstimateOut(_ context.Context, amountIn *uint256.Int, path []chain.Address) (*uint256.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	amounts, _, err := r.amountsOut(amountIn, path)
	if err != nil {
		return nil, err
	}
	return amounts[len(amounts)-1], nil
}

// SwapExactIn pulls amountIn of path[0] from caller through the router's
// allowance and forwards each hop's output to the next pair, then to to.
func (r *Router) SwapExactIn(_ context.Context, caller chain.Address, amountIn, minOut *uint256.Int, path []chain.Address, to chain.Address) (*uint256.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	amounts, pairs, err := r.amountsOut(amountIn, path)
	if err != nil {
		return nil, err
	}
	out := amounts[len(amounts)-1]
	if out.Lt(minOut) {
		return nil, fmt.Errorf("%w: %s < %s", ErrInsufficientOutput, out, minOut)
	}

	first := pairs[0]
	in := first.token0
	if in.Address() != path[0] {
		in = first.token1
	}
	if err := in.TransferFrom(r.addr, caller, first.addr, amountIn); err != nil {
		return nil, fmt.Errorf("exchange: pull %s: %w", in.Symbol(), err)
	}
	for i, p := range pairs {
		dest := to
		if i < len(pairs)-1 {
			dest = pairs[i+1].addr
		}
		asset := p.other(path[i])
		if err := asset.Transfer(p.addr, dest, amounts[i+1]); err != nil {
			return nil, fmt.Errorf("exchange: hop %d %s: %w", i, asset.Symbol(), err)
		}
	}
	return out, nil
}
