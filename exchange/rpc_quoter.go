package exchange

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/lott3ry/libxbit-go/chain"
	"github.com/lott3ry/libxbit-go/network"
)

// RouterQuoter prices swaps by calling getAmountsOut on a deployed
// Uniswap V2 style router.
type RouterQuoter struct {
	caller network.ContractCaller
	router chain.Address
}

var _ Quoter = (*RouterQuoter)(nil)

// NewRouterQuoter returns a quoter for the router contract at router.
func NewRouterQuoter(caller network.ContractCaller, router chain.Address) *RouterQuoter {
	return &RouterQuoter{caller: caller, router: router}
}

// EstimateOut returns the last element of getAmountsOut(amountIn, path).
func (q *RouterQuoter) EstimateOut(ctx context.Context, amountIn *uint256.Int, path []chain.Address) (*uint256.Int, error) {
	if err := validatePath(path); err != nil {
		return nil, err
	}
	data, err := encodeGetAmountsOut(amountIn, path)
	if err != nil {
		return nil, err
	}
	ret, err := q.caller.CallContract(ctx, q.router, data)
	if err != nil {
		return nil, fmt.Errorf("exchange: getAmountsOut: %w", err)
	}
	amounts, err := decodeAmountsOut(ret)
	if err != nil {
		return nil, err
	}
	if len(amounts) != len(path) {
		return nil, fmt.Errorf("%w: %d amounts for %d-token path", ErrBadReturnData, len(amounts), len(path))
	}
	return amounts[len(amounts)-1], nil
}
