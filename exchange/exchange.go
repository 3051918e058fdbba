// Package exchange prices and executes stable-to-reserve conversions through
// a constant-product market, either simulated in memory or queried over RPC.
package exchange

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/lott3ry/libxbit-go/chain"
)

// Quoter estimates how much of path[len-1] amountIn of path[0] buys.
type Quoter interface {
	EstimateOut(ctx context.Context, amountIn *uint256.Int, path []chain.Address) (*uint256.Int, error)
}

// Swapper executes exact-input swaps. Callers approve Address() for amountIn
// on path[0] before calling SwapExactIn.
type Swapper interface {
	Quoter

	// Address is the spender that pulls the input tokens.
	Address() chain.Address

	// SwapExactIn sells amountIn of path[0] from caller and sends the
	// proceeds to to. It fails with ErrInsufficientOutput below minOut.
	SwapExactIn(ctx context.Context, caller chain.Address, amountIn, minOut *uint256.Int, path []chain.Address, to chain.Address) (*uint256.Int, error)
}

var (
	feeNumerator   = uint256.NewInt(997)
	feeDenominator = uint256.NewInt(1000)
)

// GetAmountOut is the constant-product output for amountIn against the given
// reserves, charging the 0.3% input fee:
//
//	out = in*997*reserveOut / (reserveIn*1000 + in*997)
func GetAmountOut(amountIn, reserveIn, reserveOut *uint256.Int) (*uint256.Int, error) {
	if amountIn.IsZero() {
		return nil, ErrInsufficientInput
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return nil, ErrInsufficientLiquidity
	}
	var inWithFee, den uint256.Int
	inWithFee.Mul(amountIn, feeNumerator)
	den.Mul(reserveIn, feeDenominator)
	den.Add(&den, &inWithFee)
	out, overflow := new(uint256.Int).MulDivOverflow(&inWithFee, reserveOut, &den)
	if overflow {
		return nil, ErrInsufficientLiquidity
	}
	return out, nil
}

func validatePath(path []chain.Address) error {
	if len(path) < 2 {
		return ErrInvalidPath
	}
	for i := 1; i < len(path); i++ {
		if path[i] == path[i-1] {
			return ErrInvalidPath
		}
	}
	return nil
}
