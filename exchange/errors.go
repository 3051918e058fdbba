package exchange

import "errors"

var (
	// ErrInvalidPath indicates a swap path shorter than two tokens or with a repeated hop.
	ErrInvalidPath = errors.New("exchange: invalid path")

	// ErrUnknownPair indicates a hop with no registered pair.
	ErrUnknownPair = errors.New("exchange: unknown pair")

	// ErrInsufficientInput indicates a zero input amount.
	ErrInsufficientInput = errors.New("exchange: insufficient input amount")

	// ErrInsufficientLiquidity indicates a pair with an empty reserve.
	ErrInsufficientLiquidity = errors.New("exchange: insufficient liquidity")

	// ErrInsufficientOutput indicates the swap would return less than the caller's minimum.
	ErrInsufficientOutput = errors.New("exchange: insufficient output amount")

	// ErrBadReturnData indicates undecodable contract return data.
	ErrBadReturnData = errors.New("exchange: bad return data")
)
