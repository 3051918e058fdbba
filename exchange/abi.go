package exchange

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/lott3ry/libxbit-go/chain"
)

// routerABIJSON is the slice of the Uniswap V2 router ABI the quoter calls.
const routerABIJSON = `[{
	"type": "function",
	"name": "getAmountsOut",
	"stateMutability": "view",
	"inputs": [
		{"name": "amountIn", "type": "uint256"},
		{"name": "path", "type": "address[]"}
	],
	"outputs": [
		{"name": "amounts", "type": "uint256[]"}
	]
}]`

var routerABI = mustParseABI(routerABIJSON)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("exchange: parse router ABI: %v", err))
	}
	return parsed
}

// encodeGetAmountsOut builds the calldata of getAmountsOut(amountIn, path).
func encodeGetAmountsOut(amountIn *uint256.Int, path []chain.Address) ([]byte, error) {
	addrs := make([]common.Address, len(path))
	for i, a := range path {
		addrs[i] = a.Common()
	}
	data, err := routerABI.Pack("getAmountsOut", amountIn.ToBig(), addrs)
	if err != nil {
		return nil, fmt.Errorf("exchange: pack getAmountsOut: %w", err)
	}
	return data, nil
}

// decodeAmountsOut decodes the uint256[] returned by getAmountsOut.
func decodeAmountsOut(data []byte) ([]*uint256.Int, error) {
	vals, err := routerABI.Unpack("getAmountsOut", data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadReturnData, err)
	}
	if len(vals) != 1 {
		return nil, fmt.Errorf("%w: %d return values", ErrBadReturnData, len(vals))
	}
	amounts, ok := vals[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected type %T", ErrBadReturnData, vals[0])
	}
	out := make([]*uint256.Int, len(amounts))
	for i, a := range amounts {
		v, overflow := uint256.FromBig(a)
		if overflow {
			return nil, fmt.Errorf("%w: amount %d overflows", ErrBadReturnData, i)
		}
		out[i] = v
	}
	return out, nil
}
