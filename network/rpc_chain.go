package network

import (
	"context"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/lott3ry/libxbit-go/chain"
)

// Compile-time interface checks.
var (
	_ ChainService   = (*RPCClient)(nil)
	_ ContractCaller = (*RPCClient)(nil)
)

// BlockNumber returns the current tip height via eth_blockNumber.
func (c *RPCClient) BlockNumber(ctx context.Context) (uint64, error) {
	var n hexutil.Uint64
	if err := c.Call(ctx, "eth_blockNumber", nil, &n); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// blockResult maps the subset of eth_getBlockByNumber fields we read.
type blockResult struct {
	Number hexutil.Uint64 `json:"number"`
	Hash   common.Hash    `json:"hash"`
}

// BlockHash returns the hash of the block at height via eth_getBlockByNumber.
// The node answers null for heights above the tip.
func (c *RPCClient) BlockHash(ctx context.Context, height uint64) (chainhash.Hash, error) {
	var blk *blockResult
	params := []any{hexutil.EncodeUint64(height), false}
	if err := c.Call(ctx, "eth_getBlockByNumber", params, &blk); err != nil {
		return chainhash.Hash{}, err
	}
	if blk == nil {
		return chainhash.Hash{}, fmt.Errorf("%w: height %d", ErrBlockNotFound, height)
	}
	if uint64(blk.Number) != height {
		return chainhash.Hash{}, fmt.Errorf("%w: asked for block %d, got %d", ErrInvalidResponse, height, blk.Number)
	}
	return chainhash.Hash(blk.Hash), nil
}

// callArgs is the transaction object of eth_call.
type callArgs struct {
	To   common.Address `json:"to"`
	Data hexutil.Bytes  `json:"data"`
}

// CallContract runs a read-only call via eth_call against the latest block.
func (c *RPCClient) CallContract(ctx context.Context, to chain.Address, data []byte) ([]byte, error) {
	args := callArgs{To: to.Common(), Data: data}
	var out hexutil.Bytes
	if err := c.Call(ctx, "eth_call", []any{args, "latest"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
