package network

import (
	"context"

	"github.com/bsv-blockchain/go-sdk/chainhash"

	"github.com/lott3ry/libxbit-go/chain"
)

// ChainService is the view of the host chain the engine reads: the current
// block height and the hashes of past blocks, which seed lottery entropy.
type ChainService interface {
	// BlockNumber returns the height of the current chain tip.
	BlockNumber(ctx context.Context) (uint64, error)

	// BlockHash returns the hash of the block at height.
	// Heights above the tip return ErrBlockNotFound.
	BlockHash(ctx context.Context, height uint64) (chainhash.Hash, error)
}

// ContractCaller executes read-only calls against deployed contracts.
type ContractCaller interface {
	// CallContract runs data against the contract at to on the latest block
	// and returns the raw return data.
	CallContract(ctx context.Context, to chain.Address, data []byte) ([]byte, error)
}
