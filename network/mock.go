package network

import (
	"context"

	"github.com/bsv-blockchain/go-sdk/chainhash"

	"github.com/lott3ry/libxbit-go/chain"
)

// MockChainService is a test double for ChainService and ContractCaller.
// All function fields must be set before the corresponding method is called.
type MockChainService struct {
	BlockNumberFn  func(ctx context.Context) (uint64, error)
	BlockHashFn    func(ctx context.Context, height uint64) (chainhash.Hash, error)
	CallContractFn func(ctx context.Context, to chain.Address, data []byte) ([]byte, error)
}

var (
	_ ChainService   = (*MockChainService)(nil)
	_ ContractCaller = (*MockChainService)(nil)
)

func (m *MockChainService) BlockNumber(ctx context.Context) (uint64, error) {
	return m.BlockNumberFn(ctx)
}
func (m *MockChainService) BlockHash(ctx context.Context, height uint64) (chainhash.Hash, error) {
	return m.BlockHashFn(ctx, height)
}
func (m *MockChainService) CallContract(ctx context.Context, to chain.Address, data []byte) ([]byte, error) {
	return m.CallContractFn(ctx, to, data)
}
