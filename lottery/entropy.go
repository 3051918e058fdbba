package lottery

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/lott3ry/libxbit-go/chain"
	"github.com/lott3ry/libxbit-go/ledger"
	"github.com/lott3ry/libxbit-go/network"
)

// EntropyProvider binds the random word of a committed request at reveal
// time. It must only use data that did not exist at req.InitialBlock.
type EntropyProvider interface {
	RevealWord(ctx context.Context, req *ledger.Request, delay uint64) (*uint256.Int, error)
}

// EntropyFunc adapts a function to EntropyProvider.
type EntropyFunc func(ctx context.Context, req *ledger.Request, delay uint64) (*uint256.Int, error)

// RevealWord calls f.
func (f EntropyFunc) RevealWord(ctx context.Context, req *ledger.Request, delay uint64) (*uint256.Int, error) {
	return f(ctx, req, delay)
}

// BlockHashEntropy derives the word from the hash of the first block mined
// after the delay, mixed with the request id and player.
type BlockHashEntropy struct {
	Chain network.ChainService
}

var _ EntropyProvider = BlockHashEntropy{}

// RevealWord returns keccak256(hash(initial+delay) || id || player).
func (b BlockHashEntropy) RevealWord(ctx context.Context, req *ledger.Request, delay uint64) (*uint256.Int, error) {
	height, carry := bits.Add64(req.InitialBlock, delay, 0)
	if carry != 0 {
		return nil, fmt.Errorf("%w: block %d + %d overflows", ErrEntropyUnavailable, req.InitialBlock, delay)
	}
	h, err := b.Chain.BlockHash(ctx, height)
	if err != nil {
		return nil, fmt.Errorf("%w: block %d: %w", ErrEntropyUnavailable, height, err)
	}
	var id [8]byte
	binary.BigEndian.PutUint64(id[:], req.RequestID)
	return keccakWord(h[:], id[:], req.Player[:]), nil
}

// Dice returns the pseudo-random word the immediate path uses when the
// caller supplies none: keccak256 over the previous block hash, the current
// height, the player and a nonce. It changes with every block and nonce,
// and anyone watching the chain can predict it.
func Dice(ctx context.Context, cs network.ChainService, player chain.Address, nonce uint64) (*uint256.Int, error) {
	height, err := cs.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: block number: %w", ErrEntropyUnavailable, err)
	}
	prev := height
	if prev > 0 {
		prev--
	}
	h, err := cs.BlockHash(ctx, prev)
	if err != nil {
		return nil, fmt.Errorf("%w: block %d: %w", ErrEntropyUnavailable, prev, err)
	}
	var tail [16]byte
	binary.BigEndian.PutUint64(tail[:8], height)
	binary.BigEndian.PutUint64(tail[8:], nonce)
	return keccakWord(h[:], tail[:8], player[:], tail[8:]), nil
}

func keccakWord(parts ...[]byte) *uint256.Int {
	d := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		d.Write(p)
	}
	return new(uint256.Int).SetBytes32(d.Sum(nil))
}
