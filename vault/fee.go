package vault

import (
	"fmt"

	"github.com/holiman/uint256"
)

// FeePolicy computes the withdrawal fee kept in the pool out of a gross payout.
type FeePolicy interface {
	Fee(gross *uint256.Int) *uint256.Int
}

// NoFee pays withdrawals in full.
type NoFee struct{}

// Fee always returns zero.
func (NoFee) Fee(*uint256.Int) *uint256.Int { return new(uint256.Int) }

// ProportionalFee keeps PerMillion parts per million of every payout, rounded down.
type ProportionalFee struct {
	PerMillion uint32
}

// NewProportionalFee validates perMillion against 1,000,000.
func NewProportionalFee(perMillion uint32) (ProportionalFee, error) {
	if perMillion > 1_000_000 {
		return ProportionalFee{}, fmt.Errorf("%w: %d per million", ErrInvalidFee, perMillion)
	}
	return ProportionalFee{PerMillion: perMillion}, nil
}

// Fee returns gross * PerMillion / 1e6.
func (p ProportionalFee) Fee(gross *uint256.Int) *uint256.Int {
	fee, _ := new(uint256.Int).MulDivOverflow(gross, uint256.NewInt(uint64(p.PerMillion)), uint256.NewInt(1_000_000))
	return fee
}
