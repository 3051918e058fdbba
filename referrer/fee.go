package referrer

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/lott3ry/libxbit-go/chain"
)

var denominator = uint256.NewInt(Denominator)

// Fee is the reserve fee a referrer earns on a purchase:
// quantity * ticket * ratio / 1e6, rounded down. A purchase value that does
// not fit 256 bits fails with chain.ErrInvalidParameter.
func Fee(quantity uint64, ticket *uint256.Int, ratio uint32) (*uint256.Int, error) {
	if ratio == 0 || quantity == 0 {
		return new(uint256.Int), nil
	}
	var value uint256.Int
	if _, overflow := value.MulOverflow(uint256.NewInt(quantity), ticket); overflow {
		return nil, fmt.Errorf("%w: %d tickets at %s overflow", chain.ErrInvalidParameter, quantity, ticket)
	}
	fee, _ := new(uint256.Int).MulDivOverflow(&value, uint256.NewInt(uint64(ratio)), denominator)
	return fee, nil
}
