package lottery

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/lott3ry/libxbit-go/chain"
)

// Outcome is the aggregate result of resolving a request's draws.
type Outcome struct {
	Levels  []uint8
	XEXPOut *uint256.Int // reward asset owed
	WBTCOut *uint256.Int // reserve owed
}

// Settle resolves quantity draws from word and totals their payouts.
// available is the reserve the request may draw on; pool-share tiers pay a
// fraction of what is still available after earlier draws. A request whose
// reserve payouts exceed available fails with chain.ErrPoolExhausted.
func (t Table) Settle(word *uint256.Int, quantity uint64, ticket, available *uint256.Int) (Outcome, error) {
	out := Outcome{
		Levels:  t.Draws(word, quantity),
		XEXPOut: new(uint256.Int),
		WBTCOut: new(uint256.Int),
	}
	remaining := available.Clone()
	for i, level := range out.Levels {
		tier := &t[level]
		var amount uint256.Int
		switch tier.Kind {
		case PayoutReward:
			if _, overflow := out.XEXPOut.AddOverflow(out.XEXPOut, &tier.Amount); overflow {
				return Outcome{}, fmt.Errorf("%w: reward overflow at draw %d", chain.ErrInvalidParameter, i)
			}
			continue
		case PayoutTicket:
			if _, overflow := amount.MulDivOverflow(ticket, uint256.NewInt(tier.Num), uint256.NewInt(tier.Den)); overflow {
				return Outcome{}, fmt.Errorf("%w: ticket payout overflow at draw %d", chain.ErrInvalidParameter, i)
			}
		case PayoutPool:
			amount.MulDivOverflow(remaining, uint256.NewInt(tier.Num), uint256.NewInt(tier.Den))
		}
		if remaining.Lt(&amount) {
			return Outcome{}, fmt.Errorf("%w: draw %d (tier %d) pays %s, %s left", chain.ErrPoolExhausted, i, level, &amount, remaining)
		}
		remaining.Sub(remaining, &amount)
		out.WBTCOut.Add(out.WBTCOut, &amount)
	}
	return out, nil
}
