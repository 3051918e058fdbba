// Package lottery resolves ticket purchases into reward tiers and settles
// them against the share vault, on an immediate path and a commit/reveal path.
package lottery

import (
	"encoding/binary"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/holiman/uint256"

	"github.com/lott3ry/libxbit-go/units"
)

// RandMax bounds per-draw words: every draw falls in [0, RandMax). Read only.
var RandMax = new(uint256.Int).Lsh(uint256.NewInt(1), 128)

// PayoutKind selects how a tier pays.
type PayoutKind uint8

const (
	// PayoutReward pays a fixed Amount of the reward asset.
	PayoutReward PayoutKind = iota
	// PayoutTicket pays Num/Den of the ticket value from the pool.
	PayoutTicket
	// PayoutPool pays Num/Den of the pool still available to the request.
	PayoutPool
)

func (k PayoutKind) String() string {
	switch k {
	case PayoutReward:
		return "reward"
	case PayoutTicket:
		return "ticket"
	case PayoutPool:
		return "pool"
	default:
		return fmt.Sprintf("PayoutKind(%d)", uint8(k))
	}
}

// Tier is one band of the word space. A word belongs to the first tier
// whose Floor it reaches; words below every floor belong to tier 0.
type Tier struct {
	Floor  uint256.Int
	Kind   PayoutKind
	Amount uint256.Int // PayoutReward
	Num    uint64      // PayoutTicket, PayoutPool
	Den    uint64
}

// Table is an ordered tier policy, most common tier first.
type Table []Tier

func band(shift uint) uint256.Int {
	var f uint256.Int
	f.Rsh(RandMax, shift)
	return f
}

// DefaultTable returns the standard six-tier policy. Each band is at least
// half the size of the one before it; the zero word lands in tier 0.
//
//	tier 0  [RandMax/2, RandMax) and {0}  100 reward tokens
//	tier 1  [RandMax/4, RandMax/2)        ticket / 2
//	tier 2  [RandMax/8, RandMax/4)        ticket
//	tier 3  [RandMax/32, RandMax/8)       ticket * 2
//	tier 4  [RandMax/1024, RandMax/32)    ticket * 10
//	tier 5  [1, RandMax/1024)             10% of the pool
func DefaultTable(rewardDecimals uint8) Table {
	return Table{
		{Floor: band(1), Kind: PayoutReward, Amount: *units.MustParseUnits("100", rewardDecimals)},
		{Floor: band(2), Kind: PayoutTicket, Num: 1, Den: 2},
		{Floor: band(3), Kind: PayoutTicket, Num: 1, Den: 1},
		{Floor: band(5), Kind: PayoutTicket, Num: 2, Den: 1},
		{Floor: band(10), Kind: PayoutTicket, Num: 10, Den: 1},
		{Floor: *uint256.NewInt(1), Kind: PayoutPool, Num: 1, Den: 10},
	}
}

// Validate checks that t partitions [0, RandMax) with strictly decreasing
// floors ending at or above 1, and that every payout is well formed.
func (t Table) Validate() error {
	if len(t) == 0 || len(t) > 256 {
		return fmt.Errorf("%w: %d tiers", ErrInvalidTable, len(t))
	}
	for i := range t {
		tier := &t[i]
		if i == 0 && !tier.Floor.Lt(RandMax) {
			return fmt.Errorf("%w: tier 0 floor %s not below RandMax", ErrInvalidTable, &tier.Floor)
		}
		if i > 0 && !tier.Floor.Lt(&t[i-1].Floor) {
			return fmt.Errorf("%w: tier %d floor %s not below tier %d", ErrInvalidTable, i, &tier.Floor, i-1)
		}
		switch tier.Kind {
		case PayoutReward:
		case PayoutTicket:
			if tier.Den == 0 {
				return fmt.Errorf("%w: tier %d has zero denominator", ErrInvalidTable, i)
			}
		case PayoutPool:
			if tier.Den == 0 || tier.Num > tier.Den {
				return fmt.Errorf("%w: tier %d pool share %d/%d", ErrInvalidTable, i, tier.Num, tier.Den)
			}
		default:
			return fmt.Errorf("%w: tier %d kind %s", ErrInvalidTable, i, tier.Kind)
		}
	}
	if t[len(t)-1].Floor.IsZero() {
		return fmt.Errorf("%w: last floor must be at least 1", ErrInvalidTable)
	}
	return nil
}

// Resolve maps a draw word to its tier index.
func (t Table) Resolve(w *uint256.Int) uint8 {
	for i := range t {
		if !w.Lt(&t[i].Floor) {
			return uint8(i)
		}
	}
	return 0
}

// DrawWord derives the word for draw i of a request. Draw 0 is the request
// word reduced mod RandMax; later draws hash the full word with the index
// so repeated draws are independent.
func DrawWord(word *uint256.Int, i uint64) *uint256.Int {
	w := new(uint256.Int)
	if i == 0 {
		return w.Mod(word, RandMax)
	}
	var buf [40]byte
	word.PutUint256(buf[:32])
	binary.BigEndian.PutUint64(buf[32:], i)
	h := chainhash.DoubleHashH(buf[:])
	w.SetBytes32(h[:])
	return w.Mod(w, RandMax)
}

// Draws returns the tier of each of quantity draws from word, in draw order.
func (t Table) Draws(word *uint256.Int, quantity uint64) []uint8 {
	levels := make([]uint8, quantity)
	for i := range levels {
		levels[i] = t.Resolve(DrawWord(word, uint64(i)))
	}
	return levels
}
