// Package ledger is the append-only record of lottery attempts, keyed by
// request id and indexed by player.
package ledger

import (
	"github.com/holiman/uint256"

	"github.com/lott3ry/libxbit-go/chain"
)

// State is the lifecycle position of a request.
type State uint8

const (
	StateNone State = iota
	StatePending
	StateFulfilled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFulfilled:
		return "fulfilled"
	default:
		return "none"
	}
}

// Request is one lottery attempt. The field order follows the request
// status tuple exposed to indexers, plus the referrer ratio in force at
// purchase.
type Request struct {
	Exists        bool
	RequestID     uint64
	InitialBlock  uint64
	Player        chain.Address
	Referrer      chain.Address
	ReferrerRatio uint32 // parts per million, fixed at purchase
	USDTIn        uint256.Int
	WBTCTicket    uint256.Int
	Quantity      uint64
	Fulfilled     bool
	RandomWord    uint256.Int
	RewardLevels  []uint8 // one tier index per ticket, in draw order; nil while pending
	XEXPOut       uint256.Int
	WBTCOut       uint256.Int
	WBTCFee       uint256.Int
}

// State reports where the request is in its lifecycle.
func (r *Request) State() State {
	switch {
	case r == nil || !r.Exists:
		return StateNone
	case r.Fulfilled:
		return StateFulfilled
	default:
		return StatePending
	}
}

// Clone returns a deep copy so callers cannot alias stored levels.
func (r *Request) Clone() *Request {
	c := *r
	if r.RewardLevels != nil {
		c.RewardLevels = append([]uint8(nil), r.RewardLevels...)
	}
	return &c
}
