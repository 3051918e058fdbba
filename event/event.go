// Package event is the append-only audit trail external indexers rebuild
// history from.
package event

import (
	"github.com/holiman/uint256"

	"github.com/lott3ry/libxbit-go/chain"
	"github.com/lott3ry/libxbit-go/ledger"
)

// Event is one externally observable state transition.
type Event interface {
	// Name is the event's ABI name.
	Name() string
}

// Deposited records reserve moved into the vault and shares minted for it.
type Deposited struct {
	Account chain.Address
	Amount  uint256.Int
	Minted  uint256.Int
}

// Withdrawn records shares burned and the reserve paid out for them.
type Withdrawn struct {
	Account chain.Address
	Shares  uint256.Int
	Paid    uint256.Int
	Fee     uint256.Int
}

// Swapped records stable revenue converted into reserve.
type Swapped struct {
	Caller  chain.Address
	USDTIn  uint256.Int
	WBTCOut uint256.Int
}

// ReferrerRegistered records a referrer setting its fee ratio.
type ReferrerRegistered struct {
	Referrer        chain.Address
	RatioPerMillion uint32
}

// RandomnessRequested is emitted when a request is created on either path.
type RandomnessRequested struct {
	RequestID uint64
	Player    chain.Address
}

// LotteryOutcome carries the settled request exactly as stored.
type LotteryOutcome struct {
	RequestID uint64
	Status    ledger.Request
}

// MaintainerChanged records the owner handing the maintainer role to a new account.
type MaintainerChanged struct {
	Previous   chain.Address
	Maintainer chain.Address
}

func (Deposited) Name() string           { return "SaveWBTC" }
func (Withdrawn) Name() string           { return "WithdrawWBTC" }
func (Swapped) Name() string             { return "SwapUSDT2WBTC" }
func (ReferrerRegistered) Name() string  { return "RegisterReferrer" }
func (RandomnessRequested) Name() string { return "RequestedRandomness" }
func (LotteryOutcome) Name() string      { return "LotteryOutcome" }
func (MaintainerChanged) Name() string   { return "MaintainerChanged" }
