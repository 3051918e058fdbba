// Package token models the fungible asset ledgers the vault and the lottery
// move funds through: the reserve asset, the stable asset, the reward asset
// and the share token itself.
package token

import (
	"github.com/holiman/uint256"

	"github.com/lott3ry/libxbit-go/chain"
)

// Asset is the standard balance/allowance/transfer surface of a fungible token.
type Asset interface {
	// Address returns the token contract address.
	Address() chain.Address

	// Symbol returns the ticker, e.g. "WBTC".
	Symbol() string

	// Decimals returns the number of base-unit decimals.
	Decimals() uint8

	// BalanceOf returns the balance held by owner.
	BalanceOf(owner chain.Address) *uint256.Int

	// TotalSupply returns the amount in circulation.
	TotalSupply() *uint256.Int

	// Allowance returns how much spender may move on behalf of owner.
	Allowance(owner, spender chain.Address) *uint256.Int

	// Approve sets spender's allowance over owner's balance.
	Approve(owner, spender chain.Address, amount *uint256.Int) error

	// Transfer moves amount from from to to.
	Transfer(from, to chain.Address, amount *uint256.Int) error

	// TransferFrom moves amount from from to to, spending spender's allowance.
	TransferFrom(spender, from, to chain.Address, amount *uint256.Int) error
}

// Mintable is an Asset whose supply the holder of the ledger can change.
type Mintable interface {
	Asset

	// Mint credits amount to to and grows the supply.
	Mint(to chain.Address, amount *uint256.Int) error

	// Burn debits amount from from and shrinks the supply.
	Burn(from chain.Address, amount *uint256.Int) error
}

// Options tune per-token behaviour.
type Options struct {
	// StrictApprove rejects changing a non-zero allowance to another non-zero
	// value, the way USDT does.
	StrictApprove bool
}

// Token is one asset inside a Ledger.
type Token struct {
	ledger   *Ledger
	addr     chain.Address
	symbol   string
	decimals uint8
	opts     Options
}

// Compile-time interface check.
var _ Mintable = (*Token)(nil)

// Address returns the token contract address.
func (t *Token) Address() chain.Address { return t.addr }

// Symbol returns the ticker.
func (t *Token) Symbol() string { return t.symbol }

// Decimals returns the number of base-unit decimals.
func (t *Token) Decimals() uint8 { return t.decimals }

// BalanceOf returns the balance held by owner.
func (t *Token) BalanceOf(owner chain.Address) *uint256.Int {
	t.ledger.mu.RLock()
	defer t.ledger.mu.RUnlock()
	bal := t.ledger.state(t.addr).balances[owner]
	return bal.Clone()
}

// TotalSupply returns the amount in circulation.
func (t *Token) TotalSupply() *uint256.Int {
	t.ledger.mu.RLock()
	defer t.ledger.mu.RUnlock()
	return t.ledger.state(t.addr).supply.Clone()
}

// Allowance returns how much spender may move on behalf of owner.
func (t *Token) Allowance(owner, spender chain.Address) *uint256.Int {
	t.ledger.mu.RLock()
	defer t.ledger.mu.RUnlock()
	a := t.ledger.state(t.addr).allowances[allowanceKey{owner, spender}]
	return a.Clone()
}

// Approve sets spender's allowance over owner's balance.
func (t *Token) Approve(owner, spender chain.Address, amount *uint256.Int) error {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()

	st := t.ledger.state(t.addr)
	key := allowanceKey{owner, spender}
	cur := st.allowances[key]
	if t.opts.StrictApprove && !cur.IsZero() && !amount.IsZero() {
		return ErrUnsafeAllowance
	}
	if amount.IsZero() {
		delete(st.allowances, key)
		return nil
	}
	st.allowances[key] = *amount
	return nil
}

// Transfer moves amount from from to to.
func (t *Token) Transfer(from, to chain.Address, amount *uint256.Int) error {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()
	return t.ledger.state(t.addr).move(from, to, amount)
}

// TransferFrom moves amount from from to to, spending spender's allowance.
// An owner moving its own funds needs no allowance.
func (t *Token) TransferFrom(spender, from, to chain.Address, amount *uint256.Int) error {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()

	st := t.ledger.state(t.addr)
	if spender == from {
		return st.move(from, to, amount)
	}

	key := allowanceKey{from, spender}
	allowed := st.allowances[key]
	if allowed.Lt(amount) {
		return ErrInsufficientAllowance
	}
	if err := st.move(from, to, amount); err != nil {
		return err
	}
	var rest uint256.Int
	rest.Sub(&allowed, amount)
	if rest.IsZero() {
		delete(st.allowances, key)
	} else {
		st.allowances[key] = rest
	}
	return nil
}

// Mint credits amount to to and grows the supply.
func (t *Token) Mint(to chain.Address, amount *uint256.Int) error {
	if to.IsZero() {
		return ErrTransferFailed
	}
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()

	st := t.ledger.state(t.addr)
	var supply uint256.Int
	if _, overflow := supply.AddOverflow(&st.supply, amount); overflow {
		return ErrSupplyOverflow
	}
	st.supply = supply
	bal := st.balances[to]
	bal.Add(&bal, amount)
	st.balances[to] = bal
	return nil
}

// Burn debits amount from from and shrinks the supply.
func (t *Token) Burn(from chain.Address, amount *uint256.Int) error {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()

	st := t.ledger.state(t.addr)
	bal := st.balances[from]
	if bal.Lt(amount) {
		return ErrInsufficientBalance
	}
	bal.Sub(&bal, amount)
	st.setBalance(from, bal)
	st.supply.Sub(&st.supply, amount)
	return nil
}
