// Package vault is the share vault: depositors move reserve into the pool
// and receive shares priced against the pool's live reserve balance.
package vault

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/holiman/uint256"

	"github.com/lott3ry/libxbit-go/chain"
	"github.com/lott3ry/libxbit-go/event"
	"github.com/lott3ry/libxbit-go/logger"
	"github.com/lott3ry/libxbit-go/metrics"
	"github.com/lott3ry/libxbit-go/token"
	"github.com/lott3ry/libxbit-go/units"
)

// Config wires a Vault to its assets.
type Config struct {
	Address chain.Address  // pool account holding the reserve
	Reserve token.Asset    // reserve asset (WBTC)
	Shares  token.Mintable // share token (XBIT), minted and burned by the vault
	Fee     FeePolicy      // nil means NoFee
	Events  event.Sink     // nil discards
	Logger  *slog.Logger   // nil discards
}

// Vault mints and burns shares against the reserve pool. The reserve balance
// is always read from the reserve token, so bare transfers into the pool
// raise the value of every share.
type Vault struct {
	addr    chain.Address
	reserve token.Asset
	shares  token.Mintable
	fee     FeePolicy
	events  event.Sink
	log     *slog.Logger
}

// WithdrawQuote is the breakdown of a withdrawal at the current rate.
type WithdrawQuote struct {
	Gross *uint256.Int
	Fee   *uint256.Int
	Paid  *uint256.Int
}

// New creates a vault from cfg.
func New(cfg Config) (*Vault, error) {
	if cfg.Reserve == nil || cfg.Shares == nil {
		return nil, fmt.Errorf("%w: reserve and share tokens are required", ErrNilParam)
	}
	if cfg.Address.IsZero() {
		return nil, fmt.Errorf("%w: pool address", ErrNilParam)
	}
	v := &Vault{
		addr:    cfg.Address,
		reserve: cfg.Reserve,
		shares:  cfg.Shares,
		fee:     cfg.Fee,
		events:  cfg.Events,
		log:     logger.OrNop(cfg.Logger),
	}
	if v.fee == nil {
		v.fee = NoFee{}
	}
	if v.events == nil {
		v.events = event.Discard
	}
	return v, nil
}

// Address returns the pool account.
func (v *Vault) Address() chain.Address { return v.addr }

// ReserveAsset returns the reserve token.
func (v *Vault) ReserveAsset() token.Asset { return v.reserve }

// ShareAsset returns the share token.
func (v *Vault) ShareAsset() token.Mintable { return v.shares }

// Reserve returns the pool's reserve balance.
func (v *Vault) Reserve() *uint256.Int { return v.reserve.BalanceOf(v.addr) }

// Supply returns the share supply.
func (v *Vault) Supply() *uint256.Int { return v.shares.TotalSupply() }

// SharesFor returns the shares a deposit of amount would mint now:
// amount*supply/reserve, or amount scaled to share decimals for the first deposit.
func (v *Vault) SharesFor(amount *uint256.Int) (*uint256.Int, error) {
	if amount.IsZero() {
		return nil, fmt.Errorf("%w: deposit amount is zero", chain.ErrInvalidParameter)
	}
	supply := v.Supply()
	if supply.IsZero() {
		minted, overflow := new(uint256.Int).MulDivOverflow(amount, units.One(v.shares.Decimals()), units.One(v.reserve.Decimals()))
		if overflow {
			return nil, fmt.Errorf("%w: deposit overflows share supply", chain.ErrInvalidParameter)
		}
		if minted.IsZero() {
			return nil, fmt.Errorf("%w: deposit too small to mint a share", chain.ErrInvalidParameter)
		}
		return minted, nil
	}
	reserve := v.Reserve()
	if reserve.IsZero() {
		return nil, fmt.Errorf("%w: %s shares outstanding against an empty pool", chain.ErrPoolExhausted, supply)
	}
	minted, overflow := new(uint256.Int).MulDivOverflow(amount, supply, reserve)
	if overflow {
		return nil, fmt.Errorf("%w: deposit overflows share supply", chain.ErrInvalidParameter)
	}
	if minted.IsZero() {
		return nil, fmt.Errorf("%w: deposit too small to mint a share", chain.ErrInvalidParameter)
	}
	return minted, nil
}

// Quote prices a withdrawal of shares at the current rate.
func (v *Vault) Quote(shares *uint256.Int) (WithdrawQuote, error) {
	if shares.IsZero() {
		return WithdrawQuote{}, fmt.Errorf("%w: withdraw amount is zero", chain.ErrInvalidParameter)
	}
	supply := v.Supply()
	if supply.Lt(shares) {
		return WithdrawQuote{}, fmt.Errorf("%w: %s shares of %s outstanding", token.ErrInsufficientBalance, shares, supply)
	}
	gross, _ := new(uint256.Int).MulDivOverflow(shares, v.Reserve(), supply)
	fee := v.fee.Fee(gross)
	if fee.Gt(gross) {
		return WithdrawQuote{}, fmt.Errorf("%w: %s > %s", ErrInvalidFee, fee, gross)
	}
	return WithdrawQuote{Gross: gross, Fee: fee, Paid: new(uint256.Int).Sub(gross, fee)}, nil
}

// SharePrice returns the reserve backing one whole share, before fees.
// It is zero before the first deposit.
func (v *Vault) SharePrice() *uint256.Int {
	one := units.One(v.shares.Decimals())
	supply := v.Supply()
	if supply.IsZero() {
		return new(uint256.Int)
	}
	price, _ := new(uint256.Int).MulDivOverflow(one, v.Reserve(), supply)
	return price
}

// Deposit pulls amount of reserve from caller, which must have approved the
// pool, and mints shares to caller.
func (v *Vault) Deposit(ctx context.Context, caller chain.Address, amount *uint256.Int) (minted *uint256.Int, err error) {
	defer func() { metrics.VaultOperationsTotal.WithLabelValues("deposit", metrics.Status(err)).Inc() }()

	minted, err = v.SharesFor(amount)
	if err != nil {
		return nil, err
	}
	if err := v.reserve.TransferFrom(v.addr, caller, v.addr, amount); err != nil {
		return nil, fmt.Errorf("vault: pull %s %s: %w", amount, v.reserve.Symbol(), err)
	}
	if err := v.shares.Mint(caller, minted); err != nil {
		return nil, fmt.Errorf("vault: mint %s: %w", v.shares.Symbol(), err)
	}

	v.events.Emit(event.Deposited{Account: caller, Amount: *amount, Minted: *minted})
	v.log.InfoContext(ctx, "deposit",
		"account", caller,
		"amount", units.FormatUnits(amount, v.reserve.Decimals()),
		"minted", units.FormatUnits(minted, v.shares.Decimals()))
	return minted, nil
}

// Withdraw burns shares held by caller and pays the reserve they are worth,
// less the fee policy's cut, which stays in the pool.
func (v *Vault) Withdraw(ctx context.Context, caller chain.Address, shares *uint256.Int) (paid *uint256.Int, err error) {
	defer func() { metrics.VaultOperationsTotal.WithLabelValues("withdraw", metrics.Status(err)).Inc() }()

	if shares.IsZero() {
		return nil, fmt.Errorf("%w: withdraw amount is zero", chain.ErrInvalidParameter)
	}
	if held := v.shares.BalanceOf(caller); held.Lt(shares) {
		return nil, fmt.Errorf("%w: holds %s, withdrawing %s", token.ErrInsufficientBalance, held, shares)
	}
	q, err := v.Quote(shares)
	if err != nil {
		return nil, err
	}
	if err := v.shares.Burn(caller, shares); err != nil {
		return nil, fmt.Errorf("vault: burn %s: %w", v.shares.Symbol(), err)
	}
	if !q.Paid.IsZero() {
		if err := v.reserve.Transfer(v.addr, caller, q.Paid); err != nil {
			return nil, fmt.Errorf("vault: pay %s: %w", v.reserve.Symbol(), err)
		}
	}

	v.events.Emit(event.Withdrawn{Account: caller, Shares: *shares, Paid: *q.Paid, Fee: *q.Fee})
	v.log.InfoContext(ctx, "withdraw",
		"account", caller,
		"shares", units.FormatUnits(shares, v.shares.Decimals()),
		"paid", units.FormatUnits(q.Paid, v.reserve.Decimals()),
		"fee", units.FormatUnits(q.Fee, v.reserve.Decimals()))
	return q.Paid, nil
}

// Pay sends amount of reserve from the pool to to. It fails with
// chain.ErrPoolExhausted rather than paying part of amount.
func (v *Vault) Pay(to chain.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	if bal := v.Reserve(); bal.Lt(amount) {
		return fmt.Errorf("%w: paying %s from %s", chain.ErrPoolExhausted, amount, bal)
	}
	if err := v.reserve.Transfer(v.addr, to, amount); err != nil {
		return fmt.Errorf("vault: pay %s: %w", v.reserve.Symbol(), err)
	}
	return nil
}
