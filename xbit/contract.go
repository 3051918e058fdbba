// Package xbit deploys the vault, the referrer registry and the lottery
// engine behind one contract surface. Every call runs in a total order and
// either commits all of its effects or none.
package xbit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/holiman/uint256"

	"github.com/lott3ry/libxbit-go/chain"
	"github.com/lott3ry/libxbit-go/event"
	"github.com/lott3ry/libxbit-go/exchange"
	"github.com/lott3ry/libxbit-go/ledger"
	"github.com/lott3ry/libxbit-go/logger"
	"github.com/lott3ry/libxbit-go/lottery"
	"github.com/lott3ry/libxbit-go/metrics"
	"github.com/lott3ry/libxbit-go/network"
	"github.com/lott3ry/libxbit-go/referrer"
	"github.com/lott3ry/libxbit-go/token"
	"github.com/lott3ry/libxbit-go/units"
	"github.com/lott3ry/libxbit-go/vault"
)

// Config describes a deployment.
type Config struct {
	Address chain.Address // contract account; holds the pool and mints XBIT
	Owner   chain.Address

	// Ledger holds every token below; calls snapshot it to stay atomic.
	Ledger  *token.Ledger
	Reserve token.Asset    // WBTC
	Shares  token.Mintable // XBIT
	Stable  token.Asset    // USDT
	Reward  token.Mintable // XEXP

	Exchange  exchange.Swapper
	Chain     network.ChainService
	Requests  ledger.Store
	Referrers referrer.Store

	WithdrawFee vault.FeePolicy         // nil: no fee
	UnitPrice   *uint256.Int            // nil: 10 USDT
	RevealDelay uint64                  // 0: lottery.DefaultRevealDelay
	Entropy     lottery.EntropyProvider // nil: block hash entropy
	Table       lottery.Table           // nil: lottery.DefaultTable
	DevMode     bool                    // allows the owner to mint XEXP

	Events *event.Log   // nil: a fresh log
	Logger *slog.Logger // nil discards
}

// Contract is a deployed Xbit instance.
type Contract struct {
	mu sync.RWMutex

	addr       chain.Address
	owner      chain.Address
	maintainer chain.Address
	devMode    bool

	ledger   *token.Ledger
	stable   token.Asset
	reserve  token.Asset
	reward   token.Mintable
	exchange exchange.Swapper

	vault     *vault.Vault
	referrers *referrer.Registry
	engine    *lottery.Engine
	events    *event.Log
	log       *slog.Logger
}

// Deploy wires the components of cfg into a contract.
func Deploy(cfg Config) (*Contract, error) {
	if cfg.Ledger == nil || cfg.Stable == nil || cfg.Exchange == nil || cfg.Referrers == nil {
		return nil, fmt.Errorf("%w: ledger, stable token, exchange and referrer store are required", ErrNilParam)
	}
	if cfg.Owner.IsZero() {
		return nil, fmt.Errorf("%w: owner", ErrNilParam)
	}
	events := cfg.Events
	if events == nil {
		events = event.NewLog()
	}
	log := logger.OrNop(cfg.Logger).With("contract", cfg.Address)

	v, err := vault.New(vault.Config{
		Address: cfg.Address,
		Reserve: cfg.Reserve,
		Shares:  cfg.Shares,
		Fee:     cfg.WithdrawFee,
		Events:  events,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}
	registry := referrer.NewRegistry(cfg.Referrers, events, log)
	engine, err := lottery.New(lottery.Config{
		Vault:       v,
		Stable:      cfg.Stable,
		Reward:      cfg.Reward,
		Quoter:      cfg.Exchange,
		Referrers:   registry,
		Requests:    cfg.Requests,
		Chain:       cfg.Chain,
		Entropy:     cfg.Entropy,
		Table:       cfg.Table,
		UnitPrice:   cfg.UnitPrice,
		RevealDelay: cfg.RevealDelay,
		Events:      events,
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}

	return &Contract{
		addr:       cfg.Address,
		owner:      cfg.Owner,
		maintainer: cfg.Owner,
		devMode:    cfg.DevMode,
		ledger:     cfg.Ledger,
		stable:     cfg.Stable,
		reserve:    cfg.Reserve,
		reward:     cfg.Reward,
		exchange:   cfg.Exchange,
		vault:      v,
		referrers:  registry,
		engine:     engine,
		events:     events,
		log:        log,
	}, nil
}

// Address returns the contract account.
func (c *Contract) Address() chain.Address { return c.addr }

// Owner returns the deploying account.
func (c *Contract) Owner() chain.Address { return c.owner }

// Maintainer returns the account allowed to swap besides the owner.
func (c *Contract) Maintainer() chain.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maintainer
}

// Events returns the contract's event log.
func (c *Contract) Events() *event.Log { return c.events }

// Vault returns the share vault.
func (c *Contract) Vault() *vault.Vault { return c.vault }

// Engine returns the lottery engine.
func (c *Contract) Engine() *lottery.Engine { return c.engine }

// atomic runs fn under the write lock. When fn fails every token balance
// and every event it produced are rolled back.
func (c *Contract) atomic(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.ledger.Snapshot()
	mark := c.events.Len()
	if err := fn(); err != nil {
		c.events.Truncate(mark)
		if rerr := c.ledger.Revert(snap); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	return c.ledger.Release(snap)
}

// ---- vault ----

// Save deposits amount of WBTC for caller and returns the XBIT minted.
func (c *Contract) Save(ctx context.Context, caller chain.Address, amount *uint256.Int) (minted *uint256.Int, err error) {
	err = c.atomic(func() error {
		minted, err = c.vault.Deposit(ctx, caller, amount)
		return err
	})
	return minted, err
}

// Withdraw burns shares of caller's XBIT and returns the WBTC paid.
func (c *Contract) Withdraw(ctx context.Context, caller chain.Address, shares *uint256.Int) (paid *uint256.Int, err error) {
	err = c.atomic(func() error {
		paid, err = c.vault.Withdraw(ctx, caller, shares)
		return err
	})
	return paid, err
}

// ---- referrers ----

// Register sets caller's referrer fee ratio in parts per million.
func (c *Contract) Register(ctx context.Context, caller chain.Address, ratio uint32) error {
	return c.atomic(func() error {
		return c.referrers.Register(ctx, caller, ratio)
	})
}

// ReferrerRatio returns addr's fee ratio, 0 when unregistered.
func (c *Contract) ReferrerRatio(ctx context.Context, addr chain.Address) (uint32, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.referrers.Ratio(ctx, addr)
}

// ---- lottery ----

// UnsafeLottery buys tickets and settles them immediately with word, or
// with the dice when word is zero.
func (c *Contract) UnsafeLottery(ctx context.Context, caller chain.Address, usdtAmount *uint256.Int, ref chain.Address, word *uint256.Int) (id uint64, err error) {
	err = c.atomic(func() error {
		id, err = c.engine.PlayImmediate(ctx, caller, usdtAmount, ref, word)
		return err
	})
	return id, err
}

// SafeLottery buys tickets whose outcome is bound by a later Reveal.
func (c *Contract) SafeLottery(ctx context.Context, caller chain.Address, usdtAmount *uint256.Int, ref chain.Address) (id uint64, err error) {
	err = c.atomic(func() error {
		id, err = c.engine.Commit(ctx, caller, usdtAmount, ref)
		return err
	})
	return id, err
}

// Reveal settles caller's committed request id.
func (c *Contract) Reveal(ctx context.Context, caller chain.Address, id uint64) error {
	return c.atomic(func() error {
		return c.engine.Reveal(ctx, caller, id)
	})
}

// RequestIDsByAddress lists addr's request ids in creation order.
func (c *Contract) RequestIDsByAddress(ctx context.Context, addr chain.Address) ([]uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine.RequestIDs(ctx, addr)
}

// RequestStatusByID returns the request stored under id, or a zero request
// for an id never issued.
func (c *Contract) RequestStatusByID(ctx context.Context, id uint64) (*ledger.Request, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine.Request(ctx, id)
}

// EstimateTicket quotes usdtAmount of USDT in WBTC.
func (c *Contract) EstimateTicket(ctx context.Context, usdtAmount *uint256.Int) (*uint256.Int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine.EstimateTicket(ctx, usdtAmount)
}

// Dice returns the word UnsafeLottery would draw for caller right now.
func (c *Contract) Dice(ctx context.Context, caller chain.Address) (*uint256.Int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine.Dice(ctx, caller)
}

// ---- administration ----

// SetMaintainer hands the maintainer role to addr. Owner only.
func (c *Contract) SetMaintainer(ctx context.Context, caller, addr chain.Address) error {
	return c.atomic(func() error {
		if caller != c.owner {
			return fmt.Errorf("%w: Ownable: caller is not the owner", ErrUnauthorized)
		}
		if addr.IsZero() {
			return fmt.Errorf("%w: maintainer is the zero address", ErrInvalidParameter)
		}
		prev := c.maintainer
		c.maintainer = addr
		c.events.Emit(event.MaintainerChanged{Previous: prev, Maintainer: addr})
		c.log.InfoContext(ctx, "maintainer changed", "previous", prev, "maintainer", addr)
		return nil
	})
}

// Swap converts usdtAmount of the contract's ticket revenue into WBTC for
// the pool at the current quote. Owner or maintainer only.
func (c *Contract) Swap(ctx context.Context, caller chain.Address, usdtAmount *uint256.Int) (out *uint256.Int, err error) {
	defer func() { metrics.SwapsTotal.WithLabelValues(metrics.Status(err)).Inc() }()

	err = c.atomic(func() error {
		if caller != c.owner && caller != c.maintainer {
			return fmt.Errorf("%w: only maintainer or owner can swap USDT to WBTC in contract pool", ErrUnauthorized)
		}
		if usdtAmount == nil || usdtAmount.IsZero() {
			return fmt.Errorf("%w: swap amount is zero", ErrInvalidParameter)
		}
		if bal := c.stable.BalanceOf(c.addr); bal.Lt(usdtAmount) {
			return fmt.Errorf("%w: contract holds %s %s", ErrInsufficientBalance, units.FormatUnits(bal, c.stable.Decimals()), c.stable.Symbol())
		}

		path := []chain.Address{c.stable.Address(), c.reserve.Address()}
		quote, err := c.exchange.EstimateOut(ctx, usdtAmount, path)
		if err != nil {
			return fmt.Errorf("xbit: quote swap: %w", err)
		}
		router := c.exchange.Address()
		// USDT refuses to move a non-zero allowance to another non-zero value.
		if err := c.stable.Approve(c.addr, router, new(uint256.Int)); err != nil {
			return fmt.Errorf("xbit: reset allowance: %w", err)
		}
		if err := c.stable.Approve(c.addr, router, usdtAmount); err != nil {
			return fmt.Errorf("xbit: approve router: %w", err)
		}
		out, err = c.exchange.SwapExactIn(ctx, c.addr, usdtAmount, quote, path, c.addr)
		if err != nil {
			return fmt.Errorf("xbit: swap: %w", err)
		}

		c.events.Emit(event.Swapped{Caller: caller, USDTIn: *usdtAmount, WBTCOut: *out})
		c.log.InfoContext(ctx, "swapped revenue into pool",
			"caller", caller,
			"usdt_in", units.FormatUnits(usdtAmount, c.stable.Decimals()),
			"wbtc_out", units.FormatUnits(out, c.reserve.Decimals()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MintReward mints amount of XEXP to to. Owner only, and only on a
// development deployment.
func (c *Contract) MintReward(ctx context.Context, caller, to chain.Address, amount *uint256.Int) error {
	return c.atomic(func() error {
		if !c.devMode {
			return ErrDevModeOnly
		}
		if caller != c.owner {
			return fmt.Errorf("%w: Ownable: caller is not the owner", ErrUnauthorized)
		}
		if err := c.reward.Mint(to, amount); err != nil {
			return fmt.Errorf("xbit: mint %s: %w", c.reward.Symbol(), err)
		}
		c.log.InfoContext(ctx, "reward minted", "to", to, "amount", units.FormatUnits(amount, c.reward.Decimals()))
		return nil
	})
}
