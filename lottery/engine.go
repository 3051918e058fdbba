package lottery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/holiman/uint256"

	"github.com/lott3ry/libxbit-go/chain"
	"github.com/lott3ry/libxbit-go/event"
	"github.com/lott3ry/libxbit-go/exchange"
	"github.com/lott3ry/libxbit-go/ledger"
	"github.com/lott3ry/libxbit-go/logger"
	"github.com/lott3ry/libxbit-go/metrics"
	"github.com/lott3ry/libxbit-go/network"
	"github.com/lott3ry/libxbit-go/referrer"
	"github.com/lott3ry/libxbit-go/token"
	"github.com/lott3ry/libxbit-go/units"
	"github.com/lott3ry/libxbit-go/vault"
)

const (
	// DefaultRevealDelay is the number of blocks that must pass after a
	// commit before it can be revealed.
	DefaultRevealDelay = 3

	// MaxRevealDelay caps the delay at the block-hash lookback of an EVM node.
	MaxRevealDelay = 256

	// MaxQuantity caps the tickets one purchase may buy.
	MaxQuantity = 10_000
)

// Config wires an Engine to its collaborators.
type Config struct {
	Vault     *vault.Vault       // reserve pool; its address holds every asset
	Stable    token.Asset        // ticket currency (USDT)
	Reward    token.Mintable     // tier-0 reward asset (XEXP)
	Quoter    exchange.Quoter    // prices one ticket in reserve
	Referrers *referrer.Registry // fee ratios
	Requests  ledger.Store       // request records
	Chain     network.ChainService

	Entropy     EntropyProvider // nil: BlockHashEntropy over Chain
	Table       Table           // nil: DefaultTable in reward decimals
	UnitPrice   *uint256.Int    // stable base units per ticket; nil: 10 whole units
	RevealDelay uint64          // 0: DefaultRevealDelay

	Events event.Sink   // nil discards
	Logger *slog.Logger // nil discards
}

// Engine sells tickets and settles them. Mutating calls are serialized.
type Engine struct {
	mu sync.Mutex

	vault     *vault.Vault
	stable    token.Asset
	reward    token.Mintable
	quoter    exchange.Quoter
	referrers *referrer.Registry
	requests  ledger.Store
	chain     network.ChainService
	entropy   EntropyProvider
	table     Table
	unitPrice *uint256.Int
	delay     uint64
	events    event.Sink
	log       *slog.Logger

	nonce uint64 // dice nonce, bumped by every immediate play that used it
}

// New validates cfg and creates an engine.
func New(cfg Config) (*Engine, error) {
	switch {
	case cfg.Vault == nil:
		return nil, fmt.Errorf("%w: vault", ErrNilParam)
	case cfg.Stable == nil || cfg.Reward == nil:
		return nil, fmt.Errorf("%w: stable and reward tokens", ErrNilParam)
	case cfg.Quoter == nil:
		return nil, fmt.Errorf("%w: quoter", ErrNilParam)
	case cfg.Referrers == nil:
		return nil, fmt.Errorf("%w: referrer registry", ErrNilParam)
	case cfg.Requests == nil:
		return nil, fmt.Errorf("%w: request store", ErrNilParam)
	case cfg.Chain == nil:
		return nil, fmt.Errorf("%w: chain service", ErrNilParam)
	}

	e := &Engine{
		vault:     cfg.Vault,
		stable:    cfg.Stable,
		reward:    cfg.Reward,
		quoter:    cfg.Quoter,
		referrers: cfg.Referrers,
		requests:  cfg.Requests,
		chain:     cfg.Chain,
		entropy:   cfg.Entropy,
		table:     cfg.Table,
		unitPrice: cfg.UnitPrice,
		delay:     cfg.RevealDelay,
		events:    cfg.Events,
		log:       logger.OrNop(cfg.Logger),
	}
	if e.entropy == nil {
		e.entropy = BlockHashEntropy{Chain: cfg.Chain}
	}
	if e.table == nil {
		e.table = DefaultTable(cfg.Reward.Decimals())
	}
	if err := e.table.Validate(); err != nil {
		return nil, err
	}
	if e.unitPrice == nil {
		e.unitPrice = units.MustParseUnits("10", cfg.Stable.Decimals())
	}
	if e.unitPrice.IsZero() {
		return nil, fmt.Errorf("%w: unit price is zero", chain.ErrInvalidParameter)
	}
	if e.delay == 0 {
		e.delay = DefaultRevealDelay
	}
	if e.delay > MaxRevealDelay {
		return nil, fmt.Errorf("%w: reveal delay %d exceeds %d blocks", chain.ErrInvalidParameter, e.delay, MaxRevealDelay)
	}
	if e.events == nil {
		e.events = event.Discard
	}
	return e, nil
}

// UnitPrice returns the stable amount one ticket costs.
func (e *Engine) UnitPrice() *uint256.Int { return e.unitPrice.Clone() }

// RevealDelay returns the commit/reveal block delay.
func (e *Engine) RevealDelay() uint64 { return e.delay }

// Table returns the tier policy.
func (e *Engine) Table() Table { return e.table }

func (e *Engine) ticketPath() []chain.Address {
	return []chain.Address{e.stable.Address(), e.vault.ReserveAsset().Address()}
}

// EstimateTicket quotes usdtAmount of stable in reserve through the exchange.
func (e *Engine) EstimateTicket(ctx context.Context, usdtAmount *uint256.Int) (*uint256.Int, error) {
	out, err := e.quoter.EstimateOut(ctx, usdtAmount, e.ticketPath())
	if err != nil {
		return nil, fmt.Errorf("lottery: estimate ticket: %w", err)
	}
	return out, nil
}

// Dice returns the word an immediate play by player would draw right now
// if it supplied none.
func (e *Engine) Dice(ctx context.Context, player chain.Address) (*uint256.Int, error) {
	e.mu.Lock()
	nonce := e.nonce
	e.mu.Unlock()
	return Dice(ctx, e.chain, player, nonce)
}

// Request returns the stored request under id. Unknown ids yield a zero
// request whose Exists is false.
func (e *Engine) Request(_ context.Context, id uint64) (*ledger.Request, error) {
	req, err := e.requests.Get(id)
	if errors.Is(err, ledger.ErrRequestNotFound) {
		return &ledger.Request{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lottery: get request %d: %w", id, err)
	}
	return req, nil
}

// RequestIDs returns player's request ids in creation order.
func (e *Engine) RequestIDs(_ context.Context, player chain.Address) ([]uint64, error) {
	ids, err := e.requests.IDsByPlayer(player)
	if err != nil {
		return nil, fmt.Errorf("lottery: list requests of %s: %w", player, err)
	}
	return ids, nil
}

// PlayImmediate buys usdtAmount of tickets and settles them at once with
// word. A zero word draws from Dice instead. Returns the request id.
func (e *Engine) PlayImmediate(ctx context.Context, player chain.Address, usdtAmount *uint256.Int, ref chain.Address, word *uint256.Int) (id uint64, err error) {
	defer func() { metrics.LotteryRequestsTotal.WithLabelValues("immediate", metrics.Status(err)).Inc() }()
	e.mu.Lock()
	defer e.mu.Unlock()

	req, err := e.newRequest(ctx, player, usdtAmount, ref)
	if err != nil {
		return 0, err
	}

	usedDice := word == nil || word.IsZero()
	if usedDice {
		if word, err = Dice(ctx, e.chain, player, e.nonce); err != nil {
			return 0, err
		}
	}
	s, err := e.resolve(ctx, req, word)
	if err != nil {
		return 0, err
	}
	if err := e.pull(req); err != nil {
		return 0, err
	}
	if err := e.pay(req, s); err != nil {
		return 0, err
	}
	s.apply(req)
	if err := e.requests.Put(req); err != nil {
		return 0, fmt.Errorf("lottery: store request %d: %w", req.RequestID, err)
	}
	if usedDice {
		e.nonce++
	}

	e.events.Emit(event.RandomnessRequested{RequestID: req.RequestID, Player: player})
	e.events.Emit(event.LotteryOutcome{RequestID: req.RequestID, Status: *req.Clone()})
	e.observe(ctx, "immediate play", req)
	return req.RequestID, nil
}

// Commit buys usdtAmount of tickets and records a pending request whose
// word is bound by Reveal once RevealDelay blocks have passed.
func (e *Engine) Commit(ctx context.Context, player chain.Address, usdtAmount *uint256.Int, ref chain.Address) (id uint64, err error) {
	defer func() { metrics.LotteryRequestsTotal.WithLabelValues("commit", metrics.Status(err)).Inc() }()
	e.mu.Lock()
	defer e.mu.Unlock()

	req, err := e.newRequest(ctx, player, usdtAmount, ref)
	if err != nil {
		return 0, err
	}
	if err := e.pull(req); err != nil {
		return 0, err
	}
	if err := e.requests.Put(req); err != nil {
		return 0, fmt.Errorf("lottery: store request %d: %w", req.RequestID, err)
	}

	e.events.Emit(event.RandomnessRequested{RequestID: req.RequestID, Player: player})
	e.log.InfoContext(ctx, "lottery committed",
		"request", req.RequestID,
		"player", player,
		"quantity", req.Quantity,
		"block", req.InitialBlock,
		"reveal_after", req.InitialBlock+e.delay)
	return req.RequestID, nil
}

// Reveal settles the pending request id for its player.
func (e *Engine) Reveal(ctx context.Context, caller chain.Address, id uint64) (err error) {
	defer func() { metrics.LotteryRequestsTotal.WithLabelValues("reveal", metrics.Status(err)).Inc() }()
	e.mu.Lock()
	defer e.mu.Unlock()

	req, err := e.requests.Get(id)
	if errors.Is(err, ledger.ErrRequestNotFound) {
		return fmt.Errorf("%w: %d", chain.ErrInvalidRequest, id)
	}
	if err != nil {
		return fmt.Errorf("lottery: get request %d: %w", id, err)
	}
	if req.Fulfilled {
		return fmt.Errorf("%w: request %d", chain.ErrAlreadyFulfilled, id)
	}
	current, err := e.chain.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("lottery: block number: %w", err)
	}
	if current < req.InitialBlock || current-req.InitialBlock <= e.delay {
		return fmt.Errorf("%w: must wait at least %d blocks to reveal, %d passed",
			chain.ErrRevealTooEarly, e.delay+1, current-min(current, req.InitialBlock))
	}
	if caller != req.Player {
		return fmt.Errorf("%w: only the player can reveal request %d", chain.ErrUnauthorized, id)
	}

	word, err := e.entropy.RevealWord(ctx, req, e.delay)
	if err != nil {
		return err
	}
	s, err := e.resolve(ctx, req, word)
	if err != nil {
		return err
	}
	if err := e.pay(req, s); err != nil {
		return err
	}
	s.apply(req)
	if err := e.requests.Put(req); err != nil {
		return fmt.Errorf("lottery: store request %d: %w", id, err)
	}

	metrics.RevealDelayBlocks.Observe(float64(current - req.InitialBlock))
	e.events.Emit(event.LotteryOutcome{RequestID: id, Status: *req.Clone()})
	e.observe(ctx, "lottery revealed", req)
	return nil
}

// newRequest validates a purchase and prices its ticket. Nothing is moved.
func (e *Engine) newRequest(ctx context.Context, player chain.Address, usdtAmount *uint256.Int, ref chain.Address) (*ledger.Request, error) {
	if usdtAmount == nil || usdtAmount.IsZero() {
		return nil, fmt.Errorf("%w: usdt amount is zero", chain.ErrInvalidParameter)
	}
	q := new(uint256.Int).Div(usdtAmount, e.unitPrice)
	if q.IsZero() {
		return nil, fmt.Errorf("%w: %s buys no ticket at %s each",
			chain.ErrInvalidParameter, units.FormatUnits(usdtAmount, e.stable.Decimals()), units.FormatUnits(e.unitPrice, e.stable.Decimals()))
	}
	if !q.IsUint64() || q.Uint64() > MaxQuantity {
		return nil, fmt.Errorf("%w: %s tickets, at most %d per purchase", chain.ErrInvalidParameter, q, MaxQuantity)
	}

	ticket, err := e.EstimateTicket(ctx, e.unitPrice)
	if err != nil {
		return nil, err
	}
	ratio, err := e.referrers.Ratio(ctx, ref)
	if err != nil {
		return nil, err
	}
	height, err := e.chain.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("lottery: block number: %w", err)
	}
	count, err := e.requests.Count()
	if err != nil {
		return nil, fmt.Errorf("lottery: count requests: %w", err)
	}

	return &ledger.Request{
		Exists:        true,
		RequestID:     count + 1,
		InitialBlock:  height,
		Player:        player,
		Referrer:      ref,
		ReferrerRatio: ratio,
		USDTIn:        *usdtAmount,
		WBTCTicket:    *ticket,
		Quantity:      q.Uint64(),
	}, nil
}

// pull charges the full purchase amount to the player.
func (e *Engine) pull(req *ledger.Request) error {
	pool := e.vault.Address()
	if err := e.stable.TransferFrom(pool, req.Player, pool, &req.USDTIn); err != nil {
		return fmt.Errorf("lottery: pull %s %s from %s: %w", &req.USDTIn, e.stable.Symbol(), req.Player, err)
	}
	return nil
}

type settlement struct {
	word    *uint256.Int
	outcome Outcome
	fee     *uint256.Int
}

// resolve prices every draw of req against the current pool without moving
// anything. Draws see the whole pool; the referrer fee, at the ratio pinned
// when the tickets were bought, must fit in what they leave.
func (e *Engine) resolve(ctx context.Context, req *ledger.Request, word *uint256.Int) (*settlement, error) {
	fee, err := referrer.Fee(req.Quantity, &req.WBTCTicket, req.ReferrerRatio)
	if err != nil {
		return nil, fmt.Errorf("request %d: %w", req.RequestID, err)
	}
	pool := e.vault.Reserve()
	out, err := e.table.Settle(word, req.Quantity, &req.WBTCTicket, pool)
	if err != nil {
		return nil, fmt.Errorf("request %d: %w", req.RequestID, err)
	}
	left := new(uint256.Int).Sub(pool, out.WBTCOut)
	if left.Lt(fee) {
		return nil, fmt.Errorf("%w: referrer fee %s exceeds the %s left after draws", chain.ErrPoolExhausted, fee, left)
	}
	for i, level := range out.Levels {
		e.log.DebugContext(ctx, "lottery draw", "request", req.RequestID, "draw", i, "tier", level)
	}
	return &settlement{word: word, outcome: out, fee: fee}, nil
}

// pay moves a resolved settlement: reserve winnings, then the referrer fee,
// from the pool, reward tokens from the contract balance topped up by minting.
func (e *Engine) pay(req *ledger.Request, s *settlement) error {
	if err := e.vault.Pay(req.Player, s.outcome.WBTCOut); err != nil {
		return err
	}
	if err := e.vault.Pay(req.Referrer, s.fee); err != nil {
		return err
	}
	return e.payReward(req.Player, s.outcome.XEXPOut)
}

func (e *Engine) payReward(to chain.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	pool := e.vault.Address()
	if bal := e.reward.BalanceOf(pool); bal.Lt(amount) {
		short := new(uint256.Int).Sub(amount, bal)
		if err := e.reward.Mint(pool, short); err != nil {
			return fmt.Errorf("lottery: mint %s %s: %w", short, e.reward.Symbol(), err)
		}
	}
	if err := e.reward.Transfer(pool, to, amount); err != nil {
		return fmt.Errorf("lottery: pay %s %s: %w", amount, e.reward.Symbol(), err)
	}
	return nil
}

func (s *settlement) apply(req *ledger.Request) {
	req.Fulfilled = true
	req.RandomWord = *s.word
	req.RewardLevels = s.outcome.Levels
	req.XEXPOut = *s.outcome.XEXPOut
	req.WBTCOut = *s.outcome.WBTCOut
	req.WBTCFee = *s.fee
}

func (e *Engine) observe(ctx context.Context, msg string, req *ledger.Request) {
	for _, level := range req.RewardLevels {
		metrics.LotteryDrawsTotal.WithLabelValues(strconv.Itoa(int(level))).Inc()
	}
	e.log.InfoContext(ctx, msg,
		"request", req.RequestID,
		"player", req.Player,
		"quantity", req.Quantity,
		"levels", req.RewardLevels,
		"xexp_out", units.FormatUnits(&req.XEXPOut, e.reward.Decimals()),
		"wbtc_out", units.FormatUnits(&req.WBTCOut, e.vault.ReserveAsset().Decimals()),
		"wbtc_fee", units.FormatUnits(&req.WBTCFee, e.vault.ReserveAsset().Decimals()))
}
