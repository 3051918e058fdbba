package vault

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lott3ry/libxbit-go/chain"
	"github.com/lott3ry/libxbit-go/event"
	"github.com/lott3ry/libxbit-go/token"
	"github.com/lott3ry/libxbit-go/units"
)

var (
	pool  = chain.AddressFromSeed("xbit")
	alice = chain.AddressFromSeed("alice")
	bob   = chain.AddressFromSeed("bob")
)

type fixture struct {
	vault *Vault
	wbtc  *token.Token
	xbit  *token.Token
	log   *event.Log
}

func newFixture(t *testing.T, fee FeePolicy) *fixture {
	t.Helper()
	l := token.NewLedger()
	wbtc, err := l.NewToken(chain.AddressFromSeed("wbtc"), "WBTC", 8, token.Options{})
	require.NoError(t, err)
	xbit, err := l.NewToken(pool, "XBIT", 18, token.Options{})
	require.NoError(t, err)
	for _, a := range []chain.Address{alice, bob} {
		require.NoError(t, wbtc.Mint(a, units.MustParseUnits("10", 8)))
	}
	log := event.NewLog()
	v, err := New(Config{Address: pool, Reserve: wbtc, Shares: xbit, Fee: fee, Events: log})
	require.NoError(t, err)
	return &fixture{vault: v, wbtc: wbtc, xbit: xbit, log: log}
}

func (f *fixture) deposit(t *testing.T, who chain.Address, amount *uint256.Int) *uint256.Int {
	t.Helper()
	require.NoError(t, f.wbtc.Approve(who, pool, amount))
	minted, err := f.vault.Deposit(context.Background(), who, amount)
	require.NoError(t, err)
	return minted
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Address: pool})
	assert.ErrorIs(t, err, ErrNilParam)

	f := newFixture(t, nil)
	_, err = New(Config{Reserve: f.wbtc, Shares: f.xbit})
	assert.ErrorIs(t, err, ErrNilParam)
}

// --------------------------------------------------------------------------
// Deposit
// --------------------------------------------------------------------------

func TestDeposit_Bootstrap(t *testing.T) {
	f := newFixture(t, nil)
	amount := units.MustParseUnits("0.025", 8)

	minted := f.deposit(t, alice, amount)
	assert.Equal(t, units.MustParseUnits("0.025", 18), minted)
	assert.Equal(t, amount, f.wbtc.BalanceOf(pool))
	assert.Equal(t, minted, f.xbit.BalanceOf(alice))
	assert.Equal(t, units.MustParseUnits("9.975", 8), f.wbtc.BalanceOf(alice))

	evs := f.log.Filter("SaveWBTC")
	require.Len(t, evs, 1)
	assert.Equal(t, event.Deposited{Account: alice, Amount: *amount, Minted: *minted}, evs[0])
}

func TestDeposit_BareTransferRaisesPrice(t *testing.T) {
	f := newFixture(t, nil)
	amount := units.MustParseUnits("0.025", 8)
	first := f.deposit(t, alice, amount)

	// double the pool without minting
	require.NoError(t, f.wbtc.Transfer(alice, pool, new(uint256.Int).Mul(amount, uint256.NewInt(2))))

	second := f.deposit(t, alice, amount)
	assert.Equal(t, new(uint256.Int).Div(first, uint256.NewInt(3)), second)
	assert.True(t, second.Lt(first))
	assert.Equal(t, new(uint256.Int).Mul(amount, uint256.NewInt(4)), f.vault.Reserve())
}

func TestDeposit_PriceInvariantWithoutTransfers(t *testing.T) {
	f := newFixture(t, nil)
	a1 := units.MustParseUnits("0.3", 8)
	a2 := units.MustParseUnits("1.7", 8)
	s1 := f.deposit(t, alice, a1)
	s2 := f.deposit(t, bob, a2)

	paid, err := f.vault.Withdraw(context.Background(), bob, s2)
	require.NoError(t, err)
	assert.Equal(t, a2, paid)
	paid, err = f.vault.Withdraw(context.Background(), alice, s1)
	require.NoError(t, err)
	assert.Equal(t, a1, paid)
	assert.True(t, f.vault.Supply().IsZero())
	assert.True(t, f.vault.Reserve().IsZero())
}

func TestDeposit_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("zero amount", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.vault.Deposit(ctx, alice, new(uint256.Int))
		assert.ErrorIs(t, err, chain.ErrInvalidParameter)
	})

	t.Run("no allowance", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.vault.Deposit(ctx, alice, uint256.NewInt(100))
		assert.ErrorIs(t, err, token.ErrInsufficientAllowance)
		assert.True(t, f.xbit.TotalSupply().IsZero())
		assert.Equal(t, 0, f.log.Len())
	})

	t.Run("insufficient balance", func(t *testing.T) {
		f := newFixture(t, nil)
		amount := units.MustParseUnits("11", 8)
		require.NoError(t, f.wbtc.Approve(alice, pool, amount))
		_, err := f.vault.Deposit(ctx, alice, amount)
		assert.ErrorIs(t, err, token.ErrInsufficientBalance)
	})

	t.Run("shares against empty pool", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.xbit.Mint(bob, uint256.NewInt(1)))
		require.NoError(t, f.wbtc.Approve(alice, pool, uint256.NewInt(100)))
		_, err := f.vault.Deposit(ctx, alice, uint256.NewInt(100))
		assert.ErrorIs(t, err, chain.ErrPoolExhausted)
	})

	t.Run("mints nothing", func(t *testing.T) {
		f := newFixture(t, nil)
		shares := f.deposit(t, alice, uint256.NewInt(1))
		// leave a single base unit of shares backed by a whole WBTC
		require.NoError(t, f.xbit.Burn(alice, new(uint256.Int).SubUint64(shares, 1)))
		require.NoError(t, f.wbtc.Transfer(alice, pool, units.MustParseUnits("1", 8)))
		require.NoError(t, f.wbtc.Approve(bob, pool, uint256.NewInt(10)))
		_, err := f.vault.Deposit(ctx, bob, uint256.NewInt(10))
		assert.ErrorIs(t, err, chain.ErrInvalidParameter)
	})
}

// --------------------------------------------------------------------------
// Withdraw
// --------------------------------------------------------------------------

func TestWithdraw_AfterBareTransfer(t *testing.T) {
	f := newFixture(t, nil)
	amount := units.MustParseUnits("0.025", 8)
	shares := f.deposit(t, alice, amount)
	require.NoError(t, f.wbtc.Transfer(alice, pool, amount))

	before := f.wbtc.BalanceOf(alice)
	half := new(uint256.Int).Div(shares, uint256.NewInt(2))
	paid, err := f.vault.Withdraw(context.Background(), alice, half)
	require.NoError(t, err)
	assert.Equal(t, amount, paid)
	assert.Equal(t, new(uint256.Int).Add(before, amount), f.wbtc.BalanceOf(alice))
	assert.Equal(t, half, f.xbit.BalanceOf(alice))

	evs := f.log.Filter("WithdrawWBTC")
	require.Len(t, evs, 1)
	w := evs[0].(event.Withdrawn)
	assert.Equal(t, *half, w.Shares)
	assert.Equal(t, *amount, w.Paid)
	assert.True(t, w.Fee.IsZero())
}

func TestWithdraw_ProportionalFee(t *testing.T) {
	fee, err := NewProportionalFee(10_000) // 1%
	require.NoError(t, err)
	f := newFixture(t, fee)
	shares := f.deposit(t, alice, units.MustParseUnits("1", 8))
	f.deposit(t, bob, units.MustParseUnits("1", 8))

	q, err := f.vault.Quote(shares)
	require.NoError(t, err)
	assert.Equal(t, units.MustParseUnits("1", 8), q.Gross)
	assert.Equal(t, uint256.NewInt(1_000_000), q.Fee)

	paid, err := f.vault.Withdraw(context.Background(), alice, shares)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(99_000_000), paid)
	// the fee stays with the remaining holders
	assert.Equal(t, uint256.NewInt(101_000_000), f.vault.Reserve())
}

func TestNewProportionalFee_Cap(t *testing.T) {
	_, err := NewProportionalFee(1_000_001)
	assert.ErrorIs(t, err, ErrInvalidFee)
	full, err := NewProportionalFee(1_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), full.Fee(uint256.NewInt(500)).Uint64())
}

func TestWithdraw_Errors(t *testing.T) {
	f := newFixture(t, nil)
	shares := f.deposit(t, alice, units.MustParseUnits("1", 8))
	ctx := context.Background()

	_, err := f.vault.Withdraw(ctx, alice, new(uint256.Int))
	assert.ErrorIs(t, err, chain.ErrInvalidParameter)

	_, err = f.vault.Withdraw(ctx, alice, new(uint256.Int).AddUint64(shares, 1))
	assert.ErrorIs(t, err, token.ErrInsufficientBalance)

	_, err = f.vault.Withdraw(ctx, bob, uint256.NewInt(1))
	assert.ErrorIs(t, err, token.ErrInsufficientBalance)
	assert.Equal(t, shares, f.xbit.BalanceOf(alice))
}

// --------------------------------------------------------------------------
// Read helpers and Pay
// --------------------------------------------------------------------------

func TestSharePrice(t *testing.T) {
	f := newFixture(t, nil)
	assert.True(t, f.vault.SharePrice().IsZero())

	f.deposit(t, alice, units.MustParseUnits("2", 8))
	assert.Equal(t, units.MustParseUnits("1", 8), f.vault.SharePrice())

	require.NoError(t, f.wbtc.Transfer(bob, pool, units.MustParseUnits("2", 8)))
	assert.Equal(t, units.MustParseUnits("2", 8), f.vault.SharePrice())
}

func TestPay(t *testing.T) {
	f := newFixture(t, nil)
	f.deposit(t, alice, uint256.NewInt(1000))

	require.NoError(t, f.vault.Pay(bob, uint256.NewInt(0)))
	require.NoError(t, f.vault.Pay(bob, uint256.NewInt(400)))
	assert.Equal(t, uint64(600), f.vault.Reserve().Uint64())

	err := f.vault.Pay(bob, uint256.NewInt(601))
	assert.ErrorIs(t, err, chain.ErrPoolExhausted)
	assert.Equal(t, uint64(600), f.vault.Reserve().Uint64())
}
