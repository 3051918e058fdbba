package lottery

import (
	"context"
	"errors"
	"testing"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lott3ry/libxbit-go/chain"
	"github.com/lott3ry/libxbit-go/ledger"
	"github.com/lott3ry/libxbit-go/network"
	"github.com/lott3ry/libxbit-go/units"
)

func frac(shift uint) *uint256.Int { return new(uint256.Int).Rsh(RandMax, shift) }

func minus1(v *uint256.Int) *uint256.Int { return new(uint256.Int).SubUint64(v, 1) }

// --------------------------------------------------------------------------
// Tier table
// --------------------------------------------------------------------------

func TestDefaultTable_Resolve(t *testing.T) {
	table := DefaultTable(18)
	require.NoError(t, table.Validate())

	tests := []struct {
		name string
		word *uint256.Int
		want uint8
	}{
		{"zero", uint256.NewInt(0), 0},
		{"half", frac(1), 0},
		{"max", minus1(RandMax), 0},
		{"quarter", frac(2), 1},
		{"just below half", minus1(frac(1)), 1},
		{"eighth", frac(3), 2},
		{"just below quarter", minus1(frac(2)), 2},
		{"thirty-second", frac(5), 3},
		{"1/1024", frac(10), 4},
		{"just below 1/1024", minus1(frac(10)), 5},
		{"one", uint256.NewInt(1), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Resolve(tt.word))
		})
	}
}

func TestDefaultTable_Payouts(t *testing.T) {
	table := DefaultTable(18)
	require.Len(t, table, 6)
	assert.Equal(t, PayoutReward, table[0].Kind)
	assert.Equal(t, units.MustParseUnits("100", 18), &table[0].Amount)
	assert.Equal(t, PayoutPool, table[5].Kind)
	assert.Equal(t, uint64(1), table[5].Num)
	assert.Equal(t, uint64(10), table[5].Den)
	for i := 1; i < 5; i++ {
		assert.Equal(t, PayoutTicket, table[i].Kind, "tier %d", i)
	}
}

func TestTable_Validate(t *testing.T) {
	valid := func() Table { return DefaultTable(18) }

	tests := []struct {
		name   string
		mutate func(Table) Table
	}{
		{"empty", func(Table) Table { return Table{} }},
		{"floor at RandMax", func(tb Table) Table { tb[0].Floor = *RandMax; return tb }},
		{"floors not decreasing", func(tb Table) Table { tb[2].Floor = tb[1].Floor; return tb }},
		{"last floor zero", func(tb Table) Table { tb[5].Floor.Clear(); return tb }},
		{"ticket denominator zero", func(tb Table) Table { tb[1].Den = 0; return tb }},
		{"pool share above one", func(tb Table) Table { tb[5].Num = 11; return tb }},
		{"unknown kind", func(tb Table) Table { tb[3].Kind = PayoutKind(9); return tb }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.mutate(valid()).Validate(), ErrInvalidTable)
		})
	}

	single := Table{{Floor: *uint256.NewInt(1), Kind: PayoutReward, Amount: *uint256.NewInt(5)}}
	assert.NoError(t, single.Validate())
}

// --------------------------------------------------------------------------
// Draw derivation
// --------------------------------------------------------------------------

func TestDrawWord(t *testing.T) {
	word := new(uint256.Int).AddUint64(RandMax, 5)
	assert.Equal(t, uint64(5), DrawWord(word, 0).Uint64())

	d1 := DrawWord(word, 1)
	assert.Equal(t, d1, DrawWord(word, 1), "deterministic")
	assert.NotEqual(t, d1, DrawWord(word, 2))
	assert.True(t, d1.Lt(RandMax))
	assert.NotEqual(t, DrawWord(uint256.NewInt(1), 1), DrawWord(uint256.NewInt(2), 1))
}

func TestDraws_Distribution(t *testing.T) {
	table := DefaultTable(18)
	word := uint256.MustFromHex("0x5f3c2a81d9e6b4077c1e2f9a0b3d4c5e6f708192a3b4c5d6e7f8091a2b3c4d5e")
	levels := table.Draws(word, 1000)
	require.Len(t, levels, 1000)

	var counts [6]int
	for _, l := range levels {
		counts[l]++
	}
	assert.Greater(t, counts[0], counts[1])
	assert.Greater(t, counts[1], counts[2])
	assert.Greater(t, counts[2], counts[4])
	assert.Greater(t, counts[3], counts[4])
	assert.Greater(t, counts[4], 0)
	assert.Equal(t, levels, table.Draws(word, 1000))
}

// --------------------------------------------------------------------------
// Settle
// --------------------------------------------------------------------------

func TestTable_Settle(t *testing.T) {
	table := DefaultTable(18)
	ticket := uint256.NewInt(20_000)
	pool := uint256.NewInt(100_000_000)

	tests := []struct {
		name     string
		word     *uint256.Int
		wantTier uint8
		wantXEXP *uint256.Int
		wantWBTC uint64
	}{
		{"zero word pays reward", uint256.NewInt(0), 0, units.MustParseUnits("100", 18), 0},
		{"quarter pays half ticket", frac(2), 1, new(uint256.Int), 10_000},
		{"eighth pays ticket", frac(3), 2, new(uint256.Int), 20_000},
		{"thirty-second pays double", frac(5), 3, new(uint256.Int), 40_000},
		{"1/1024 pays ten tickets", frac(10), 4, new(uint256.Int), 200_000},
		{"one pays tenth of pool", uint256.NewInt(1), 5, new(uint256.Int), 10_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := table.Settle(tt.word, 1, ticket, pool)
			require.NoError(t, err)
			assert.Equal(t, []uint8{tt.wantTier}, out.Levels)
			assert.Equal(t, tt.wantXEXP, out.XEXPOut)
			assert.Equal(t, tt.wantWBTC, out.WBTCOut.Uint64())
		})
	}
}

func TestTable_SettleAggregates(t *testing.T) {
	table := DefaultTable(18)
	word := uint256.NewInt(7)
	ticket := uint256.NewInt(20_000)
	out, err := table.Settle(word, 40, ticket, uint256.NewInt(1_000_000_000))
	require.NoError(t, err)
	require.Len(t, out.Levels, 40)
	assert.Equal(t, table.Draws(word, 40), out.Levels)

	var rewards uint64
	for _, l := range out.Levels {
		if l == 0 {
			rewards++
		}
	}
	want := new(uint256.Int).Mul(units.MustParseUnits("100", 18), uint256.NewInt(rewards))
	assert.Equal(t, want, out.XEXPOut)
}

func TestTable_SettlePoolExhausted(t *testing.T) {
	table := DefaultTable(18)
	_, err := table.Settle(frac(3), 1, uint256.NewInt(20_000), uint256.NewInt(19_999))
	assert.ErrorIs(t, err, chain.ErrPoolExhausted)

	// a pool-share tier never exhausts on its own
	out, err := table.Settle(uint256.NewInt(1), 1, uint256.NewInt(20_000), uint256.NewInt(9))
	require.NoError(t, err)
	assert.True(t, out.WBTCOut.IsZero())
}

// --------------------------------------------------------------------------
// Entropy
// --------------------------------------------------------------------------

func TestBlockHashEntropy(t *testing.T) {
	mc := network.NewMemChain("entropy")
	mc.Mine(10)
	player := chain.AddressFromSeed("alice")
	req := &ledger.Request{Exists: true, RequestID: 1, InitialBlock: 2, Player: player}

	src := BlockHashEntropy{Chain: mc}
	w1, err := src.RevealWord(context.Background(), req, 3)
	require.NoError(t, err)
	w2, err := src.RevealWord(context.Background(), req, 3)
	require.NoError(t, err)
	assert.Equal(t, w1, w2)

	other := req.Clone()
	other.RequestID = 2
	w3, err := src.RevealWord(context.Background(), other, 3)
	require.NoError(t, err)
	assert.NotEqual(t, w1, w3)

	late := req.Clone()
	late.InitialBlock = 8
	_, err = src.RevealWord(context.Background(), late, 3)
	assert.ErrorIs(t, err, ErrEntropyUnavailable)
	assert.ErrorIs(t, err, network.ErrBlockNotFound)
}

func TestDice(t *testing.T) {
	mc := network.NewMemChain("dice")
	mc.Mine(5)
	ctx := context.Background()
	alice := chain.AddressFromSeed("alice")

	d1, err := Dice(ctx, mc, alice, 0)
	require.NoError(t, err)
	again, err := Dice(ctx, mc, alice, 0)
	require.NoError(t, err)
	assert.Equal(t, d1, again)

	d2, err := Dice(ctx, mc, alice, 1)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d2)

	d3, err := Dice(ctx, mc, chain.AddressFromSeed("bob"), 0)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d3)

	mc.Mine(1)
	d4, err := Dice(ctx, mc, alice, 0)
	require.NoError(t, err)
	assert.NotEqual(t, d1, d4)
}

func TestDice_ChainErrors(t *testing.T) {
	boom := errors.New("boom")
	mock := &network.MockChainService{
		BlockNumberFn: func(context.Context) (uint64, error) { return 0, boom },
	}
	_, err := Dice(context.Background(), mock, chain.AddressFromSeed("alice"), 0)
	assert.ErrorIs(t, err, ErrEntropyUnavailable)
	assert.ErrorIs(t, err, boom)

	mock = &network.MockChainService{
		BlockNumberFn: func(context.Context) (uint64, error) { return 0, nil },
		BlockHashFn: func(_ context.Context, h uint64) (chainhash.Hash, error) {
			assert.Equal(t, uint64(0), h)
			return chainhash.Hash{}, nil
		},
	}
	_, err = Dice(context.Background(), mock, chain.AddressFromSeed("alice"), 0)
	assert.NoError(t, err)
}
