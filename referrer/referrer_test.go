package referrer

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lott3ry/libxbit-go/chain"
	"github.com/lott3ry/libxbit-go/event"
)

var (
	alice = chain.AddressFromSeed("alice")
	bob   = chain.AddressFromSeed("bob")
)

func newTestRegistry(t *testing.T) (*Registry, *event.Log) {
	t.Helper()
	log := event.NewLog()
	return NewRegistry(NewMemStore(), log, nil), log
}

// --------------------------------------------------------------------------
// Registry
// --------------------------------------------------------------------------

func TestRegister(t *testing.T) {
	tests := []struct {
		name    string
		ratio   uint32
		wantErr bool
	}{
		{"zero", 0, false},
		{"one percent", 10_000, false},
		{"at cap", MaxRatio, false},
		{"above cap", MaxRatio + 1, true},
		{"far above cap", Denominator, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, log := newTestRegistry(t)
			err := reg.Register(context.Background(), alice, tt.ratio)
			if tt.wantErr {
				assert.ErrorIs(t, err, chain.ErrInvalidParameter)
				assert.Contains(t, err.Error(), "referrer fee should be less than 10%")
				assert.Equal(t, 0, log.Len())
				ratio, err := reg.Ratio(context.Background(), alice)
				require.NoError(t, err)
				assert.Zero(t, ratio)
				return
			}
			require.NoError(t, err)
			ratio, err := reg.Ratio(context.Background(), alice)
			require.NoError(t, err)
			assert.Equal(t, tt.ratio, ratio)

			evs := log.Filter("RegisterReferrer")
			require.Len(t, evs, 1)
			assert.Equal(t, event.ReferrerRegistered{Referrer: alice, RatioPerMillion: tt.ratio}, evs[0])
		})
	}
}

func TestRegister_Overwrite(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	require.NoError(t, reg.Register(ctx, alice, 50_000))
	require.NoError(t, reg.Register(ctx, alice, 20_000))
	ratio, err := reg.Ratio(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, uint32(20_000), ratio)
}

func TestRegister_ZeroAddress(t *testing.T) {
	reg, _ := newTestRegistry(t)
	err := reg.Register(context.Background(), chain.ZeroAddress, 1)
	assert.ErrorIs(t, err, chain.ErrInvalidParameter)
}

func TestRatio_Defaults(t *testing.T) {
	reg, _ := newTestRegistry(t)
	ctx := context.Background()
	ratio, err := reg.Ratio(ctx, bob)
	require.NoError(t, err)
	assert.Zero(t, ratio)
	ratio, err = reg.Ratio(ctx, chain.ZeroAddress)
	require.NoError(t, err)
	assert.Zero(t, ratio)
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestRegistry(t)
	require.NoError(t, src.Register(ctx, alice, 100_000))
	require.NoError(t, src.Register(ctx, bob, 1))

	data, err := src.Export(ctx)
	require.NoError(t, err)
	assert.Len(t, data, 4+24*2)

	dst, log := newTestRegistry(t)
	n, err := dst.Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, log.Len())

	srcEntries, err := src.Entries(ctx)
	require.NoError(t, err)
	dstEntries, err := dst.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, srcEntries, dstEntries)
}

// --------------------------------------------------------------------------
// Snapshot codec
// --------------------------------------------------------------------------

func TestSnapshot_RoundTrip(t *testing.T) {
	entries := []Entry{{Address: alice, RatioPerMillion: 5}, {Address: bob, RatioPerMillion: MaxRatio}}
	data, err := SerializeSnapshot(entries)
	require.NoError(t, err)
	decoded, err := DeserializeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, entries, decoded)

	data, err = SerializeSnapshot(nil)
	require.NoError(t, err)
	decoded, err = DeserializeSnapshot(data)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}

func TestSnapshot_Malformed(t *testing.T) {
	_, err := DeserializeSnapshot([]byte{0x01})
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	data, err := SerializeSnapshot([]Entry{{Address: alice, RatioPerMillion: 1}})
	require.NoError(t, err)
	_, err = DeserializeSnapshot(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	over, err := SerializeSnapshot([]Entry{{Address: alice, RatioPerMillion: MaxRatio + 1}})
	require.NoError(t, err)
	_, err = DeserializeSnapshot(over)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
	assert.ErrorIs(t, err, chain.ErrInvalidParameter)
}

// --------------------------------------------------------------------------
// Fee
// --------------------------------------------------------------------------

func TestFee(t *testing.T) {
	tests := []struct {
		name     string
		quantity uint64
		ticket   uint64
		ratio    uint32
		want     uint64
	}{
		{"no ratio", 3, 19939, 0, 0},
		{"no tickets", 0, 19939, 10_000, 0},
		{"one percent of two tickets", 2, 19939, 10_000, 398},
		{"cap", 10, 1_000_000, MaxRatio, 1_000_000},
		{"rounds down", 1, 9, 100_000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fee(tt.quantity, uint256.NewInt(tt.ticket), tt.ratio)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Uint64())
		})
	}
}

func TestFee_ValueOverflow(t *testing.T) {
	// Two tickets at 2^255 each do not fit 256 bits.
	ticket := new(uint256.Int).Lsh(uint256.NewInt(1), 255)
	_, err := Fee(2, ticket, MaxRatio)
	assert.ErrorIs(t, err, chain.ErrInvalidParameter)

	// Without a ratio nothing is multiplied.
	fee, err := Fee(2, ticket, 0)
	require.NoError(t, err)
	assert.True(t, fee.IsZero())

	all := new(uint256.Int).SetAllOne()
	fee, err = Fee(1, all, MaxRatio)
	require.NoError(t, err)
	assert.Equal(t, new(uint256.Int).Div(all, uint256.NewInt(10)), fee)
}
