package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lott3ry/libxbit-go/chain"
	"github.com/lott3ry/libxbit-go/ledger"
	"github.com/lott3ry/libxbit-go/referrer"
)

var (
	alice = chain.AddressFromSeed("alice")
	bob   = chain.AddressFromSeed("bob")
)

func tempBoltStore(t *testing.T) *BoltStore {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "xbit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRequest(id uint64, player chain.Address, done bool) *ledger.Request {
	r := &ledger.Request{
		Exists:        true,
		RequestID:     id,
		InitialBlock:  10 * id,
		Player:        player,
		Referrer:      bob,
		ReferrerRatio: 10_000,
		USDTIn:        *uint256.NewInt(30_000_000),
		WBTCTicket:    *uint256.NewInt(19939),
		Quantity:      3,
	}
	if done {
		r.Fulfilled = true
		r.RandomWord = *uint256.NewInt(id)
		r.RewardLevels = []uint8{0, 2, 5}
		r.WBTCOut = *uint256.NewInt(123456)
		r.WBTCFee = *uint256.NewInt(598)
	}
	return r
}

// ---------------------------------------------------------------------------
// BoltRequestStore tests
// ---------------------------------------------------------------------------

func TestBoltRequestStore_PutAndGet(t *testing.T) {
	requests := tempBoltStore(t).Requests()

	r := testRequest(1, alice, true)
	require.NoError(t, requests.Put(r))

	got, err := requests.Get(1)
	require.NoError(t, err)
	assert.Equal(t, r, got)

	_, err = requests.Get(2)
	assert.ErrorIs(t, err, ledger.ErrRequestNotFound)
}

func TestBoltRequestStore_CountAndIndex(t *testing.T) {
	requests := tempBoltStore(t).Requests()

	n, err := requests.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, requests.Put(testRequest(1, alice, false)))
	require.NoError(t, requests.Put(testRequest(2, bob, true)))
	require.NoError(t, requests.Put(testRequest(3, alice, true)))

	n, err = requests.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	ids, err := requests.IDsByPlayer(alice)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, ids)

	ids, err = requests.IDsByPlayer(chain.AddressFromSeed("carol"))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestBoltRequestStore_Fulfill(t *testing.T) {
	requests := tempBoltStore(t).Requests()
	require.NoError(t, requests.Put(testRequest(1, alice, false)))
	require.NoError(t, requests.Put(testRequest(1, alice, true)))

	got, err := requests.Get(1)
	require.NoError(t, err)
	assert.True(t, got.Fulfilled)
	assert.Equal(t, []uint8{0, 2, 5}, got.RewardLevels)

	ids, err := requests.IDsByPlayer(alice)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids)

	err = requests.Put(testRequest(1, alice, true))
	assert.ErrorIs(t, err, ledger.ErrImmutable)
}

func TestBoltRequestStore_Errors(t *testing.T) {
	requests := tempBoltStore(t).Requests()
	assert.ErrorIs(t, requests.Put(nil), ledger.ErrNilParam)
	assert.ErrorIs(t, requests.Put(testRequest(2, alice, false)), ledger.ErrOutOfOrder)

	require.NoError(t, requests.Put(testRequest(1, alice, false)))
	assert.ErrorIs(t, requests.Put(testRequest(1, bob, false)), ledger.ErrDuplicateRequest)

	repriced := testRequest(1, alice, true)
	repriced.ReferrerRatio = 0
	assert.ErrorIs(t, requests.Put(repriced), ledger.ErrDuplicateRequest)
}

func TestBoltRequestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "xbit.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Requests().Put(testRequest(1, alice, true)))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Requests().Get(1)
	require.NoError(t, err)
	assert.Equal(t, testRequest(1, alice, true), got)
}

// ---------------------------------------------------------------------------
// BoltReferrerStore tests
// ---------------------------------------------------------------------------

func TestBoltReferrerStore(t *testing.T) {
	refs := tempBoltStore(t).Referrers()

	_, found, err := refs.GetRatio(alice)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, refs.PutRatio(alice, 100_000))
	require.NoError(t, refs.PutRatio(bob, 0))

	ratio, found, err := refs.GetRatio(alice)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint32(100_000), ratio)

	ratio, found, err = refs.GetRatio(bob)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Zero(t, ratio)

	entries, err := refs.ListEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Address.Compare(entries[1].Address) < 0)
}

func TestBoltReferrerStore_WithRegistry(t *testing.T) {
	ctx := context.Background()
	reg := referrer.NewRegistry(tempBoltStore(t).Referrers(), nil, nil)
	require.NoError(t, reg.Register(ctx, alice, 25_000))
	assert.ErrorIs(t, reg.Register(ctx, bob, referrer.MaxRatio+1), chain.ErrInvalidParameter)

	ratio, err := reg.Ratio(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, uint32(25_000), ratio)

	ratio, err = reg.Ratio(ctx, bob)
	require.NoError(t, err)
	assert.Zero(t, ratio)
}
