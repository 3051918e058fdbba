package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lott3ry/libxbit-go/chain"
)

var (
	alice = chain.AddressFromSeed("alice")
	bob   = chain.AddressFromSeed("bob")
	carol = chain.AddressFromSeed("carol")
)

func pending(id uint64, player chain.Address) *Request {
	return &Request{
		Exists:        true,
		RequestID:     id,
		InitialBlock:  100 + id,
		Player:        player,
		Referrer:      carol,
		ReferrerRatio: 50_000,
		USDTIn:        *uint256.NewInt(20_000_000),
		WBTCTicket:    *uint256.NewInt(19939),
		Quantity:      2,
	}
}

func fulfilled(id uint64, player chain.Address) *Request {
	r := pending(id, player)
	r.Fulfilled = true
	r.RandomWord = *new(uint256.Int).Lsh(uint256.NewInt(1), 127)
	r.RewardLevels = []uint8{0, 1}
	r.XEXPOut = *uint256.MustFromDecimal("100000000000000000000")
	r.WBTCOut = *uint256.NewInt(9969)
	return r
}

// --------------------------------------------------------------------------
// Request
// --------------------------------------------------------------------------

func TestRequestState(t *testing.T) {
	var none *Request
	assert.Equal(t, StateNone, none.State())
	assert.Equal(t, StateNone, (&Request{}).State())
	assert.Equal(t, StatePending, pending(1, alice).State())
	assert.Equal(t, StateFulfilled, fulfilled(1, alice).State())
	assert.Equal(t, "pending", StatePending.String())
}

func TestRequestClone(t *testing.T) {
	r := fulfilled(1, alice)
	c := r.Clone()
	c.RewardLevels[0] = 5
	c.WBTCOut.SetUint64(1)
	assert.Equal(t, uint8(0), r.RewardLevels[0])
	assert.Equal(t, uint64(9969), r.WBTCOut.Uint64())
}

// --------------------------------------------------------------------------
// Codec
// --------------------------------------------------------------------------

func TestSerializeRequest_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
	}{
		{"pending", pending(1, alice)},
		{"fulfilled", fulfilled(7, bob)},
		{"with referrer", func() *Request {
			r := fulfilled(3, alice)
			r.Referrer = bob
			r.WBTCFee = *uint256.NewInt(1993)
			r.RandomWord = *new(uint256.Int).SetAllOne()
			return r
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := SerializeRequest(tt.req)
			require.NoError(t, err)
			assert.Len(t, data, requestHeaderSize+len(tt.req.RewardLevels))

			decoded, err := DeserializeRequest(data)
			require.NoError(t, err)
			assert.Equal(t, tt.req, decoded)
		})
	}
}

func TestSerializeRequest_Size(t *testing.T) {
	data, err := SerializeRequest(fulfilled(1, alice))
	require.NoError(t, err)
	// 1 + 8 + 8 + 20 + 20 + 4 + 32*2 + 8 + 32*4 + 4 + 2 levels
	assert.Len(t, data, 267)
}

func TestSerializeRequest_Nil(t *testing.T) {
	_, err := SerializeRequest(nil)
	assert.ErrorIs(t, err, ErrNilParam)
}

func TestDeserializeRequest_Malformed(t *testing.T) {
	good, err := SerializeRequest(fulfilled(1, alice))
	require.NoError(t, err)

	_, err = DeserializeRequest(good[:10])
	assert.ErrorIs(t, err, ErrInvalidRequestData)

	_, err = DeserializeRequest(good[:len(good)-1])
	assert.ErrorIs(t, err, ErrInvalidRequestData)

	_, err = DeserializeRequest(append(append([]byte(nil), good...), 0))
	assert.ErrorIs(t, err, ErrInvalidRequestData)

	bad := append([]byte(nil), good...)
	bad[0] = 0x80
	_, err = DeserializeRequest(bad)
	assert.ErrorIs(t, err, ErrInvalidRequestData)
}

// --------------------------------------------------------------------------
// MemStore
// --------------------------------------------------------------------------

func TestMemStore_PutGet(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Put(pending(1, alice)))
	require.NoError(t, s.Put(fulfilled(2, bob)))
	require.NoError(t, s.Put(pending(3, alice)))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	got, err := s.Get(2)
	require.NoError(t, err)
	assert.Equal(t, fulfilled(2, bob), got)

	ids, err := s.IDsByPlayer(alice)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 3}, ids)

	ids, err = s.IDsByPlayer(chain.AddressFromSeed("nobody"))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemStore_GetNotFound(t *testing.T) {
	s := NewMemStore()
	_, err := s.Get(0)
	assert.ErrorIs(t, err, ErrRequestNotFound)
	_, err = s.Get(1)
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestMemStore_FulfillPending(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Put(pending(1, alice)))
	require.NoError(t, s.Put(fulfilled(1, alice)))

	got, err := s.Get(1)
	require.NoError(t, err)
	assert.True(t, got.Fulfilled)

	ids, err := s.IDsByPlayer(alice)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, ids, "replacing must not re-index")
}

func TestMemStore_PutErrors(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Put(fulfilled(1, alice)))
	require.NoError(t, s.Put(pending(2, alice)))

	tests := []struct {
		name string
		req  *Request
		want error
	}{
		{"nil", nil, ErrNilParam},
		{"not exists", &Request{RequestID: 3}, ErrInvalidRequestData},
		{"gap", pending(4, alice), ErrOutOfOrder},
		{"zero id", pending(0, alice), ErrOutOfOrder},
		{"immutable", fulfilled(1, alice), ErrImmutable},
		{"other player", pending(2, bob), ErrDuplicateRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.Put(tt.req), tt.want)
		})
	}
}

func TestMemStore_PendingPurchaseImmutable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"player", func(r *Request) { r.Player = bob }},
		{"initial block", func(r *Request) { r.InitialBlock++ }},
		{"referrer", func(r *Request) { r.Referrer = bob }},
		{"referrer ratio", func(r *Request) { r.ReferrerRatio = 0 }},
		{"quantity", func(r *Request) { r.Quantity = 1_000 }},
		{"usdt in", func(r *Request) { r.USDTIn = *uint256.NewInt(1) }},
		{"wbtc ticket", func(r *Request) { r.WBTCTicket = *uint256.NewInt(1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemStore()
			require.NoError(t, s.Put(pending(1, alice)))

			next := fulfilled(1, alice)
			tt.mutate(next)
			assert.ErrorIs(t, s.Put(next), ErrDuplicateRequest)

			got, err := s.Get(1)
			require.NoError(t, err)
			assert.Equal(t, pending(1, alice), got)
		})
	}
}

func TestMemStore_ReturnsCopies(t *testing.T) {
	s := NewMemStore()
	r := fulfilled(1, alice)
	require.NoError(t, s.Put(r))
	r.RewardLevels[0] = 9

	got, err := s.Get(1)
	require.NoError(t, err)
	got.RewardLevels[1] = 9

	again, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 1}, again.RewardLevels)
}
