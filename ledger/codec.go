package ledger

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/holiman/uint256"

	"github.com/lott3ry/libxbit-go/chain"
)

const (
	flagExists    = 1 << 0
	flagFulfilled = 1 << 1

	// flags(1) + id(8) + initial_block(8) + player(20) + referrer(20) +
	// referrer_ratio(4) + usdt_in(32) + wbtc_ticket(32) + quantity(8) +
	// random_word(32) + xexp_out(32) + wbtc_out(32) + wbtc_fee(32) + num_levels(4)
	requestHeaderSize = 1 + 8 + 8 + chain.AddressSize*2 + 4 + 32*2 + 8 + 32*4 + 4
)

func putWord(buf []byte, v *uint256.Int) {
	v.PutUint256(buf)
}

// SerializeRequest encodes a request to binary format.
func SerializeRequest(req *Request) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request", ErrNilParam)
	}
	if len(req.RewardLevels) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d levels", ErrInvalidRequestData, len(req.RewardLevels))
	}
	buf := make([]byte, requestHeaderSize+len(req.RewardLevels))
	offset := 0

	var flags byte
	if req.Exists {
		flags |= flagExists
	}
	if req.Fulfilled {
		flags |= flagFulfilled
	}
	buf[offset] = flags
	offset++

	binary.BigEndian.PutUint64(buf[offset:offset+8], req.RequestID)
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:offset+8], req.InitialBlock)
	offset += 8

	copy(buf[offset:offset+chain.AddressSize], req.Player[:])
	offset += chain.AddressSize
	copy(buf[offset:offset+chain.AddressSize], req.Referrer[:])
	offset += chain.AddressSize
	binary.BigEndian.PutUint32(buf[offset:offset+4], req.ReferrerRatio)
	offset += 4

	putWord(buf[offset:], &req.USDTIn)
	offset += 32
	putWord(buf[offset:], &req.WBTCTicket)
	offset += 32

	binary.BigEndian.PutUint64(buf[offset:offset+8], req.Quantity)
	offset += 8

	for _, w := range []*uint256.Int{&req.RandomWord, &req.XEXPOut, &req.WBTCOut, &req.WBTCFee} {
		putWord(buf[offset:], w)
		offset += 32
	}

	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(len(req.RewardLevels)))
	offset += 4
	copy(buf[offset:], req.RewardLevels)
	return buf, nil
}

// DeserializeRequest decodes binary data into a request. An empty level list
// decodes as nil.
func DeserializeRequest(data []byte) (*Request, error) {
	if len(data) < requestHeaderSize {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrInvalidRequestData, len(data))
	}
	offset := 0
	req := &Request{}

	flags := data[offset]
	offset++
	if flags&^(flagExists|flagFulfilled) != 0 {
		return nil, fmt.Errorf("%w: unknown flags %#x", ErrInvalidRequestData, flags)
	}
	req.Exists = flags&flagExists != 0
	req.Fulfilled = flags&flagFulfilled != 0

	req.RequestID = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8
	req.InitialBlock = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8

	copy(req.Player[:], data[offset:offset+chain.AddressSize])
	offset += chain.AddressSize
	copy(req.Referrer[:], data[offset:offset+chain.AddressSize])
	offset += chain.AddressSize
	req.ReferrerRatio = binary.BigEndian.Uint32(data[offset : offset+4])
	offset += 4

	req.USDTIn.SetBytes32(data[offset : offset+32])
	offset += 32
	req.WBTCTicket.SetBytes32(data[offset : offset+32])
	offset += 32

	req.Quantity = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8

	for _, w := range []*uint256.Int{&req.RandomWord, &req.XEXPOut, &req.WBTCOut, &req.WBTCFee} {
		w.SetBytes32(data[offset : offset+32])
		offset += 32
	}

	numLevels := int(binary.BigEndian.Uint32(data[offset : offset+4]))
	offset += 4
	if len(data) != requestHeaderSize+numLevels {
		return nil, fmt.Errorf("%w: expected %d bytes for %d levels, got %d",
			ErrInvalidRequestData, requestHeaderSize+numLevels, numLevels, len(data))
	}
	if numLevels > 0 {
		req.RewardLevels = append([]uint8(nil), data[offset:]...)
	}
	return req, nil
}
