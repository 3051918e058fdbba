// Package chain holds the account identifiers and revert reasons shared by
// every Xbit component.
package chain

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// AddressSize is the length of an account address in bytes.
const AddressSize = common.AddressLength

// Address identifies an account or a contract on the ledger.
type Address common.Address

// ZeroAddress is the unset address. It never holds a referrer ratio.
var ZeroAddress Address

// AddressFromPubKey derives the EVM account of a secp256k1 public key,
// the last 20 bytes of keccak256 over the uncompressed point.
func AddressFromPubKey(pub *ecdsa.PublicKey) (Address, error) {
	if pub == nil || pub.X == nil || pub.Y == nil {
		return ZeroAddress, ErrNilPublicKey
	}
	return Address(crypto.PubkeyToAddress(*pub)), nil
}

// AddressFromSeed derives a deterministic contract address from a label.
// Used for accounts that have no key, such as the contract pool or an AMM pair.
func AddressFromSeed(seed string) Address {
	return Address(common.BytesToAddress(crypto.Keccak256([]byte(seed))))
}

// ParseAddress decodes a 0x-prefixed or bare 40-character hex address.
// Checksums are not enforced.
func ParseAddress(s string) (Address, error) {
	if !common.IsHexAddress(s) {
		return ZeroAddress, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return Address(common.HexToAddress(s)), nil
}

// MustParseAddress is ParseAddress for compile-time constants. It panics on bad input.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// Common returns a as a go-ethereum address.
func (a Address) Common() common.Address {
	return common.Address(a)
}

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Hex returns the EIP-55 checksummed form.
func (a Address) Hex() string {
	return common.Address(a).Hex()
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return a.Hex()
}

// Compare orders addresses bytewise.
func (a Address) Compare(b Address) int {
	return common.Address(a).Cmp(common.Address(b))
}
