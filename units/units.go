// Package units converts between human-readable decimal amounts and token
// base units, the way ethers' parseUnits/formatUnits do.
package units

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount indicates the amount string is not a decimal number.
	ErrInvalidAmount = errors.New("units: invalid amount")

	// ErrTooPrecise indicates the amount has more fractional digits than the token.
	ErrTooPrecise = errors.New("units: amount has more decimals than the token")

	// ErrOutOfRange indicates the amount is negative or exceeds 256 bits.
	ErrOutOfRange = errors.New("units: amount out of range")
)

// ParseUnits converts s (e.g. "0.025") into base units of a token with the given decimals.
func ParseUnits(s string, decimals uint8) (*uint256.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", ErrOutOfRange, s)
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q at %d decimals", ErrTooPrecise, s, decimals)
	}
	v, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return nil, fmt.Errorf("%w: %q", ErrOutOfRange, s)
	}
	return v, nil
}

// MustParseUnits is ParseUnits for constants. It panics on bad input.
func MustParseUnits(s string, decimals uint8) *uint256.Int {
	v, err := ParseUnits(s, decimals)
	if err != nil {
		panic(err)
	}
	return v
}

// FormatUnits renders base units as a decimal string without trailing zeros.
func FormatUnits(v *uint256.Int, decimals uint8) string {
	return decimal.NewFromBigInt(v.ToBig(), -int32(decimals)).String()
}

// One returns 10^decimals, one whole token in base units.
func One(decimals uint8) *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))
}
