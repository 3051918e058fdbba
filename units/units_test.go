package units

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnits(t *testing.T) {
	tests := []struct {
		in       string
		decimals uint8
		want     uint64
	}{
		{"0.025", 8, 2_500_000},
		{"10", 6, 10_000_000},
		{"100", 0, 100},
		{"1.5", 6, 1_500_000},
		{"0", 18, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUnits(tt.in, tt.decimals)
			require.NoError(t, err)
			assert.Equal(t, uint256.NewInt(tt.want), got)
		})
	}
}

func TestParseUnits_Large(t *testing.T) {
	got, err := ParseUnits("10000000000", 18)
	require.NoError(t, err)
	assert.Equal(t, "10000000000000000000000000000", got.Dec())
}

func TestParseUnits_Errors(t *testing.T) {
	_, err := ParseUnits("abc", 6)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseUnits("0.0000001", 6)
	assert.ErrorIs(t, err, ErrTooPrecise)

	_, err = ParseUnits("-1", 6)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = ParseUnits("1e80", 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "0.025", FormatUnits(uint256.NewInt(2_500_000), 8))
	assert.Equal(t, "10", FormatUnits(uint256.NewInt(10_000_000), 6))
	assert.Equal(t, "0", FormatUnits(uint256.NewInt(0), 8))
}

func TestOne(t *testing.T) {
	assert.Equal(t, uint256.NewInt(100_000_000), One(8))
	assert.Equal(t, uint256.NewInt(1), One(0))
}
