// Package referrer keeps the per-address fee ratios referrers register and
// splits reserve fees by them.
package referrer

import (
	"fmt"

	"github.com/lott3ry/libxbit-go/chain"
)

const (
	// Denominator is the parts-per-million base of every ratio.
	Denominator = 1_000_000

	// MaxRatio caps a referrer's ratio at 10%.
	MaxRatio = 100_000
)

// Entry is one registered referrer.
type Entry struct {
	Address         chain.Address
	RatioPerMillion uint32
}

// ValidateRatio checks ratio against MaxRatio.
func ValidateRatio(ratio uint32) error {
	if ratio > MaxRatio {
		return fmt.Errorf("%w: referrer fee should be less than 10%% (got %d per million)", chain.ErrInvalidParameter, ratio)
	}
	return nil
}
