package vault

import "errors"

var (
	// ErrNilParam indicates a required collaborator was not provided.
	ErrNilParam = errors.New("vault: nil parameter")

	// ErrInvalidFee indicates a fee policy that charges more than the gross payout.
	ErrInvalidFee = errors.New("vault: fee exceeds payout")
)
