package chain

import "errors"

var (
	// ErrInvalidAddress indicates an address string is not 20 hex-encoded bytes.
	ErrInvalidAddress = errors.New("chain: invalid address")

	// ErrNilPublicKey indicates a nil public key was passed for address derivation.
	ErrNilPublicKey = errors.New("chain: nil public key")
)

// Revert reasons shared by the vault, the referrer registry and the lottery.
// Components wrap them with detail; callers match with errors.Is.
var (
	// ErrInvalidParameter indicates a zero amount, an out-of-range ratio or
	// a purchase that buys no ticket.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidRequest indicates an unknown lottery request id.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrAlreadyFulfilled indicates a reveal of a settled request.
	ErrAlreadyFulfilled = errors.New("already fulfilled")

	// ErrRevealTooEarly indicates a reveal before the minimum block delay.
	ErrRevealTooEarly = errors.New("reveal too early")

	// ErrUnauthorized indicates a caller without the required role.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPoolExhausted indicates the reserve pool cannot cover a payout.
	ErrPoolExhausted = errors.New("pool exhausted")
)
