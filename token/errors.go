package token

import "errors"

var (
	// ErrInsufficientBalance indicates the sender holds less than the transfer amount.
	ErrInsufficientBalance = errors.New("token: transfer amount exceeds balance")

	// ErrInsufficientAllowance indicates the spender's allowance does not cover the amount.
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")

	// ErrTransferFailed indicates a transfer was rejected for a reason other than funds.
	ErrTransferFailed = errors.New("token: transfer failed")

	// ErrUnsafeAllowance indicates a non-zero allowance was changed to another
	// non-zero value on a token that requires resetting to zero first.
	ErrUnsafeAllowance = errors.New("token: allowance must be reset to zero first")

	// ErrDuplicateToken indicates a token address is already registered in the ledger.
	ErrDuplicateToken = errors.New("token: duplicate token")

	// ErrSupplyOverflow indicates a mint would overflow the 256-bit supply.
	ErrSupplyOverflow = errors.New("token: supply overflow")

	// ErrUnknownSnapshot indicates a snapshot id that was never taken or already released.
	ErrUnknownSnapshot = errors.New("token: unknown snapshot")
)
