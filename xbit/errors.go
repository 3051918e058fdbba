package xbit

import (
	"errors"

	"github.com/lott3ry/libxbit-go/chain"
	"github.com/lott3ry/libxbit-go/token"
)

// Revert reasons, re-exported so callers can match every failure with
// errors.Is against one package.
var (
	ErrInvalidParameter      = chain.ErrInvalidParameter
	ErrInvalidRequest        = chain.ErrInvalidRequest
	ErrAlreadyFulfilled      = chain.ErrAlreadyFulfilled
	ErrRevealTooEarly        = chain.ErrRevealTooEarly
	ErrUnauthorized          = chain.ErrUnauthorized
	ErrPoolExhausted         = chain.ErrPoolExhausted
	ErrInsufficientAllowance = token.ErrInsufficientAllowance
	ErrInsufficientBalance   = token.ErrInsufficientBalance
	ErrTransferFailed        = token.ErrTransferFailed
)

var (
	// ErrNilParam indicates a missing deployment collaborator.
	ErrNilParam = errors.New("xbit: nil parameter")

	// ErrDevModeOnly indicates an operation only a development deployment allows.
	ErrDevModeOnly = errors.New("xbit: only available in dev mode")
)
