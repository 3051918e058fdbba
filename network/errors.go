package network

import "errors"

var (
	// ErrConnectionFailed indicates the client could not connect to the node.
	ErrConnectionFailed = errors.New("network: connection failed")

	// ErrAuthFailed indicates authentication (e.g., RPC credentials) was rejected.
	ErrAuthFailed = errors.New("network: authentication failed")

	// ErrInvalidResponse indicates the node returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("network: invalid response")

	// ErrBlockNotFound indicates the requested block is above the chain tip.
	ErrBlockNotFound = errors.New("network: block not found")

	// ErrCallReverted indicates a read-only contract call reverted.
	ErrCallReverted = errors.New("network: call reverted")
)
