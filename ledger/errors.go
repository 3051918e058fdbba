package ledger

import "errors"

var (
	// ErrNilParam indicates a nil pointer parameter.
	ErrNilParam = errors.New("ledger: nil parameter")

	// ErrRequestNotFound indicates no request exists under the id.
	ErrRequestNotFound = errors.New("ledger: request not found")

	// ErrDuplicateRequest indicates an id was already used by a different request.
	ErrDuplicateRequest = errors.New("ledger: duplicate request")

	// ErrOutOfOrder indicates a new request id that is not Count()+1.
	ErrOutOfOrder = errors.New("ledger: request id out of order")

	// ErrImmutable indicates an attempt to change a fulfilled request.
	ErrImmutable = errors.New("ledger: request already fulfilled")

	// ErrInvalidRequestData indicates malformed serialized request data.
	ErrInvalidRequestData = errors.New("ledger: invalid request data")
)
