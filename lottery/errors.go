package lottery

import "errors"

var (
	// ErrNilParam indicates a required collaborator is missing.
	ErrNilParam = errors.New("lottery: nil parameter")

	// ErrInvalidTable indicates a tier table that does not partition the word space.
	ErrInvalidTable = errors.New("lottery: invalid tier table")

	// ErrEntropyUnavailable indicates the entropy source could not produce a word.
	ErrEntropyUnavailable = errors.New("lottery: entropy unavailable")
)
