package referrer

import "errors"

var (
	// ErrInvalidSnapshot indicates malformed snapshot data.
	ErrInvalidSnapshot = errors.New("referrer: invalid snapshot data")

	// ErrTooManyEntries indicates a snapshot whose entry count does not fit the header.
	ErrTooManyEntries = errors.New("referrer: too many entries")
)
