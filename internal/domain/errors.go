package domain

import "errors"

var (
	// ErrNoParameter means the text did not name a measured quantity.
	ErrNoParameter = errors.New("could not understand the parameter")

	// ErrUnknownParameter means a structured query carried a parameter outside
	// the vocabulary.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrPlaceNotFound is non-fatal: resolution falls back to a default location.
	ErrPlaceNotFound = errors.New("place not found")

	// ErrNoDataForParameter means no rows exist for the parameter in any year.
	ErrNoDataForParameter = errors.New("no data for parameter")

	// ErrStoreUnavailable wraps record store failures. The underlying error is
	// kept in the chain and its message is preserved.
	ErrStoreUnavailable = errors.New("record store unavailable")
)
