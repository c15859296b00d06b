package gesture

import "errors"

var (
	// ErrInvalidConfiguration is returned when a decoder or debouncer is built
	// with an out-of-range threshold, dwell duration or dimension.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrMalformedInput is returned when a tensor does not match the shape the
	// decoder was configured for.
	ErrMalformedInput = errors.New("malformed input")
)
