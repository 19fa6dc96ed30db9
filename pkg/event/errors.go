package event

import "errors"

var (
	// ErrRetryNotInteger is returned when a field mapping carries a
	// retry value that is not a Go integer. The reconnection delay is
	// an integer at the protocol level and close-enough values such as
	// "5000" or 5000.0 are rejected rather than coerced.
	ErrRetryNotInteger = errors.New("event: retry must be an integer")

	// ErrUnknownField is returned when a field mapping carries a key
	// that is not a wire field name. Unknown keys are rejected rather
	// than dropped so typos do not silently lose data.
	ErrUnknownField = errors.New("event: unknown field")

	// ErrFieldType is returned when a field mapping carries a value of
	// the wrong type for its key.
	ErrFieldType = errors.New("event: invalid field type")
)
