package recalc

import "errors"

// Sentinel kinds for recalculation errors.
var (
	// ErrInvalidEvent marks a malformed event: missing date, position
	// below 1, or the same athlete listed twice in one finisher list.
	ErrInvalidEvent = errors.New("invalid event")
)
