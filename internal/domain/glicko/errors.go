package glicko

import "errors"

// Sentinel kinds for rating engine errors.
var (
	// ErrDivergence means the volatility root-finder failed to converge
	// within the iteration cap, or hit non-finite intermediates.
	ErrDivergence = errors.New("volatility solver diverged")
)
