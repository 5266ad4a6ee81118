// Package glicko implements the Glicko-2 rating algorithm for multi-competitor races.
package glicko

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithTau sets the system constant constraining volatility changes.
func WithTau(tau float64) Option {
	return func(e *Engine) {
		if tau > 0 {
			e.tau = tau
		}
	}
}

// WithConvergenceTolerance sets the volatility solver's convergence tolerance.
func WithConvergenceTolerance(tol float64) Option {
	return func(e *Engine) {
		if tol > 0 {
			e.tolerance = tol
		}
	}
}

// WithMaxIterations bounds the volatility solver's iteration count.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithRatingBounds clamps post-update ratings to [lo, hi].
func WithRatingBounds(lo, hi float64) Option {
	return func(e *Engine) {
		if lo > 0 && hi > lo {
			e.ratingMin = lo
			e.ratingMax = hi
		}
	}
}

// WithMaxRatingChange caps how far one update can move a rating.
func WithMaxRatingChange(change float64) Option {
	return func(e *Engine) {
		if change > 0 {
			e.maxRatingChange = change
		}
	}
}

// WithDeviationBounds clamps rating deviations to [lo, hi].
func WithDeviationBounds(lo, hi float64) Option {
	return func(e *Engine) {
		if lo > 0 && hi > lo {
			e.deviationMin = lo
			e.deviationMax = hi
		}
	}
}

// WithVolatilityBounds clamps volatility to [lo, hi].
func WithVolatilityBounds(lo, hi float64) Option {
	return func(e *Engine) {
		if lo > 0 && hi > lo {
			e.volatilityMin = lo
			e.volatilityMax = hi
		}
	}
}
