// Package recalc drives the chronological Glicko-2 fold over events.
package recalc

import (
	"github.com/athlora/podium/internal/domain/glicko"
	"github.com/athlora/podium/pkg/logger"
)

// PeriodMode selects how events are grouped into rating periods.
type PeriodMode string

const (
	// PeriodPerEvent treats every event as its own rating period.
	PeriodPerEvent PeriodMode = "event"
	// PeriodMonthly groups all events of a calendar month into one update,
	// each athlete seeing only pre-month opponent ratings.
	PeriodMonthly PeriodMode = "monthly"
)

// Policy decides what happens when a recoverable per-item failure occurs.
type Policy string

const (
	// PolicyAbort fails the whole run. The default for both invalid events
	// and solver divergence, to avoid silent data loss.
	PolicyAbort Policy = "abort"
	// PolicySkip drops the offending item with a warning. For divergence
	// this leaves the athlete's pre-period state unchanged.
	PolicySkip Policy = "skip"
)

// Option applies a configuration option to the Recalculator.
type Option func(*Recalculator)

// WithEngine sets a custom rating engine.
func WithEngine(engine *glicko.Engine) Option {
	return func(r *Recalculator) {
		if engine != nil {
			r.engine = engine
		}
	}
}

// WithPeriodMode sets the rating period grouping.
func WithPeriodMode(mode PeriodMode) Option {
	return func(r *Recalculator) {
		if mode == PeriodPerEvent || mode == PeriodMonthly {
			r.mode = mode
		}
	}
}

// WithDivergencePolicy decides whether solver divergence aborts the run or
// skips the affected athlete's update with a warning.
func WithDivergencePolicy(policy Policy) Option {
	return func(r *Recalculator) {
		if policy == PolicyAbort || policy == PolicySkip {
			r.divergencePolicy = policy
		}
	}
}

// WithInvalidEventPolicy decides whether a malformed event aborts the run
// or is skipped with a warning.
func WithInvalidEventPolicy(policy Policy) Option {
	return func(r *Recalculator) {
		if policy == PolicyAbort || policy == PolicySkip {
			r.invalidEventPolicy = policy
		}
	}
}

// WithInactivityInflation toggles the monthly-mode deviation growth for
// athletes who sat out a rating period.
func WithInactivityInflation(enabled bool) Option {
	return func(r *Recalculator) {
		r.inactivityInflation = enabled
	}
}

// WithLogger sets a custom logger for the recalculator.
func WithLogger(log logger.Logger) Option {
	return func(r *Recalculator) {
		if log != nil {
			r.logger = log
		}
	}
}
