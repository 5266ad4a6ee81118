// Package glicko implements the Glicko-2 rating algorithm for multi-competitor races.
//
// The math follows Glickman's "Example of the Glicko-2 system": ratings are
// converted to the internal (mu, phi) scale, a batch of opponent results is
// folded into a variance estimate and improvement delta, the volatility is
// re-solved iteratively, and the result is converted back to the external
// 1500-centered scale. An Engine is pure: the same state and opponent batch
// always produce the same output.
package glicko

import (
	"fmt"
	"math"

	"github.com/athlora/podium/internal/domain/model"
	"github.com/athlora/podium/pkg/metrics"
)

// scaleFactor converts between the external scale and the internal one:
// mu = (rating - 1500) / scaleFactor, phi = deviation / scaleFactor.
const scaleFactor = 173.7178

// centerRating is the external rating that maps to mu = 0.
const centerRating = 1500.0

// Default engine tuning. The clamps keep a long chronological fold inside a
// sane band even on pathological inputs.
const (
	DefaultTau           = 0.5
	DefaultTolerance     = 1e-6
	DefaultMaxIterations = 100

	defaultRatingMin       = 100.0
	defaultRatingMax       = 5000.0
	defaultMaxRatingChange = 100.0
	defaultDeviationMin    = 10.0
	defaultDeviationMax    = 500.0
	defaultVolatilityMin   = 0.0001
	defaultVolatilityMax   = 0.15

	// varianceCap bounds the estimated variance v against near-zero
	// information batches.
	varianceCap = 100.0

	// minPhi keeps g(phi) finite for degenerate opponent deviations.
	minPhi = 0.0001

	// negligibleDelta short-circuits the solver when the period carried
	// essentially no rating information; the volatility root is the current
	// volatility to within tolerance.
	negligibleDelta = 0.0001

	// expGuard bounds exponents fed to math.Exp.
	expGuard = 700.0
)

// Opponent is a pre-period snapshot of one opponent with the score achieved
// against them. Scores are 1 (win), 0.5 (tie), 0 (loss).
type Opponent struct {
	Rating    float64
	Deviation float64
	Score     float64
}

// Engine computes Glicko-2 updates. Construct with New; the zero value is
// not usable.
type Engine struct {
	tau           float64
	tolerance     float64
	maxIterations int

	ratingMin       float64
	ratingMax       float64
	maxRatingChange float64
	deviationMin    float64
	deviationMax    float64
	volatilityMin   float64
	volatilityMax   float64
}

// New constructs an Engine with the standard constants, adjusted by options.
func New(opts ...Option) *Engine {
	e := &Engine{
		tau:             DefaultTau,
		tolerance:       DefaultTolerance,
		maxIterations:   DefaultMaxIterations,
		ratingMin:       defaultRatingMin,
		ratingMax:       defaultRatingMax,
		maxRatingChange: defaultMaxRatingChange,
		deviationMin:    defaultDeviationMin,
		deviationMax:    defaultDeviationMax,
		volatilityMin:   defaultVolatilityMin,
		volatilityMax:   defaultVolatilityMax,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Update computes the post-period state for one athlete given pre-period
// opponent snapshots. With no opponents only the deviation grows (the
// rating-period inactivity step); rating and volatility are untouched.
// RacesCompleted is left to the caller, which knows how many events the
// period covered.
func (e *Engine) Update(state model.AthleteState, opponents []Opponent) (model.AthleteState, error) {
	if len(opponents) == 0 {
		return e.inflate(state), nil
	}

	mu := toMu(state.Rating)
	phi := toPhi(state.Deviation)

	// Estimated variance of the rating from the period's outcomes.
	vInv := 0.0
	deltaSum := 0.0
	for _, op := range opponents {
		gj := g(toPhi(op.Deviation))
		ej := expectedScore(mu, toMu(op.Rating), toPhi(op.Deviation))
		vInv += gj * gj * ej * (1 - ej)
		deltaSum += gj * (op.Score - ej)
	}

	v := math.Inf(1)
	if math.Abs(vInv) >= 1e-12 {
		v = 1 / vInv
	}
	v = math.Min(v, varianceCap)

	delta := v * deltaSum

	sigma, iterations, err := e.solveVolatility(phi, v, delta, state.Volatility)
	if err != nil {
		return state, fmt.Errorf("athlete %d: %w", state.AthleteID, err)
	}
	metrics.RecordSolverIterations(iterations)
	sigma = clamp(sigma, e.volatilityMin, e.volatilityMax)

	phiStar := math.Sqrt(phi*phi + sigma*sigma)
	phiNew := phiStar
	if !math.IsInf(v, 1) {
		phiNew = 1 / math.Sqrt(1/(phiStar*phiStar)+1/v)
	}

	muNew := mu + phiNew*phiNew*deltaSum

	rating := fromMu(muNew)
	change := rating - state.Rating
	if change > e.maxRatingChange {
		rating = state.Rating + e.maxRatingChange
	} else if change < -e.maxRatingChange {
		rating = state.Rating - e.maxRatingChange
	}

	next := state
	next.Rating = clamp(rating, e.ratingMin, e.ratingMax)
	next.Deviation = clamp(fromPhi(phiNew), e.deviationMin, e.deviationMax)
	next.Volatility = sigma
	return next, nil
}

// inflate applies the inactivity step: phi* = sqrt(phi^2 + sigma^2).
func (e *Engine) inflate(state model.AthleteState) model.AthleteState {
	phi := toPhi(state.Deviation)
	phiStar := math.Sqrt(phi*phi + state.Volatility*state.Volatility)

	next := state
	next.Deviation = clamp(fromPhi(phiStar), e.deviationMin, e.deviationMax)
	return next
}

// g dampens an opponent's weight by their rating uncertainty.
func g(phi float64) float64 {
	phi = math.Max(phi, minPhi)
	return 1 / math.Sqrt(1+3*phi*phi/(math.Pi*math.Pi))
}

// expectedScore is the Glicko-2 E function with overflow guards.
func expectedScore(mu, muJ, phiJ float64) float64 {
	exponent := -g(phiJ) * (mu - muJ)
	if exponent > expGuard {
		return 0
	}
	if exponent < -expGuard {
		return 1
	}
	return 1 / (1 + math.Exp(exponent))
}

func toMu(rating float64) float64     { return (rating - centerRating) / scaleFactor }
func fromMu(mu float64) float64       { return mu*scaleFactor + centerRating }
func toPhi(deviation float64) float64 { return deviation / scaleFactor }
func fromPhi(phi float64) float64     { return phi * scaleFactor }

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(x, hi))
}
