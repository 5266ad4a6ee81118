package glicko

import (
	"fmt"
	"math"

	"github.com/athlora/podium/pkg/metrics"
)

// solveVolatility finds the new volatility sigma' as the root of the
// Glicko-2 volatility function using the Illinois variant of regula falsi.
// It returns the converged volatility and the iteration count, or
// ErrDivergence when the bracket fails to close within the iteration cap.
func (e *Engine) solveVolatility(phi, v, delta, sigma float64) (float64, int, error) {
	// An infinite variance or a negligible improvement carries no volatility
	// information; the root sits at the current volatility.
	if math.IsInf(v, 1) || math.Abs(delta) < negligibleDelta {
		return sigma, 0, nil
	}

	a := math.Log(sigma * sigma)

	f := func(x float64) float64 {
		expX := math.Exp(x)
		denom := 2 * (phi*phi + v + expX) * (phi*phi + v + expX)
		if denom < 1e-10 {
			denom = 1e-10
		}
		return expX*(delta*delta-phi*phi-v-expX)/denom - (x-a)/(e.tau*e.tau)
	}

	// Initial bracket [B, A] per Glickman step 5.2.
	upper := a
	var lower float64
	if delta*delta > phi*phi+v {
		lower = math.Log(delta*delta - phi*phi - v)
	} else {
		k := 1
		for f(a-float64(k)*e.tau) < 0 && k < e.maxIterations {
			k++
		}
		lower = a - float64(k)*e.tau
	}

	fUpper := f(upper)
	fLower := f(lower)
	if !isFinite(fUpper) || !isFinite(fLower) {
		metrics.RecordSolverDivergence()
		return 0, 0, fmt.Errorf("%w: non-finite bracket values", ErrDivergence)
	}

	iterations := 0
	for math.Abs(lower-upper) > e.tolerance {
		if iterations >= e.maxIterations {
			metrics.RecordSolverDivergence()
			return 0, iterations, fmt.Errorf("%w: no convergence after %d iterations", ErrDivergence, iterations)
		}

		var c float64
		if math.Abs(fLower-fUpper) < 1e-10 {
			c = (upper + lower) / 2 // bisection when the secant degenerates
		} else {
			c = upper + (upper-lower)*fUpper/(fLower-fUpper)
		}

		fC := f(c)
		if !isFinite(fC) {
			c = (upper + lower) / 2
			fC = f(c)
			if !isFinite(fC) {
				metrics.RecordSolverDivergence()
				return 0, iterations, fmt.Errorf("%w: non-finite evaluation", ErrDivergence)
			}
		}

		if fC*fLower <= 0 {
			upper = lower
			fUpper = fLower
		} else {
			// Illinois step: halve the retained side to guarantee progress.
			fUpper /= 2
		}
		lower = c
		fLower = fC

		iterations++
	}

	return math.Exp(upper / 2), iterations, nil
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
