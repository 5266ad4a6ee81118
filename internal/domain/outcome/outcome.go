// Package outcome derives pairwise win/loss/tie results from the ordered
// finishing positions of a single event.
package outcome

import (
	"sort"

	"github.com/athlora/podium/internal/domain/model"
)

// Scores from athlete A's perspective. B's score is always 1 - A's.
const (
	Win  = 1.0
	Tie  = 0.5
	Loss = 0.0
)

// Pairwise is the derived result between two finishers of one event.
type Pairwise struct {
	AthleteA int64
	AthleteB int64
	// PositionA and PositionB are retained for the head-to-head meeting log.
	PositionA int
	PositionB int
	// ScoreA is 1 if A placed ahead of B, 0.5 on a shared position, 0 otherwise.
	ScoreA float64
}

// ScoreB returns the outcome from B's perspective.
func (p Pairwise) ScoreB() float64 {
	return 1 - p.ScoreA
}

// Derive expands an event's finisher list into all unordered pairs with
// their outcomes. Only the Position fields decide scores, so the result is
// invariant under permutations of the input list. Fewer than two finishers
// yield no outcomes.
func Derive(finishers []model.Finisher) []Pairwise {
	if len(finishers) < 2 {
		return nil
	}

	pairs := make([]Pairwise, 0, len(finishers)*(len(finishers)-1)/2)
	for i := 0; i < len(finishers); i++ {
		for j := i + 1; j < len(finishers); j++ {
			a, b := finishers[i], finishers[j]
			// Canonical order inside the pair keeps Derive permutation-invariant.
			if a.AthleteID > b.AthleteID {
				a, b = b, a
			}

			p := Pairwise{
				AthleteA:  a.AthleteID,
				AthleteB:  b.AthleteID,
				PositionA: a.Position,
				PositionB: b.Position,
			}
			switch {
			case a.Position < b.Position:
				p.ScoreA = Win
			case a.Position == b.Position:
				p.ScoreA = Tie
			default:
				p.ScoreA = Loss
			}
			pairs = append(pairs, p)
		}
	}

	// A canonical output order makes downstream accumulation independent of
	// the caller's finisher ordering, including floating-point summation.
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].AthleteA != pairs[j].AthleteA {
			return pairs[i].AthleteA < pairs[j].AthleteA
		}
		return pairs[i].AthleteB < pairs[j].AthleteB
	})
	return pairs
}
