// Package headtohead accumulates pairwise encounter statistics across events.
package headtohead

import (
	"fmt"

	"github.com/athlora/podium/internal/domain/model"
	"github.com/athlora/podium/internal/domain/outcome"
)

// PairID builds the canonical key for an unordered athlete pair:
// "min-max". PairID(a, b) == PairID(b, a).
func PairID(a, b int64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d-%d", a, b)
}

// Aggregator folds pairwise outcomes into per-pair records. Not safe for
// concurrent use; the scheduler feeds it sequentially.
type Aggregator struct {
	records map[string]*model.HeadToHeadRecord
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		records: make(map[string]*model.HeadToHeadRecord),
	}
}

// Record folds one event's outcomes into the pair records. Decisive
// outcomes increment the winner's tally; ties only count as encounters.
func (g *Aggregator) Record(event model.Event, pairs []outcome.Pairwise) {
	for _, p := range pairs {
		// Derive emits pairs with AthleteA < AthleteB, matching the
		// canonical pair ordering.
		id := PairID(p.AthleteA, p.AthleteB)
		rec, ok := g.records[id]
		if !ok {
			rec = &model.HeadToHeadRecord{
				PairID:     id,
				Athlete1ID: p.AthleteA,
				Athlete2ID: p.AthleteB,
			}
			g.records[id] = rec
		}

		rec.Encounters++

		meeting := model.Meeting{
			EventID:   event.EventID,
			EventDate: event.Date,
		}
		switch p.ScoreA {
		case outcome.Win:
			rec.Athlete1Wins++
			meeting.WinnerID = p.AthleteA
			meeting.WinnerPosition = p.PositionA
			meeting.LoserID = p.AthleteB
			meeting.LoserPosition = p.PositionB
		case outcome.Loss:
			rec.Athlete2Wins++
			meeting.WinnerID = p.AthleteB
			meeting.WinnerPosition = p.PositionB
			meeting.LoserID = p.AthleteA
			meeting.LoserPosition = p.PositionA
		default: // tie
			meeting.Draw = true
			meeting.WinnerID = p.AthleteA
			meeting.WinnerPosition = p.PositionA
			meeting.LoserID = p.AthleteB
			meeting.LoserPosition = p.PositionB
		}
		rec.Meetings = append(rec.Meetings, meeting)
	}
}

// Get returns the record for a pair in either id order.
func (g *Aggregator) Get(a, b int64) (model.HeadToHeadRecord, bool) {
	rec, ok := g.records[PairID(a, b)]
	if !ok {
		return model.HeadToHeadRecord{}, false
	}
	return *rec, true
}

// Len returns the number of distinct pairs seen.
func (g *Aggregator) Len() int {
	return len(g.records)
}

// Records returns a copy of the pair map keyed by canonical pair id.
func (g *Aggregator) Records() map[string]model.HeadToHeadRecord {
	out := make(map[string]model.HeadToHeadRecord, len(g.records))
	for id, rec := range g.records {
		copied := *rec
		copied.Meetings = append([]model.Meeting(nil), rec.Meetings...)
		out[id] = copied
	}
	return out
}
