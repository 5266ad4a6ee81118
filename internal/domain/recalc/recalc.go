// Package recalc drives the chronological Glicko-2 fold over events.
//
// Events are sorted by date (event id breaking ties), grouped into rating
// periods, and folded one period at a time: take an immutable pre-period
// snapshot of every participant, derive pairwise outcomes, update each
// athlete against snapshot opponents only, then commit the whole batch.
// No update inside a period can observe another update from the same
// period. A run accumulates into a working copy of the store and exposes
// nothing unless every period succeeds.
package recalc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/athlora/podium/internal/adapters/store"
	"github.com/athlora/podium/internal/domain/glicko"
	"github.com/athlora/podium/internal/domain/headtohead"
	"github.com/athlora/podium/internal/domain/model"
	"github.com/athlora/podium/internal/domain/outcome"
	"github.com/athlora/podium/pkg/logger"
	"github.com/athlora/podium/pkg/metrics"
)

// Result is the complete output of a successful run. It is immutable from
// the scheduler's point of view once returned.
type Result struct {
	Store      *store.RatingStore
	History    []model.HistoryEntry
	HeadToHead map[string]model.HeadToHeadRecord
}

// Recalculator folds events into athlete ratings in chronological order.
type Recalculator struct {
	engine              *glicko.Engine
	mode                PeriodMode
	divergencePolicy    Policy
	invalidEventPolicy  Policy
	inactivityInflation bool
	logger              logger.Logger
}

// New constructs a Recalculator with per-event periods and abort-on-error
// policies, adjusted by options.
func New(opts ...Option) *Recalculator {
	r := &Recalculator{
		engine:              glicko.New(),
		mode:                PeriodPerEvent,
		divergencePolicy:    PolicyAbort,
		invalidEventPolicy:  PolicyAbort,
		inactivityInflation: true,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// ValidateEvent rejects malformed events: a missing date, a position below
// 1, or an athlete listed twice. Shared positions are legitimate ties.
func ValidateEvent(e model.Event) error {
	if e.Date.IsZero() {
		return fmt.Errorf("%w: event %d has no date", ErrInvalidEvent, e.EventID)
	}

	seen := make(map[int64]struct{}, len(e.Finishers))
	for _, f := range e.Finishers {
		if f.Position < 1 {
			return fmt.Errorf("%w: event %d athlete %d has position %d", ErrInvalidEvent, e.EventID, f.AthleteID, f.Position)
		}
		if _, dup := seen[f.AthleteID]; dup {
			return fmt.Errorf("%w: event %d lists athlete %d twice", ErrInvalidEvent, e.EventID, f.AthleteID)
		}
		seen[f.AthleteID] = struct{}{}
	}
	return nil
}

// Run folds the supplied events into ratings. The input need not be
// pre-sorted; out-of-order input is sorted internally and is not an error.
// prior may be nil to start every athlete from the unrated defaults.
func (r *Recalculator) Run(ctx context.Context, events []model.Event, prior *store.RatingStore) (*Result, error) {
	start := time.Now()
	if r.logger == nil {
		r.logger = logger.Get().Named("recalc")
	}

	valid := make([]model.Event, 0, len(events))
	for _, e := range events {
		if err := ValidateEvent(e); err != nil {
			metrics.RecordEventInvalid()
			if r.invalidEventPolicy == PolicySkip {
				r.logger.Warn(ctx, "skipping invalid event",
					logger.Int64("event_id", e.EventID),
					logger.Error(err),
				)
				continue
			}
			return nil, err
		}
		valid = append(valid, e)
	}

	sorted := append([]model.Event(nil), valid...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].EventID < sorted[j].EventID
	})

	working := store.New()
	if prior != nil {
		working = prior.Clone()
	}
	agg := headtohead.NewAggregator()
	var history []model.HistoryEntry

	for _, p := range r.groupPeriods(sorted) {
		entries, err := r.applyPeriod(ctx, p, working, agg)
		if err != nil {
			return nil, err
		}
		history = append(history, entries...)
	}

	metrics.RecordRunDuration(time.Since(start).Seconds())
	metrics.UpdateAthletesTracked(working.Count())
	metrics.UpdateHeadToHeadPairs(agg.Len())
	metrics.UpdateHistoryEntries(len(history))

	r.logger.Info(ctx, "recalculation complete",
		logger.Int("events", len(sorted)),
		logger.Int("athletes", working.Count()),
		logger.Int("history_entries", len(history)),
		logger.Int("head_to_head_pairs", agg.Len()),
	)

	return &Result{
		Store:      working,
		History:    history,
		HeadToHead: agg.Records(),
	}, nil
}

// period is one rating period: a single event, or a calendar month of them.
type period struct {
	// id is the event id for per-event periods and 0 for monthly periods.
	id int64
	// date is the latest event date inside the period; history entries
	// carry it.
	date   time.Time
	events []model.Event
}

// groupPeriods splits date-sorted events into rating periods.
func (r *Recalculator) groupPeriods(sorted []model.Event) []period {
	if r.mode == PeriodPerEvent {
		periods := make([]period, 0, len(sorted))
		for _, e := range sorted {
			periods = append(periods, period{id: e.EventID, date: e.Date, events: []model.Event{e}})
		}
		return periods
	}

	var periods []period
	for _, e := range sorted {
		y, m, _ := e.Date.Date()
		if n := len(periods); n > 0 {
			py, pm, _ := periods[n-1].date.Date()
			if py == y && pm == m {
				periods[n-1].events = append(periods[n-1].events, e)
				periods[n-1].date = e.Date // sorted, so this is the latest so far
				continue
			}
		}
		periods = append(periods, period{date: e.Date, events: []model.Event{e}})
	}
	return periods
}

// participant carries one athlete's pre-period snapshot and the opponent
// batch accumulated across the period's events.
type participant struct {
	snapshot  model.AthleteState
	opponents []glicko.Opponent
	events    int
}

// applyPeriod runs snapshot-then-commit for one rating period.
func (r *Recalculator) applyPeriod(ctx context.Context, p period, working *store.RatingStore, agg *headtohead.Aggregator) ([]model.HistoryEntry, error) {
	parts := make(map[int64]*participant)
	snapshot := func(athleteID int64) *participant {
		part, ok := parts[athleteID]
		if !ok {
			part = &participant{snapshot: working.GetOrDefault(athleteID)}
			parts[athleteID] = part
		}
		return part
	}

	for _, e := range p.events {
		pairs := outcome.Derive(e.Finishers)
		metrics.RecordEventProcessed()
		if len(pairs) == 0 {
			r.logger.Debug(ctx, "event yields no outcomes",
				logger.Int64("event_id", e.EventID),
				logger.Int("finishers", len(e.Finishers)),
			)
			continue
		}
		metrics.RecordOutcomesDerived(len(pairs))
		agg.Record(e, pairs)

		competed := make(map[int64]struct{})
		for _, pair := range pairs {
			a := snapshot(pair.AthleteA)
			b := snapshot(pair.AthleteB)
			a.opponents = append(a.opponents, glicko.Opponent{
				Rating:    b.snapshot.Rating,
				Deviation: b.snapshot.Deviation,
				Score:     pair.ScoreA,
			})
			b.opponents = append(b.opponents, glicko.Opponent{
				Rating:    a.snapshot.Rating,
				Deviation: a.snapshot.Deviation,
				Score:     pair.ScoreB(),
			})
			competed[pair.AthleteA] = struct{}{}
			competed[pair.AthleteB] = struct{}{}
		}
		for id := range competed {
			parts[id].events++
		}
	}

	ids := make([]int64, 0, len(parts))
	for id := range parts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	updated := make([]model.AthleteState, 0, len(ids))
	entries := make([]model.HistoryEntry, 0, len(ids))
	for _, id := range ids {
		part := parts[id]
		next, err := r.engine.Update(part.snapshot, part.opponents)
		if err != nil {
			if errors.Is(err, glicko.ErrDivergence) && r.divergencePolicy == PolicySkip {
				r.logger.Warn(ctx, "skipping diverged update, athlete keeps pre-period state",
					logger.Int64("athlete_id", id),
					logger.Int64("event_id", p.id),
					logger.Error(err),
				)
				metrics.RecordSkippedUpdate()
				continue
			}
			return nil, fmt.Errorf("event %d: %w", p.id, err)
		}
		next.RacesCompleted += part.events

		updated = append(updated, next)
		entries = append(entries, model.HistoryEntry{
			AthleteID:      id,
			EventID:        p.id,
			EventDate:      p.date,
			OldRating:      part.snapshot.Rating,
			NewRating:      next.Rating,
			OldDeviation:   part.snapshot.Deviation,
			NewDeviation:   next.Deviation,
			OldVolatility:  part.snapshot.Volatility,
			NewVolatility:  next.Volatility,
			RatingChange:   next.Rating - part.snapshot.Rating,
			OpponentsFaced: len(part.opponents),
		})
		metrics.RecordRatingUpdate()
	}

	// Monthly periods apply the inactivity step to every known athlete who
	// sat the period out.
	if r.mode == PeriodMonthly && r.inactivityInflation {
		for _, id := range working.AthleteIDs() {
			if _, competed := parts[id]; competed {
				continue
			}
			state, _ := working.Get(id)
			inflated, err := r.engine.Update(state, nil)
			if err != nil {
				return nil, fmt.Errorf("inactivity step for athlete %d: %w", id, err)
			}
			updated = append(updated, inflated)
		}
	}

	working.Commit(updated)
	return entries, nil
}
