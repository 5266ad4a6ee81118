// Package store holds the mutable rating state container for a run.
//
// Ordering for ranking queries: rating DESC, then athlete id ASC
// (deterministic). The scheduler is the only writer while a run is in
// flight; collaborators read the store after the run completes.
package store

import (
	"sort"
	"sync"

	"github.com/athlora/podium/internal/domain/model"
	"github.com/athlora/podium/internal/domain/types"
)

// RatingStore maps athlete ids to their current rating state.
type RatingStore struct {
	mu     sync.RWMutex
	states map[int64]model.AthleteState
}

// New constructs a RatingStore, optionally seeded via options.
func New(opts ...Option) *RatingStore {
	s := &RatingStore{
		states: make(map[int64]model.AthleteState),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Get returns the state for an athlete, or false if unknown.
func (s *RatingStore) Get(athleteID int64) (model.AthleteState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[athleteID]
	return state, ok
}

// GetOrDefault returns the state for an athlete, falling back to the
// unrated defaults without recording them.
func (s *RatingStore) GetOrDefault(athleteID int64) model.AthleteState {
	if state, ok := s.Get(athleteID); ok {
		return state
	}
	return model.NewAthleteState(athleteID)
}

// Commit writes a batch of states atomically with respect to readers.
func (s *RatingStore) Commit(states []model.AthleteState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, state := range states {
		s.states[state.AthleteID] = state
	}
}

// Put writes a single state.
func (s *RatingStore) Put(state model.AthleteState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state.AthleteID] = state
}

// Clone returns an independent copy; the scheduler folds events into a
// clone and swaps it in only when the run succeeds.
func (s *RatingStore) Clone() *RatingStore {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make(map[int64]model.AthleteState, len(s.states))
	for id, state := range s.states {
		states[id] = state
	}
	return &RatingStore{states: states}
}

// AthleteIDs returns all known athlete ids in ascending order.
func (s *RatingStore) AthleteIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// All returns every state ordered by athlete id.
func (s *RatingStore) All() []model.AthleteState {
	ids := s.AthleteIDs()

	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]model.AthleteState, 0, len(ids))
	for _, id := range ids {
		states = append(states, s.states[id])
	}
	return states
}

// Count returns the number of athletes tracked.
func (s *RatingStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.states)
}

// TopN returns the n best-rated athletes, rating desc with athlete id as
// the tie-breaker.
func (s *RatingStore) TopN(n int) ([]types.RankedEntry, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}

	ranked := s.ranked()
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n], nil
}

// Rank returns the current rank and rating for one athlete.
func (s *RatingStore) Rank(athleteID int64) (types.RankedEntry, error) {
	for _, entry := range s.ranked() {
		if entry.AthleteID == athleteID {
			return entry, nil
		}
	}
	return types.RankedEntry{}, ErrNotFound
}

func (s *RatingStore) ranked() []types.RankedEntry {
	s.mu.RLock()
	entries := make([]types.RankedEntry, 0, len(s.states))
	for _, state := range s.states {
		entries = append(entries, types.RankedEntry{
			AthleteID: state.AthleteID,
			Rating:    state.Rating,
			Deviation: state.Deviation,
		})
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rating != entries[j].Rating {
			return entries[i].Rating > entries[j].Rating
		}
		return entries[i].AthleteID < entries[j].AthleteID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
