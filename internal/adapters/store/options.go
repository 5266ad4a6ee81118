// Package store holds the mutable rating state container for a run.
package store

import "github.com/athlora/podium/internal/domain/model"

// Option applies a configuration option to the RatingStore.
type Option func(*RatingStore)

// WithStates seeds the store from a prior snapshot, e.g. to resume a run
// from previously persisted ratings.
func WithStates(states []model.AthleteState) Option {
	return func(s *RatingStore) {
		for _, state := range states {
			s.states[state.AthleteID] = state
		}
	}
}
