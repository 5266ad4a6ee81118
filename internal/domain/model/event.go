// Package model contains domain models passed between layers.
package model

import "time"

// Default state for an athlete that has never competed.
const (
	DefaultRating     = 1500.0
	DefaultDeviation  = 350.0
	DefaultVolatility = 0.06
)

// Finisher is one athlete's placing in an event. Positions are 1-based;
// athletes that share a position tied. Non-finishers never appear here.
type Finisher struct {
	AthleteID int64 `json:"athlete_id"`
	Position  int   `json:"position"`
}

// Event represents one race with its ordered finishing positions.
// Immutable once ingested.
type Event struct {
	EventID    int64      `json:"event_id"`
	Title      string     `json:"title"`
	Date       time.Time  `json:"date"`
	Importance int        `json:"importance"`
	Finishers  []Finisher `json:"finishers"`
}

// AthleteState is the mutable rating state for one athlete, owned by the
// rating store. One update per athlete per rating period.
type AthleteState struct {
	AthleteID      int64   `json:"athlete_id"`
	Rating         float64 `json:"rating"`
	Deviation      float64 `json:"deviation"`
	Volatility     float64 `json:"volatility"`
	RacesCompleted int     `json:"races_completed"`
}

// NewAthleteState returns the default state for an unrated athlete.
func NewAthleteState(athleteID int64) AthleteState {
	return AthleteState{
		AthleteID:  athleteID,
		Rating:     DefaultRating,
		Deviation:  DefaultDeviation,
		Volatility: DefaultVolatility,
	}
}

// HistoryEntry is one row of the append-only rating history log: one per
// athlete per rating period they competed in.
type HistoryEntry struct {
	AthleteID      int64     `json:"athlete_id"`
	EventID        int64     `json:"event_id"`
	EventDate      time.Time `json:"event_date"`
	OldRating      float64   `json:"old_rating"`
	NewRating      float64   `json:"new_rating"`
	OldDeviation   float64   `json:"old_deviation"`
	NewDeviation   float64   `json:"new_deviation"`
	OldVolatility  float64   `json:"old_volatility"`
	NewVolatility  float64   `json:"new_volatility"`
	RatingChange   float64   `json:"rating_change"`
	OpponentsFaced int       `json:"opponents_faced"`
}

// Meeting records one encounter between a pair of athletes. For a tie,
// Draw is true and the winner/loser fields carry the canonically smaller
// and larger athlete id with their (equal) positions.
type Meeting struct {
	EventID        int64     `json:"event_id"`
	EventDate      time.Time `json:"event_date"`
	WinnerID       int64     `json:"winner_id"`
	WinnerPosition int       `json:"winner_position"`
	LoserID        int64     `json:"loser_id"`
	LoserPosition  int       `json:"loser_position"`
	Draw           bool      `json:"draw,omitempty"`
}

// HeadToHeadRecord accumulates the meeting history for one unordered pair.
// Athlete1ID is always the smaller id. Ties count toward Encounters but
// toward neither win tally, so Athlete1Wins+Athlete2Wins <= Encounters.
type HeadToHeadRecord struct {
	PairID       string    `json:"pair_id"`
	Athlete1ID   int64     `json:"athlete1_id"`
	Athlete2ID   int64     `json:"athlete2_id"`
	Encounters   int       `json:"encounters"`
	Athlete1Wins int       `json:"athlete1_wins"`
	Athlete2Wins int       `json:"athlete2_wins"`
	Meetings     []Meeting `json:"meetings"`
}
