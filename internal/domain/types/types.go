// Package types contains common types used across the application
package types

// RankedEntry represents one row of a rating ranking.
type RankedEntry struct {
	Rank      int     `json:"rank"`
	AthleteID int64   `json:"athlete_id"`
	Rating    float64 `json:"rating"`
	Deviation float64 `json:"deviation"`
}
